// Package store implements the durable schema store: indexed CRUD and
// range queries over the transactions, categories, subcategories and
// settings tables.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/antiXlive/Expense/internal/models"
	"github.com/antiXlive/Expense/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnavailable marks operations that failed because the underlying store
// could not be opened or a storage transaction failed. Fatal to the
// attempted operation only, never to the process.
var ErrUnavailable = errors.New("storage unavailable")

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// Store wraps the gorm handle with the data layer's table operations.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn inside one all-or-nothing storage transaction.
// Multi-table mutations (cascading deletes, bulk replaces, imports) must go
// through here so a failure cannot leave tables partially truncated.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
	if err != nil && !errors.Is(err, ErrUnavailable) {
		return storageErr("transaction", err)
	}
	return err
}

// ---------- transactions ----------

// AddTransaction persists a new row and returns the assigned id.
func (s *Store) AddTransaction(ctx context.Context, tx *models.Transaction) (uint, error) {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return 0, storageErr("add transaction", err)
	}
	return tx.ID, nil
}

// PutTransaction upserts a row by id. The row must carry a valid id.
func (s *Store) PutTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == 0 {
		return fmt.Errorf("put transaction: missing id")
	}
	if err := s.db.WithContext(ctx).Save(tx).Error; err != nil {
		return storageErr("put transaction", err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&models.Transaction{}, id).Error; err != nil {
		return storageErr("delete transaction", err)
	}
	return nil
}

func (s *Store) AllTransactions(ctx context.Context) ([]models.Transaction, error) {
	var rows []models.Transaction
	if err := s.db.WithContext(ctx).Order("date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, storageErr("all transactions", err)
	}
	return rows, nil
}

// TransactionsInDateRange returns rows with start <= date <= end, both
// bounds inclusive, served off the date index.
func (s *Store) TransactionsInDateRange(ctx context.Context, start, end string) ([]models.Transaction, error) {
	var rows []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", start, end).
		Order("date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, storageErr("transactions in range", err)
	}
	return rows, nil
}

// TransactionsByMonth returns the rows of one "YYYY-MM" calendar month.
// The upper bound is the month's real last day, not a blanket day 31.
func (s *Store) TransactionsByMonth(ctx context.Context, yearMonth string) ([]models.Transaction, error) {
	start, end, err := util.MonthBounds(yearMonth)
	if err != nil {
		return nil, fmt.Errorf("transactions by month: %w", err)
	}
	return s.TransactionsInDateRange(ctx, start, end)
}

// AddTransactions bulk-inserts rows, preserving any ids they carry.
func (s *Store) AddTransactions(ctx context.Context, rows []models.Transaction) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return storageErr("add transactions", err)
	}
	return nil
}

func (s *Store) ClearTransactions(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.Transaction{}).Error; err != nil {
		return storageErr("clear transactions", err)
	}
	return nil
}

// ClearCategoryRefs nulls catId and subId on every transaction referencing
// the deleted category. The rows themselves survive.
func (s *Store) ClearCategoryRefs(ctx context.Context, catID uint) error {
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("cat_id = ?", catID).
		Updates(map[string]interface{}{"cat_id": nil, "sub_id": nil}).Error; err != nil {
		return storageErr("clear category refs", err)
	}
	return nil
}

// ClearSubcategoryRefs nulls only subId on transactions referencing the
// deleted subcategory; catId is preserved.
func (s *Store) ClearSubcategoryRefs(ctx context.Context, subID uint) error {
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("sub_id = ?", subID).
		Update("sub_id", nil).Error; err != nil {
		return storageErr("clear subcategory refs", err)
	}
	return nil
}

// ---------- categories ----------

func (s *Store) AllCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, storageErr("all categories", err)
	}
	return rows, nil
}

func (s *Store) AddCategory(ctx context.Context, cat *models.Category) error {
	if err := s.db.WithContext(ctx).Create(cat).Error; err != nil {
		return storageErr("add category", err)
	}
	return nil
}

func (s *Store) AddCategories(ctx context.Context, cats []models.Category) error {
	if len(cats) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&cats).Error; err != nil {
		return storageErr("add categories", err)
	}
	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, cat *models.Category) error {
	if cat.ID == 0 {
		return fmt.Errorf("update category: missing id")
	}
	if err := s.db.WithContext(ctx).Save(cat).Error; err != nil {
		return storageErr("update category", err)
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&models.Category{}, id).Error; err != nil {
		return storageErr("delete category", err)
	}
	return nil
}

// CategoryByName looks a category up by exact name. Returns (nil, nil)
// when no row matches.
func (s *Store) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var cat models.Category
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("category by name", err)
	}
	return &cat, nil
}

func (s *Store) ClearCategories(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.Category{}).Error; err != nil {
		return storageErr("clear categories", err)
	}
	return nil
}

// ---------- subcategories ----------

func (s *Store) AllSubcategories(ctx context.Context) ([]models.Subcategory, error) {
	var rows []models.Subcategory
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, storageErr("all subcategories", err)
	}
	return rows, nil
}

func (s *Store) SubcategoriesByCat(ctx context.Context, catID uint) ([]models.Subcategory, error) {
	var rows []models.Subcategory
	if err := s.db.WithContext(ctx).Where("cat_id = ?", catID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, storageErr("subcategories by cat", err)
	}
	return rows, nil
}

func (s *Store) AddSubcategory(ctx context.Context, sub *models.Subcategory) error {
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return storageErr("add subcategory", err)
	}
	return nil
}

func (s *Store) AddSubcategories(ctx context.Context, subs []models.Subcategory) error {
	if len(subs) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&subs).Error; err != nil {
		return storageErr("add subcategories", err)
	}
	return nil
}

func (s *Store) UpdateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	if sub.ID == 0 {
		return fmt.Errorf("update subcategory: missing id")
	}
	if err := s.db.WithContext(ctx).Save(sub).Error; err != nil {
		return storageErr("update subcategory", err)
	}
	return nil
}

func (s *Store) DeleteSubcategory(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&models.Subcategory{}, id).Error; err != nil {
		return storageErr("delete subcategory", err)
	}
	return nil
}

// DeleteSubcategoriesByCat removes every subcategory owned by a category.
func (s *Store) DeleteSubcategoriesByCat(ctx context.Context, catID uint) error {
	if err := s.db.WithContext(ctx).Where("cat_id = ?", catID).Delete(&models.Subcategory{}).Error; err != nil {
		return storageErr("delete subcategories by cat", err)
	}
	return nil
}

func (s *Store) ClearSubcategories(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.Subcategory{}).Error; err != nil {
		return storageErr("clear subcategories", err)
	}
	return nil
}

// ---------- settings ----------

func (s *Store) AllSettings(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, storageErr("all settings", err)
	}
	return rows, nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var row models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("get setting", err)
	}
	return row.Value, true, nil
}

func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	row := models.Setting{Key: key, Value: value}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error; err != nil {
		return storageErr("put setting", err)
	}
	return nil
}

func (s *Store) AddSettings(ctx context.Context, rows []models.Setting) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return storageErr("add settings", err)
	}
	return nil
}

func (s *Store) ClearSettings(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.Setting{}).Error; err != nil {
		return storageErr("clear settings", err)
	}
	return nil
}
