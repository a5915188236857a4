package database

import (
	"fmt"

	"github.com/antiXlive/Expense/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models. Migrations
// are additive: opening a store written by an older schema version creates
// any missing tables and indexes without touching existing rows.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Transaction{},
		&models.Category{},
		&models.Subcategory{},
		&models.Setting{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
