// Package taxonomy guarantees the category and subcategory tables are
// non-empty, non-duplicated and non-corrupted before any read is trusted,
// and owns every taxonomy mutation with its cascade semantics.
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/antiXlive/Expense/internal/bus"
	"github.com/antiXlive/Expense/internal/cache"
	"github.com/antiXlive/Expense/internal/models"
	"github.com/antiXlive/Expense/internal/snapshot"
	"github.com/antiXlive/Expense/internal/state"
	"github.com/antiXlive/Expense/internal/store"

	"github.com/rs/zerolog"
)

// ErrSeedFailed marks a boot-time seed that could not complete. Fatal to
// boot; the tables are left untouched by the failed attempt.
var ErrSeedFailed = errors.New("taxonomy seed failed")

type Manager struct {
	log   zerolog.Logger
	store *store.Store
	state *state.State
	cache *cache.Cache
	snap  *snapshot.Store
	bus   *bus.Bus
}

func NewManager(log zerolog.Logger, st *store.Store, mirror *state.State, c *cache.Cache, snap *snapshot.Store, b *bus.Bus) *Manager {
	return &Manager{log: log, store: st, state: mirror, cache: c, snap: snap, bus: b}
}

// Ensure runs once at boot, before the ledger is usable: it seeds the
// default taxonomy on first run, otherwise repairs duplicates and corrupted
// rows in place, re-seeding if the repair leaves nothing behind.
func (m *Manager) Ensure(ctx context.Context) error {
	cats, err := m.store.AllCategories(ctx)
	if err != nil {
		return fmt.Errorf("taxonomy ensure: %w", err)
	}

	if len(cats) == 0 {
		if err := m.Seed(ctx); err != nil {
			return err
		}
		return m.refresh(ctx)
	}

	remaining, err := m.repair(ctx, cats)
	if err != nil {
		return fmt.Errorf("taxonomy repair: %w", err)
	}
	if remaining == 0 {
		if err := m.Seed(ctx); err != nil {
			return err
		}
	}
	return m.refresh(ctx)
}

// repair purges empty-name categories and name duplicates, cascading each
// deletion, inside one storage transaction. It returns the surviving count.
// Repairs are self-healing: they are logged, not surfaced as failures.
func (m *Manager) repair(ctx context.Context, cats []models.Category) (int, error) {
	var doomed []models.Category

	var valid []models.Category
	for _, c := range cats {
		if strings.TrimSpace(c.Name) == "" {
			m.log.Warn().Uint("id", c.ID).Msg("corrupted category: empty name, purging")
			doomed = append(doomed, c)
			continue
		}
		valid = append(valid, c)
	}

	// keep the lowest id per trimmed name, delete the rest
	byName := make(map[string][]models.Category)
	for _, c := range valid {
		key := strings.TrimSpace(c.Name)
		byName[key] = append(byName[key], c)
	}
	survivors := 0
	for name, group := range byName {
		if len(group) == 1 {
			survivors++
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		survivors++
		for _, dup := range group[1:] {
			m.log.Warn().Uint("id", dup.ID).Str("name", name).Msg("duplicate category, purging")
			doomed = append(doomed, dup)
		}
	}

	if len(doomed) == 0 {
		return survivors, nil
	}

	err := m.store.Transaction(ctx, func(tx *store.Store) error {
		for _, c := range doomed {
			if err := cascadeDeleteCategory(ctx, tx, c.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return survivors, nil
}

// Seed inserts the default taxonomy. Idempotent: categories that already
// exist by name are skipped, so a second run is a no-op.
func (m *Manager) Seed(ctx context.Context) error {
	seen := make(map[string]bool)
	for _, def := range DefaultCategories {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			continue
		}
		if seen[name] {
			m.log.Warn().Str("name", name).Msg("duplicate default category skipped")
			continue
		}
		seen[name] = true

		existing, err := m.store.CategoryByName(ctx, name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSeedFailed, err)
		}
		if existing != nil {
			continue
		}

		err = m.store.Transaction(ctx, func(tx *store.Store) error {
			cat := models.Category{Name: name, Emoji: emojiOrPlaceholder(def.Emoji)}
			if err := tx.AddCategory(ctx, &cat); err != nil {
				return err
			}
			subs := make([]models.Subcategory, 0, len(def.Subs))
			for _, sub := range def.Subs {
				subs = append(subs, models.Subcategory{CatID: cat.ID, Name: sub})
			}
			return tx.AddSubcategories(ctx, subs)
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSeedFailed, err)
		}
	}
	m.log.Info().Int("categories", len(seen)).Msg("default taxonomy ensured")
	return nil
}

// ---------- mutations ----------

// AddCategory inserts a new category, rejecting blank and duplicate names.
func (m *Manager) AddCategory(ctx context.Context, name, emoji string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, fmt.Errorf("add category: name is empty")
	}
	existing, err := m.store.CategoryByName(ctx, name)
	if err != nil {
		return models.Category{}, err
	}
	if existing != nil {
		return models.Category{}, fmt.Errorf("add category: %q already exists", name)
	}
	cat := models.Category{Name: name, Emoji: emojiOrPlaceholder(emoji)}
	if err := m.store.AddCategory(ctx, &cat); err != nil {
		return models.Category{}, err
	}
	return cat, m.refresh(ctx)
}

// UpdateCategory renames or re-tags a category. Cached rows carry the old
// denormalized name, so the whole cache is flushed.
func (m *Manager) UpdateCategory(ctx context.Context, cat models.Category) error {
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return fmt.Errorf("update category: name is empty")
	}
	if err := m.store.UpdateCategory(ctx, &cat); err != nil {
		return err
	}
	m.cache.InvalidateAll()
	return m.refresh(ctx)
}

// DeleteCategory removes the category, its subcategories and every
// transaction reference to it, in one transaction. Transactions survive
// with catId and subId nulled.
func (m *Manager) DeleteCategory(ctx context.Context, id uint) error {
	err := m.store.Transaction(ctx, func(tx *store.Store) error {
		return cascadeDeleteCategory(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	m.cache.InvalidateAll()
	if err := m.reloadTransactions(ctx); err != nil {
		return err
	}
	return m.refresh(ctx)
}

func (m *Manager) AddSubcategory(ctx context.Context, catID uint, name string) (models.Subcategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Subcategory{}, fmt.Errorf("add subcategory: name is empty")
	}
	if _, ok := m.state.CategoryByID(catID); !ok {
		return models.Subcategory{}, fmt.Errorf("add subcategory: category %d not found", catID)
	}
	sub := models.Subcategory{CatID: catID, Name: name}
	if err := m.store.AddSubcategory(ctx, &sub); err != nil {
		return models.Subcategory{}, err
	}
	return sub, m.refresh(ctx)
}

func (m *Manager) RenameSubcategory(ctx context.Context, id uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("rename subcategory: name is empty")
	}
	sub, ok := m.state.SubcategoryByID(id)
	if !ok {
		return fmt.Errorf("rename subcategory: %d not found", id)
	}
	sub.Name = name
	if err := m.store.UpdateSubcategory(ctx, &sub); err != nil {
		return err
	}
	m.cache.InvalidateAll()
	return m.refresh(ctx)
}

// DeleteSubcategory removes the row and nulls subId on referencing
// transactions; their catId is preserved.
func (m *Manager) DeleteSubcategory(ctx context.Context, id uint) error {
	err := m.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.DeleteSubcategory(ctx, id); err != nil {
			return err
		}
		return tx.ClearSubcategoryRefs(ctx, id)
	})
	if err != nil {
		return err
	}
	m.cache.InvalidateAll()
	if err := m.reloadTransactions(ctx); err != nil {
		return err
	}
	return m.refresh(ctx)
}

// SetCategories transactionally replaces the whole taxonomy with the given
// tree. Enrichment on every cached row is stale afterwards, so the whole
// query cache is flushed.
func (m *Manager) SetCategories(ctx context.Context, tree []Node) error {
	for _, node := range tree {
		if strings.TrimSpace(node.Name) == "" {
			return fmt.Errorf("set categories: empty name in tree")
		}
	}
	err := m.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.ClearSubcategories(ctx); err != nil {
			return err
		}
		if err := tx.ClearCategories(ctx); err != nil {
			return err
		}
		for _, node := range tree {
			cat := models.Category{Name: strings.TrimSpace(node.Name), Emoji: emojiOrPlaceholder(node.Emoji)}
			if err := tx.AddCategory(ctx, &cat); err != nil {
				return err
			}
			subs := make([]models.Subcategory, 0, len(node.Subs))
			for _, sub := range node.Subs {
				subs = append(subs, models.Subcategory{CatID: cat.ID, Name: sub})
			}
			if err := tx.AddSubcategories(ctx, subs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.cache.InvalidateAll()
	return m.refresh(ctx)
}

// ---------- helpers ----------

// cascadeDeleteCategory removes the category, its subcategories, and nulls
// the references of every transaction that pointed at them. Must run
// inside a storage transaction.
func cascadeDeleteCategory(ctx context.Context, tx *store.Store, id uint) error {
	if err := tx.DeleteSubcategoriesByCat(ctx, id); err != nil {
		return err
	}
	if err := tx.ClearCategoryRefs(ctx, id); err != nil {
		return err
	}
	return tx.DeleteCategory(ctx, id)
}

// refresh reloads the taxonomy mirror, persists the snapshot and notifies
// subscribers. Snapshot write failures are logged, not fatal.
func (m *Manager) refresh(ctx context.Context) error {
	cats, err := m.store.AllCategories(ctx)
	if err != nil {
		return err
	}
	subs, err := m.store.AllSubcategories(ctx)
	if err != nil {
		return err
	}
	m.state.SetTaxonomy(cats, subs)
	if err := m.snap.Save(m.state.Export()); err != nil {
		m.log.Error().Err(err).Msg("snapshot save failed")
	}
	m.bus.Publish(bus.CategoriesUpdated{Categories: cats})
	return nil
}

// reloadTransactions re-reads the ledger mirror after a cascade nulled
// references on persisted rows.
func (m *Manager) reloadTransactions(ctx context.Context) error {
	rows, err := m.store.AllTransactions(ctx)
	if err != nil {
		return err
	}
	m.state.SetTransactions(rows)
	m.bus.Publish(bus.TransactionsReloaded{Tx: rows})
	return nil
}

func emojiOrPlaceholder(emoji string) string {
	if strings.TrimSpace(emoji) == "" {
		return models.PlaceholderEmoji
	}
	return emoji
}
