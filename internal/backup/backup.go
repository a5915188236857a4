// Package backup produces and consumes the JSON backup document and runs
// the auto-backup scheduler. Import is all-or-nothing: the document is
// validated before any table is touched, then all four tables are replaced
// inside one storage transaction.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/antiXlive/Expense/internal/bus"
	"github.com/antiXlive/Expense/internal/cache"
	"github.com/antiXlive/Expense/internal/models"
	"github.com/antiXlive/Expense/internal/snapshot"
	"github.com/antiXlive/Expense/internal/state"
	"github.com/antiXlive/Expense/internal/store"

	"github.com/rs/zerolog"
)

// DocumentVersion is stamped into every exported backup.
const DocumentVersion = 1

// ErrBadFormat rejects backup documents failing the structural check.
// Nothing is truncated when this is returned.
var ErrBadFormat = errors.New("invalid backup format")

// Document is the backup file shape.
type Document struct {
	Version       int                  `json:"version"`
	ExportedAt    time.Time            `json:"exportedAt"`
	Transactions  []models.Transaction `json:"transactions"`
	Categories    []models.Category    `json:"categories"`
	Subcategories []models.Subcategory `json:"subcategories"`
	Settings      []models.Setting     `json:"settings"`
}

type Service struct {
	log   zerolog.Logger
	store *store.Store
	state *state.State
	cache *cache.Cache
	snap  *snapshot.Store
	bus   *bus.Bus
}

func NewService(log zerolog.Logger, st *store.Store, mirror *state.State, c *cache.Cache, snap *snapshot.Store, b *bus.Bus) *Service {
	return &Service{log: log, store: st, state: mirror, cache: c, snap: snap, bus: b}
}

// Export reads all four tables into a backup document.
func (s *Service) Export(ctx context.Context) (*Document, error) {
	tx, err := s.store.AllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	cats, err := s.store.AllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	subs, err := s.store.AllSubcategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	settings, err := s.store.AllSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return &Document{
		Version:       DocumentVersion,
		ExportedAt:    time.Now().UTC(),
		Transactions:  tx,
		Categories:    cats,
		Subcategories: subs,
		Settings:      settings,
	}, nil
}

// ParseDocument validates raw JSON structurally before decoding. The
// transactions and categories keys must be present; anything else is
// rejected with ErrBadFormat before any table is cleared.
func ParseDocument(raw []byte) (*Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %w", ErrBadFormat, err)
	}
	if _, ok := probe["transactions"]; !ok {
		return nil, fmt.Errorf("%w: missing transactions key", ErrBadFormat)
	}
	if _, ok := probe["categories"]; !ok {
		return nil, fmt.Errorf("%w: missing categories key", ErrBadFormat)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadFormat, err)
	}
	return &doc, nil
}

// Import replaces the four tables with the document's rows, ids preserved,
// inside one transaction, then reloads the mirror and flushes the cache.
func (s *Service) Import(ctx context.Context, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrBadFormat)
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.ClearTransactions(ctx); err != nil {
			return err
		}
		if err := tx.ClearSubcategories(ctx); err != nil {
			return err
		}
		if err := tx.ClearCategories(ctx); err != nil {
			return err
		}
		if err := tx.ClearSettings(ctx); err != nil {
			return err
		}
		if err := tx.AddCategories(ctx, doc.Categories); err != nil {
			return err
		}
		if err := tx.AddSubcategories(ctx, doc.Subcategories); err != nil {
			return err
		}
		if err := tx.AddTransactions(ctx, doc.Transactions); err != nil {
			return err
		}
		return tx.AddSettings(ctx, doc.Settings)
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	s.cache.InvalidateAll()
	return s.reload(ctx)
}

// reload refreshes the whole mirror from the store after an import.
func (s *Service) reload(ctx context.Context) error {
	tx, err := s.store.AllTransactions(ctx)
	if err != nil {
		return err
	}
	cats, err := s.store.AllCategories(ctx)
	if err != nil {
		return err
	}
	subs, err := s.store.AllSubcategories(ctx)
	if err != nil {
		return err
	}
	settingRows, err := s.store.AllSettings(ctx)
	if err != nil {
		return err
	}
	settings, lastBackup, lastScreen := models.SettingsFromRows(settingRows)

	s.state.SetTransactions(tx)
	s.state.SetTaxonomy(cats, subs)
	s.state.SetSettings(settings)
	s.state.SetLastBackup(lastBackup)
	s.state.SetLastScreen(lastScreen)

	if err := s.snap.Save(s.state.Export()); err != nil {
		s.log.Error().Err(err).Msg("snapshot save failed")
	}
	s.bus.Publish(bus.TransactionsReloaded{Tx: tx})
	s.bus.Publish(bus.CategoriesUpdated{Categories: cats})
	return nil
}
