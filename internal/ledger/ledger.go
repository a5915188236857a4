// Package ledger is the only sanctioned write path for transactions. Every
// row it persists or returns carries denormalized category fields computed
// from the current taxonomy, and every mutation follows the fixed order
// persist, mirror, snapshot, cache-invalidate, notify.
package ledger

import (
	"context"
	"fmt"

	"github.com/antiXlive/Expense/internal/bus"
	"github.com/antiXlive/Expense/internal/cache"
	"github.com/antiXlive/Expense/internal/models"
	"github.com/antiXlive/Expense/internal/snapshot"
	"github.com/antiXlive/Expense/internal/state"
	"github.com/antiXlive/Expense/internal/store"
	"github.com/antiXlive/Expense/internal/util"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxAmount bounds transaction magnitude to catch fat-finger input.
var maxAmount = decimal.NewFromInt(10_000_000)

// ValidationError rejects malformed input before any persistence attempt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type Ledger struct {
	log   zerolog.Logger
	store *store.Store
	state *state.State
	cache *cache.Cache
	snap  *snapshot.Store
	bus   *bus.Bus
}

func New(log zerolog.Logger, st *store.Store, mirror *state.State, c *cache.Cache, snap *snapshot.Store, b *bus.Bus) *Ledger {
	return &Ledger{log: log, store: st, state: mirror, cache: c, snap: snap, bus: b}
}

// Enrich fills catName, emoji and subName from the current in-memory
// taxonomy. Pure with respect to the stored row: unresolvable references
// fall back to a nil name and the placeholder emoji.
func (l *Ledger) Enrich(tx models.Transaction) models.Transaction {
	tx.CatName = nil
	tx.Emoji = models.PlaceholderEmoji
	tx.SubName = nil

	if tx.CatID != nil {
		if cat, ok := l.state.CategoryByID(*tx.CatID); ok {
			name := cat.Name
			tx.CatName = &name
			if cat.Emoji != "" {
				tx.Emoji = cat.Emoji
			}
		}
	}
	if tx.SubID != nil {
		if sub, ok := l.state.SubcategoryByID(*tx.SubID); ok {
			name := sub.Name
			tx.SubName = &name
		}
	}
	return tx
}

func (l *Ledger) validate(tx models.Transaction) error {
	if err := util.ValidateDate(tx.Date); err != nil {
		return &ValidationError{Field: "date", Reason: err.Error()}
	}
	if tx.Amount.Abs().GreaterThanOrEqual(maxAmount) {
		return &ValidationError{Field: "amount", Reason: "magnitude too large"}
	}
	if tx.SubID != nil {
		if tx.CatID == nil {
			return &ValidationError{Field: "subId", Reason: "subcategory without category"}
		}
		if sub, ok := l.state.SubcategoryByID(*tx.SubID); ok && sub.CatID != *tx.CatID {
			return &ValidationError{Field: "subId", Reason: "subcategory belongs to a different category"}
		}
	}
	return nil
}

// Add persists a new transaction and returns the enriched row with its
// assigned id.
func (l *Ledger) Add(ctx context.Context, data models.Transaction) (models.Transaction, error) {
	if err := l.validate(data); err != nil {
		l.fail("add", err)
		return models.Transaction{}, err
	}

	data.ID = 0
	tx := l.Enrich(data)
	if _, err := l.store.AddTransaction(ctx, &tx); err != nil {
		l.fail("add", err)
		return models.Transaction{}, err
	}

	l.state.AppendTransaction(tx)
	l.saveSnapshot()
	l.cache.InvalidateDate(tx.Date)

	l.bus.Publish(bus.TransactionAdded{Tx: tx})
	l.bus.Publish(bus.TransactionUpdated{Tx: tx})
	l.bus.Publish(bus.TransactionsReloaded{Tx: l.state.Transactions()})
	return tx, nil
}

// Update replaces an existing transaction by id. A row missing from the
// in-memory mirror is tolerated; the store write still happens.
func (l *Ledger) Update(ctx context.Context, data models.Transaction) (models.Transaction, error) {
	if data.ID == 0 {
		err := &ValidationError{Field: "id", Reason: "missing on update"}
		l.fail("update", err)
		return models.Transaction{}, err
	}
	if err := l.validate(data); err != nil {
		l.fail("update", err)
		return models.Transaction{}, err
	}

	tx := l.Enrich(data)
	if err := l.store.PutTransaction(ctx, &tx); err != nil {
		l.fail("update", err)
		return models.Transaction{}, err
	}

	// a date change leaves the old period's cache entry stale too
	if prev, ok := l.state.TransactionByID(tx.ID); ok && prev.Date != tx.Date {
		l.cache.InvalidateDate(prev.Date)
	}
	l.state.ReplaceTransaction(tx)
	l.saveSnapshot()
	l.cache.InvalidateDate(tx.Date)

	l.bus.Publish(bus.TransactionSaved{Tx: tx})
	l.bus.Publish(bus.TransactionUpdated{Tx: tx})
	l.bus.Publish(bus.TransactionsReloaded{Tx: l.state.Transactions()})
	return tx, nil
}

// Delete removes a transaction by id. When the row is unknown locally the
// store delete still runs, but cache invalidation is skipped since the
// date cannot be learned.
func (l *Ledger) Delete(ctx context.Context, id uint) error {
	prev, known := l.state.TransactionByID(id)

	if err := l.store.DeleteTransaction(ctx, id); err != nil {
		l.fail("delete", err)
		return err
	}

	if known {
		l.state.RemoveTransaction(id)
		l.saveSnapshot()
		l.cache.InvalidateDate(prev.Date)
		l.bus.Publish(bus.TransactionUpdated{Tx: prev})
	}
	l.bus.Publish(bus.TransactionDeleted{ID: id})
	l.bus.Publish(bus.TransactionsReloaded{Tx: l.state.Transactions()})
	return nil
}

// ---------- reads ----------

// MonthTransactions serves one "YYYY-MM" month through the query cache,
// re-enriching rows on every cache miss.
func (l *Ledger) MonthTransactions(ctx context.Context, yearMonth string) ([]models.Transaction, error) {
	if rows, ok := l.cache.GetMonth(yearMonth); ok {
		return rows, nil
	}
	rows, err := l.store.TransactionsByMonth(ctx, yearMonth)
	if err != nil {
		return nil, err
	}
	rows = l.enrichAll(rows)
	l.cache.PutMonth(yearMonth, rows)
	return rows, nil
}

// RangeTransactions serves an inclusive date range. Full-calendar-year
// ranges participate in the yearly cache; anything else goes straight to
// the store, uncached.
func (l *Ledger) RangeTransactions(ctx context.Context, start, end string) ([]models.Transaction, error) {
	if err := util.ValidateDate(start); err != nil {
		return nil, &ValidationError{Field: "start", Reason: err.Error()}
	}
	if err := util.ValidateDate(end); err != nil {
		return nil, &ValidationError{Field: "end", Reason: err.Error()}
	}

	year, fullYear := util.FullYearRange(start, end)
	if fullYear {
		if rows, ok := l.cache.GetYear(year); ok {
			return rows, nil
		}
	}
	rows, err := l.store.TransactionsInDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	rows = l.enrichAll(rows)
	if fullYear {
		l.cache.PutYear(year, rows)
	}
	return rows, nil
}

// Transactions returns the in-memory ledger mirror, re-enriched against
// the current taxonomy.
func (l *Ledger) Transactions() []models.Transaction {
	return l.enrichAll(l.state.Transactions())
}

func (l *Ledger) enrichAll(rows []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(rows))
	for i, tx := range rows {
		out[i] = l.Enrich(tx)
	}
	return out
}

// ---------- side effects ----------

// saveSnapshot is the post-persist mirror flush. Failures here never undo
// a durable write; they are logged and the operation continues.
func (l *Ledger) saveSnapshot() {
	if err := l.snap.Save(l.state.Export()); err != nil {
		l.log.Error().Err(err).Msg("snapshot save failed")
	}
}

// fail converts an operation error into the error notification every
// mutating call is contracted to emit when it cannot emit success.
func (l *Ledger) fail(op string, err error) {
	l.log.Error().Err(err).Str("op", op).Msg("ledger operation failed")
	l.bus.Publish(bus.OperationFailed{Op: op, Err: err})
}
