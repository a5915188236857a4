package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/antiXlive/Expense/internal/bus"
	"github.com/antiXlive/Expense/internal/cache"
	"github.com/antiXlive/Expense/internal/config"
	"github.com/antiXlive/Expense/internal/database"
	"github.com/antiXlive/Expense/internal/models"
	"github.com/antiXlive/Expense/internal/snapshot"
	"github.com/antiXlive/Expense/internal/state"
	"github.com/antiXlive/Expense/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type env struct {
	ledger *Ledger
	store  *store.Store
	state  *state.State
	cache  *cache.Cache

	mu     sync.Mutex
	events []string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(dir, "test.db")})
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := &env{
		store: store.New(db),
		state: state.New(),
		cache: cache.New(5 * time.Minute),
	}
	b := bus.New(zerolog.Nop())
	b.Subscribe(func(ev bus.Event) {
		e.mu.Lock()
		e.events = append(e.events, bus.Kind(ev))
		e.mu.Unlock()
	})
	snap := snapshot.New(filepath.Join(dir, "snapshot.json"))
	e.ledger = New(zerolog.Nop(), e.store, e.state, e.cache, snap, b)
	return e
}

// addCategory seeds the store and mirror the way the taxonomy manager would.
func (e *env) addCategory(t *testing.T, ctx context.Context, name, emoji string) models.Category {
	t.Helper()
	cat := models.Category{Name: name, Emoji: emoji}
	if err := e.store.AddCategory(ctx, &cat); err != nil {
		t.Fatal(err)
	}
	cats, err := e.store.AllCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	subs, err := e.store.AllSubcategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	e.state.SetTaxonomy(cats, subs)
	return cat
}

func (e *env) drainEvents() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.events
	e.events = nil
	return out
}

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAddAssignsIDAndPublishes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tx, err := e.ledger.Add(ctx, models.Transaction{Amount: amount(500), Date: "2025-03-15", Note: "lunch"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.ID == 0 {
		t.Error("add must assign an id")
	}
	if tx.Emoji != models.PlaceholderEmoji || tx.CatName != nil {
		t.Errorf("uncategorized row must carry placeholder enrichment, got %+v", tx)
	}

	got := e.drainEvents()
	want := []string{"tx-added", "tx-updated", "db-loaded"}
	if len(got) != len(want) {
		t.Fatalf("events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events %v, want %v", got, want)
		}
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := []models.Transaction{
		{Amount: amount(5), Date: "15-03-2025"},                     // wrong layout
		{Amount: amount(5), Date: "2025-02-30"},                     // impossible day
		{Amount: amount(20_000_000), Date: "2025-03-15"},            // magnitude
		{Amount: amount(5), Date: "2025-03-15", SubID: ptr(uint(1))}, // sub without cat
	}
	for _, tc := range cases {
		_, err := e.ledger.Add(ctx, tc)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Add(%+v) err = %v, want ValidationError", tc, err)
		}
	}

	rows, _ := e.store.AllTransactions(ctx)
	if len(rows) != 0 {
		t.Errorf("rejected input must not be persisted, found %d rows", len(rows))
	}

	for _, kind := range e.drainEvents() {
		if kind != "op-failed" {
			t.Errorf("unexpected event %q after validation failure", kind)
		}
	}
}

func ptr[T any](v T) *T { return &v }

// An uncategorized transaction picks up its category's name and emoji as
// soon as it is recategorized, and the month cache does not serve the
// stale row.
func TestRecategorizeRefreshesMonthView(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tx, err := e.ledger.Add(ctx, models.Transaction{Amount: amount(500), Date: "2025-03-15"})
	if err != nil {
		t.Fatal(err)
	}

	rows, err := e.ledger.MonthTransactions(ctx, "2025-03")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].CatName != nil || rows[0].Emoji != models.PlaceholderEmoji {
		t.Fatalf("expected one uncategorized row, got %+v", rows)
	}

	food := e.addCategory(t, ctx, "Food", "🍔")

	tx.CatID = &food.ID
	if _, err := e.ledger.Update(ctx, tx); err != nil {
		t.Fatalf("update: %v", err)
	}

	rows, err = e.ledger.MonthTransactions(ctx, "2025-03")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if rows[0].CatName == nil || *rows[0].CatName != "Food" || rows[0].Emoji != "🍔" {
		t.Errorf("month view served stale enrichment: %+v", rows[0])
	}
}

func TestUpdateRequiresID(t *testing.T) {
	e := newEnv(t)

	_, err := e.ledger.Update(context.Background(), models.Transaction{Amount: amount(5), Date: "2025-03-15"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "id" {
		t.Errorf("update without id: err = %v, want ValidationError on id", err)
	}
}

func TestUpdateDateChangeInvalidatesBothMonths(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tx, err := e.ledger.Add(ctx, models.Transaction{Amount: amount(100), Date: "2025-03-15"})
	if err != nil {
		t.Fatal(err)
	}

	// warm both month entries
	if _, err := e.ledger.MonthTransactions(ctx, "2025-03"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ledger.MonthTransactions(ctx, "2025-04"); err != nil {
		t.Fatal(err)
	}

	tx.Date = "2025-04-01"
	if _, err := e.ledger.Update(ctx, tx); err != nil {
		t.Fatal(err)
	}

	march, _ := e.ledger.MonthTransactions(ctx, "2025-03")
	if len(march) != 0 {
		t.Errorf("old month still serves the moved row: %+v", march)
	}
	april, _ := e.ledger.MonthTransactions(ctx, "2025-04")
	if len(april) != 1 || april[0].Date != "2025-04-01" {
		t.Errorf("new month missing the moved row: %+v", april)
	}
}

func TestInvalidationIsScopedToWrittenMonth(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.ledger.Add(ctx, models.Transaction{Amount: amount(10), Date: "2025-02-10"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ledger.MonthTransactions(ctx, "2025-02"); err != nil {
		t.Fatal(err)
	}

	// a March write must not evict February
	if _, err := e.ledger.Add(ctx, models.Transaction{Amount: amount(20), Date: "2025-03-10"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.cache.GetMonth("2025-02"); !ok {
		t.Error("write in another month evicted an unrelated entry")
	}
	if _, ok := e.cache.GetMonth("2025-03"); ok {
		t.Error("written month must be evicted")
	}
}

func TestDeleteUnknownIDIsQuiet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.ledger.Add(ctx, models.Transaction{Amount: amount(10), Date: "2025-03-10"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ledger.MonthTransactions(ctx, "2025-03"); err != nil {
		t.Fatal(err)
	}
	e.drainEvents()

	if err := e.ledger.Delete(ctx, 9999); err != nil {
		t.Fatalf("deleting an unknown id must not fail: %v", err)
	}

	// the date is unknowable, so nothing was invalidated
	if _, ok := e.cache.GetMonth("2025-03"); !ok {
		t.Error("delete of unknown id must skip cache invalidation")
	}

	got := e.drainEvents()
	for _, kind := range got {
		if kind == "tx-updated" {
			t.Error("no updated event should fire for an unknown row")
		}
	}
}

func TestDeleteKnownRow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tx, err := e.ledger.Add(ctx, models.Transaction{Amount: amount(10), Date: "2025-03-10"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.ledger.MonthTransactions(ctx, "2025-03"); err != nil {
		t.Fatal(err)
	}
	e.drainEvents()

	if err := e.ledger.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, ok := e.cache.GetMonth("2025-03"); ok {
		t.Error("month entry must be evicted after delete")
	}
	rows, _ := e.store.AllTransactions(ctx)
	if len(rows) != 0 {
		t.Errorf("row survived delete: %+v", rows)
	}
	if _, known := e.state.TransactionByID(tx.ID); known {
		t.Error("row survived in the mirror")
	}
}

// Enrichment always reflects the taxonomy as of read time, not as of the
// original write.
func TestReadsReEnrichAfterRename(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	food := e.addCategory(t, ctx, "Food", "🍔")
	if _, err := e.ledger.Add(ctx, models.Transaction{Amount: amount(9), Date: "2025-03-15", CatID: &food.ID}); err != nil {
		t.Fatal(err)
	}

	food.Name = "Dining"
	food.Emoji = "🍽️"
	if err := e.store.UpdateCategory(ctx, &food); err != nil {
		t.Fatal(err)
	}
	cats, _ := e.store.AllCategories(ctx)
	e.state.SetTaxonomy(cats, nil)
	e.cache.InvalidateAll()

	rows, err := e.ledger.MonthTransactions(ctx, "2025-03")
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].CatName == nil || *rows[0].CatName != "Dining" || rows[0].Emoji != "🍽️" {
		t.Errorf("read did not re-enrich against the renamed category: %+v", rows[0])
	}

	mirror := e.ledger.Transactions()
	if mirror[0].CatName == nil || *mirror[0].CatName != "Dining" {
		t.Errorf("mirror read did not re-enrich: %+v", mirror[0])
	}
}

func TestRangeTransactions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, date := range []string{"2025-01-05", "2025-06-15", "2025-12-31", "2026-01-01"} {
		if _, err := e.ledger.Add(ctx, models.Transaction{Amount: amount(1), Date: date}); err != nil {
			t.Fatal(err)
		}
	}

	// full calendar year participates in the yearly cache
	rows, err := e.ledger.RangeTransactions(ctx, "2025-01-01", "2025-12-31")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("full-year query returned %d rows, want 3", len(rows))
	}
	if _, ok := e.cache.GetYear(2025); !ok {
		t.Error("full-year result not cached")
	}

	// partial ranges bypass the cache entirely
	rows, err = e.ledger.RangeTransactions(ctx, "2025-01-01", "2025-06-30")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("partial range returned %d rows, want 2", len(rows))
	}

	if _, err := e.ledger.RangeTransactions(ctx, "bad", "2025-12-31"); err == nil {
		t.Error("invalid start date must be rejected")
	}
}
