// Package bus is the notification fan-out between the data layer and its
// UI collaborators. Events are a closed set of typed variants; subscribers
// are invoked synchronously and independently, so one misbehaving handler
// cannot block the rest.
package bus

import (
	"sync"

	"github.com/antiXlive/Expense/internal/models"

	"github.com/rs/zerolog"
)

// Event is the tagged union of every notification the data layer emits.
type Event interface {
	eventKind() string
}

// TransactionAdded is published after a new transaction is durably stored.
type TransactionAdded struct{ Tx models.Transaction }

// TransactionSaved is published after an existing transaction is replaced.
type TransactionSaved struct{ Tx models.Transaction }

// TransactionUpdated signals that a single row changed in any way; it
// accompanies adds, saves and deletes.
type TransactionUpdated struct{ Tx models.Transaction }

// TransactionDeleted is published after a row is removed.
type TransactionDeleted struct{ ID uint }

// TransactionsReloaded carries the full ledger after a bulk change or the
// initial store load.
type TransactionsReloaded struct{ Tx []models.Transaction }

// CategoriesUpdated is published whenever the taxonomy changes.
type CategoriesUpdated struct{ Categories []models.Category }

// SettingsUpdated is published after a settings write.
type SettingsUpdated struct{ Settings models.Settings }

// OperationFailed reports a mutating call that could not complete. Every
// mutating call ends in either a success event or one of these, never
// neither.
type OperationFailed struct {
	Op  string
	Err error
}

func (TransactionAdded) eventKind() string     { return "tx-added" }
func (TransactionSaved) eventKind() string     { return "tx-saved" }
func (TransactionUpdated) eventKind() string   { return "tx-updated" }
func (TransactionDeleted) eventKind() string   { return "tx-deleted" }
func (TransactionsReloaded) eventKind() string { return "db-loaded" }
func (CategoriesUpdated) eventKind() string    { return "categories-updated" }
func (SettingsUpdated) eventKind() string      { return "settings-updated" }
func (OperationFailed) eventKind() string      { return "op-failed" }

// Kind returns the event's wire name, mainly for logging.
func Kind(e Event) string { return e.eventKind() }

// Handler receives every published event; switch on the concrete type.
type Handler func(Event)

// Bus fans events out to the current subscribers.
type Bus struct {
	log  zerolog.Logger
	mu   sync.Mutex
	seq  int
	subs map[int]Handler
}

func New(log zerolog.Logger) *Bus {
	return &Bus{log: log, subs: make(map[int]Handler)}
}

// Subscribe registers a handler and returns its cancel func.
func (b *Bus) Subscribe(h Handler) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	id := b.seq
	b.subs[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers e to all current subscribers, synchronously. A panic in
// one handler is recovered and logged; remaining handlers still run.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		b.safeCall(h, e)
	}
}

func (b *Bus) safeCall(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Str("event", Kind(e)).Interface("panic", r).Msg("event handler panicked")
		}
	}()
	h(e)
}
