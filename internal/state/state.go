// Package state holds the in-memory mirror of the data layer. It is the
// explicit handle passed to every component at boot; nothing reads it
// through globals. Only the ledger and taxonomy manager mutate it, and all
// reads hand back copies the caller may treat as immutable snapshots.
package state

import (
	"sync"

	"github.com/antiXlive/Expense/internal/models"
	"github.com/antiXlive/Expense/internal/snapshot"
)

type State struct {
	mu         sync.RWMutex
	tx         []models.Transaction
	cats       []models.Category
	subs       []models.Subcategory
	settings   models.Settings
	lastBackup int64
	lastScreen string
}

func New() *State {
	return &State{settings: models.DefaultSettings()}
}

// Restore replaces the whole mirror from a loaded snapshot.
func (s *State) Restore(data snapshot.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tx = append([]models.Transaction(nil), data.Tx...)
	s.cats = append([]models.Category(nil), data.Categories...)
	s.subs = append([]models.Subcategory(nil), data.Subcategories...)
	s.settings = data.Settings
	s.lastBackup = data.LastBackup
	s.lastScreen = data.LastScreen
}

// Export captures the whole mirror for snapshot persistence.
func (s *State) Export() snapshot.Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot.Data{
		Tx:            append([]models.Transaction(nil), s.tx...),
		Categories:    append([]models.Category(nil), s.cats...),
		Subcategories: append([]models.Subcategory(nil), s.subs...),
		Settings:      s.settings,
		LastBackup:    s.lastBackup,
		LastScreen:    s.lastScreen,
	}
}

// ---------- transactions ----------

func (s *State) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Transaction(nil), s.tx...)
}

func (s *State) SetTransactions(tx []models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tx = append([]models.Transaction(nil), tx...)
}

func (s *State) AppendTransaction(tx models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tx = append(s.tx, tx)
}

// ReplaceTransaction swaps the row with the same id. Missing rows are a
// no-op; the caller must not treat that as an error.
func (s *State) ReplaceTransaction(tx models.Transaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tx {
		if s.tx[i].ID == tx.ID {
			s.tx[i] = tx
			return true
		}
	}
	return false
}

// RemoveTransaction filters the row out of the mirror, returning it if it
// was present.
func (s *State) RemoveTransaction(id uint) (models.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tx {
		if s.tx[i].ID == id {
			removed := s.tx[i]
			s.tx = append(s.tx[:i], s.tx[i+1:]...)
			return removed, true
		}
	}
	return models.Transaction{}, false
}

func (s *State) TransactionByID(id uint) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.tx {
		if s.tx[i].ID == id {
			return s.tx[i], true
		}
	}
	return models.Transaction{}, false
}

// ---------- taxonomy ----------

func (s *State) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category(nil), s.cats...)
}

func (s *State) Subcategories() []models.Subcategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Subcategory(nil), s.subs...)
}

func (s *State) SetTaxonomy(cats []models.Category, subs []models.Subcategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = append([]models.Category(nil), cats...)
	s.subs = append([]models.Subcategory(nil), subs...)
}

func (s *State) CategoryByID(id uint) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.cats {
		if s.cats[i].ID == id {
			return s.cats[i], true
		}
	}
	return models.Category{}, false
}

func (s *State) SubcategoryByID(id uint) (models.Subcategory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.subs {
		if s.subs[i].ID == id {
			return s.subs[i], true
		}
	}
	return models.Subcategory{}, false
}

// ---------- settings ----------

func (s *State) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *State) SetSettings(settings models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

func (s *State) LastBackup() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastBackup
}

func (s *State) SetLastBackup(ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBackup = ts
}

func (s *State) LastScreen() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastScreen
}

func (s *State) SetLastScreen(screen string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScreen = screen
}
