// Package cache bounds repeated range scans for the two hot access
// patterns, one calendar month and one calendar year. Entries live for a
// fixed TTL; a write dated inside a cached period evicts that period
// immediately regardless of TTL. Arbitrary ranges are never cached, which
// keeps the key space bounded.
package cache

import (
	"sync"
	"time"

	"github.com/antiXlive/Expense/internal/models"
	"github.com/antiXlive/Expense/internal/util"
)

type entry struct {
	rows     []models.Transaction
	loadedAt time.Time
}

type Cache struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	months map[string]entry
	years  map[int]entry
}

func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock injects the time source, for tests.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		ttl:    ttl,
		now:    now,
		months: make(map[string]entry),
		years:  make(map[int]entry),
	}
}

func (c *Cache) fresh(e entry) bool {
	return c.now().Sub(e.loadedAt) < c.ttl
}

// GetMonth returns the cached rows for a "YYYY-MM" key if the entry is
// still within its TTL. Expired entries are misses even if never evicted.
func (c *Cache) GetMonth(yearMonth string) ([]models.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.months[yearMonth]
	if !ok || !c.fresh(e) {
		return nil, false
	}
	return append([]models.Transaction(nil), e.rows...), true
}

func (c *Cache) PutMonth(yearMonth string, rows []models.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.months[yearMonth] = entry{
		rows:     append([]models.Transaction(nil), rows...),
		loadedAt: c.now(),
	}
}

func (c *Cache) GetYear(year int) ([]models.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.years[year]
	if !ok || !c.fresh(e) {
		return nil, false
	}
	return append([]models.Transaction(nil), e.rows...), true
}

func (c *Cache) PutYear(year int, rows []models.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.years[year] = entry{
		rows:     append([]models.Transaction(nil), rows...),
		loadedAt: c.now(),
	}
}

// InvalidateDate evicts exactly the month and year entries covering the
// given ISO date. Unrelated periods stay cached. Unparseable dates are
// ignored; there is nothing to evict for them.
func (c *Cache) InvalidateDate(date string) {
	ym, err := util.MonthKey(date)
	if err != nil {
		return
	}
	year, err := util.YearOf(date)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.months, ym)
	delete(c.years, year)
}

// InvalidateAll drops every entry. Used after bulk taxonomy replaces and
// imports, when enrichment on all cached rows is stale.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.months = make(map[string]entry)
	c.years = make(map[int]entry)
}
