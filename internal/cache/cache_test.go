package cache

import (
	"testing"
	"time"

	"github.com/antiXlive/Expense/internal/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewWithClock(5*time.Minute, clock.Now), clock
}

func rows(ids ...uint) []models.Transaction {
	out := make([]models.Transaction, len(ids))
	for i, id := range ids {
		out[i] = models.Transaction{ID: id, Date: "2025-03-15"}
	}
	return out
}

func TestMonthHitWithinTTL(t *testing.T) {
	c, clock := newTestCache()
	c.PutMonth("2025-03", rows(1, 2))

	clock.Advance(4 * time.Minute)
	got, ok := c.GetMonth("2025-03")
	if !ok {
		t.Fatal("expected cache hit within TTL")
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("unexpected rows: %+v", got)
	}
}

func TestMonthExpiresAfterTTL(t *testing.T) {
	c, clock := newTestCache()
	c.PutMonth("2025-03", rows(1))

	clock.Advance(5 * time.Minute)
	if _, ok := c.GetMonth("2025-03"); ok {
		t.Error("entry past TTL must be a miss even if never invalidated")
	}
}

func TestInvalidateDateIsPrecise(t *testing.T) {
	c, _ := newTestCache()
	c.PutMonth("2025-03", rows(1))
	c.PutMonth("2025-04", rows(2))
	c.PutYear(2025, rows(1, 2))
	c.PutYear(2024, rows(3))

	c.InvalidateDate("2025-03-15")

	if _, ok := c.GetMonth("2025-03"); ok {
		t.Error("written month must be evicted")
	}
	if _, ok := c.GetYear(2025); ok {
		t.Error("written year must be evicted")
	}
	// unrelated periods still served from cache on the very next call
	if _, ok := c.GetMonth("2025-04"); !ok {
		t.Error("unrelated month must stay cached")
	}
	if _, ok := c.GetYear(2024); !ok {
		t.Error("unrelated year must stay cached")
	}
}

func TestInvalidateDateIgnoresGarbage(t *testing.T) {
	c, _ := newTestCache()
	c.PutMonth("2025-03", rows(1))

	c.InvalidateDate("not-a-date")

	if _, ok := c.GetMonth("2025-03"); !ok {
		t.Error("garbage date must not evict anything")
	}
}

func TestInvalidateAll(t *testing.T) {
	c, _ := newTestCache()
	c.PutMonth("2025-03", rows(1))
	c.PutYear(2025, rows(1))

	c.InvalidateAll()

	if _, ok := c.GetMonth("2025-03"); ok {
		t.Error("month survived full flush")
	}
	if _, ok := c.GetYear(2025); ok {
		t.Error("year survived full flush")
	}
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	c, _ := newTestCache()
	c.PutMonth("2025-03", rows(1))

	got, _ := c.GetMonth("2025-03")
	got[0].ID = 99

	again, _ := c.GetMonth("2025-03")
	if again[0].ID != 1 {
		t.Error("caller mutation leaked into the cache")
	}
}

func TestPutCopiesInput(t *testing.T) {
	c, _ := newTestCache()
	input := rows(1)
	c.PutMonth("2025-03", input)
	input[0].ID = 99

	got, _ := c.GetMonth("2025-03")
	if got[0].ID != 1 {
		t.Error("input mutation leaked into the cache")
	}
}
