package ledger

import (
	"testing"

	"github.com/antiXlive/Expense/internal/models"

	"github.com/shopspring/decimal"
)

func TestSummarize(t *testing.T) {
	food := uint(3)
	travel := uint(7)
	rows := []models.Transaction{
		{Amount: decimal.NewFromInt(100), Date: "2025-03-01", CatID: &food},
		{Amount: decimal.NewFromInt(50), Date: "2025-03-20", CatID: &food},
		{Amount: decimal.NewFromInt(200), Date: "2025-04-02", CatID: &travel},
		{Amount: decimal.NewFromInt(25), Date: "2025-04-10"},
	}

	s := Summarize(rows)

	if !s.Total.Equal(decimal.NewFromInt(375)) {
		t.Errorf("total = %s, want 375", s.Total)
	}
	if !s.PerCategory["3"].Equal(decimal.NewFromInt(150)) {
		t.Errorf("food total = %s, want 150", s.PerCategory["3"])
	}
	if !s.PerCategory["7"].Equal(decimal.NewFromInt(200)) {
		t.Errorf("travel total = %s, want 200", s.PerCategory["7"])
	}
	if !s.PerCategory[Uncategorized].Equal(decimal.NewFromInt(25)) {
		t.Errorf("uncategorized total = %s, want 25", s.PerCategory[Uncategorized])
	}
	if !s.Monthly["2025-03"].Equal(decimal.NewFromInt(150)) {
		t.Errorf("march = %s, want 150", s.Monthly["2025-03"])
	}
	if !s.Monthly["2025-04"].Equal(decimal.NewFromInt(225)) {
		t.Errorf("april = %s, want 225", s.Monthly["2025-04"])
	}
}

func TestSummarizeSkipsBadDatesInMonthly(t *testing.T) {
	rows := []models.Transaction{
		{Amount: decimal.NewFromInt(10), Date: "garbage"},
		{Amount: decimal.NewFromInt(5), Date: "2025-03-01"},
	}

	s := Summarize(rows)

	if !s.Total.Equal(decimal.NewFromInt(15)) {
		t.Errorf("bad-date row must still count in the total, got %s", s.Total)
	}
	if len(s.Monthly) != 1 {
		t.Errorf("bad-date row leaked into monthly breakdown: %+v", s.Monthly)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if !s.Total.Equal(decimal.Zero) {
		t.Errorf("empty total = %s, want 0", s.Total)
	}
	if len(s.PerCategory) != 0 || len(s.Monthly) != 0 {
		t.Errorf("empty input produced entries: %+v", s)
	}
}
