package ledger

import (
	"strconv"

	"github.com/antiXlive/Expense/internal/models"
	"github.com/antiXlive/Expense/internal/util"

	"github.com/shopspring/decimal"
)

// Uncategorized keys per-category totals for rows without a category.
const Uncategorized = "uncategorized"

// Stats is a pure summary over a transaction slice: totals per category id,
// per calendar month, and overall.
type Stats struct {
	PerCategory map[string]decimal.Decimal
	Monthly     map[string]decimal.Decimal
	Total       decimal.Decimal
}

// Summarize computes Stats for the given rows. Rows with unparseable dates
// are counted in the totals but skipped in the monthly breakdown.
func Summarize(rows []models.Transaction) Stats {
	s := Stats{
		PerCategory: make(map[string]decimal.Decimal),
		Monthly:     make(map[string]decimal.Decimal),
		Total:       decimal.Zero,
	}
	for _, tx := range rows {
		key := Uncategorized
		if tx.CatID != nil {
			key = strconv.FormatUint(uint64(*tx.CatID), 10)
		}
		s.PerCategory[key] = s.PerCategory[key].Add(tx.Amount)
		s.Total = s.Total.Add(tx.Amount)

		if ym, err := util.MonthKey(tx.Date); err == nil {
			s.Monthly[ym] = s.Monthly[ym].Add(tx.Amount)
		}
	}
	return s
}
