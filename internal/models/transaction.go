package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderEmoji is shown for transactions without a resolvable category.
const PlaceholderEmoji = "🏷️"

// Transaction represents a single financial event. Amounts are signed
// decimals with expenses stored positive. Date is an ISO calendar date
// (YYYY-MM-DD) and is the primary range-query dimension.
//
// CatName, Emoji and SubName are denormalized from the taxonomy for display.
// They are recomputed from the current category tree on every read path and
// are never authoritative.
type Transaction struct {
	ID     uint            `gorm:"primaryKey" json:"id"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date   string          `gorm:"size:10;not null;index;index:idx_tx_date_cat,priority:1;index:idx_tx_date_sub,priority:1" json:"date"`
	CatID  *uint           `gorm:"index:idx_tx_date_cat,priority:2" json:"catId"`
	SubID  *uint           `gorm:"index:idx_tx_date_sub,priority:2" json:"subId"`
	Note   string          `gorm:"size:255" json:"note"`

	CatName *string `gorm:"size:64" json:"catName"`
	Emoji   string  `gorm:"size:16" json:"emoji"`
	SubName *string `gorm:"size:64" json:"subName"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
