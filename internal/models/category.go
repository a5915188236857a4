package models

import "time"

// Category is a named, emoji-tagged grouping of transactions.
// Names are unique after trimming; rows violating that are repaired at boot.
type Category struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:64;index;not null" json:"name"`
	Emoji     string `gorm:"size:16" json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Subcategory is a named refinement owned by exactly one Category.
type Subcategory struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CatID     uint   `gorm:"index;not null" json:"catId"`
	Name      string `gorm:"size:64;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
