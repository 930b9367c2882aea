package models

import "time"

// CustomSlot is a one-off slot published outside any recurring rule.
// Recurring slots are never persisted; they are recomputed from rules on read.
// A custom slot on the same (date, time) overrides the rule-derived one.
type CustomSlot struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProviderID uint `gorm:"index:idx_custom_slots_provider_date" json:"provider_id"`

	Date string `gorm:"size:10;not null;index:idx_custom_slots_provider_date" json:"date"`
	Time string `gorm:"size:5;not null" json:"time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
