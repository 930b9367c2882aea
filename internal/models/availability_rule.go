package models

import "time"

// AvailabilityRule is a weekly recurring pattern: on every weekday listed in
// DaysOfWeek, between StartDate and EndDate, the provider offers a consultation
// slot at TimeOfDay. Dates listed in Exceptions never materialize a slot.
//
// DaysOfWeek and Exceptions are stored as comma-separated values
// ("1,3" / "2025-01-08,2025-01-15") so the row stays portable across drivers.
type AvailabilityRule struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProviderID uint `gorm:"index" json:"provider_id"`

	DaysOfWeek string `gorm:"size:20;not null" json:"days_of_week"`
	TimeOfDay  string `gorm:"size:5;not null" json:"time_of_day"`

	StartDate string `gorm:"size:10;not null" json:"start_date"`
	EndDate   string `gorm:"size:10;not null" json:"end_date"`

	Exceptions string `gorm:"type:text" json:"exceptions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
