package models

import "time"

// Reservation is the ledger row that makes a slot taken. The composite unique
// index is what guarantees at most one booking per (provider, date, time):
// two concurrent inserts cannot both succeed.
type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProviderID uint   `gorm:"uniqueIndex:idx_reservations_slot" json:"provider_id"`
	Date       string `gorm:"size:10;uniqueIndex:idx_reservations_slot" json:"date"`
	Time       string `gorm:"size:5;uniqueIndex:idx_reservations_slot" json:"time"`

	BookingID uint `json:"booking_id"`

	CreatedAt time.Time `json:"created_at"`
}
