package models

import "time"

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProviderID uint `gorm:"index" json:"provider_id"`
	Provider   User `gorm:"foreignKey:ProviderID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"provider"`

	ClientID uint `gorm:"index" json:"client_id"`
	Client   User `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	Date string `gorm:"size:10;not null" json:"date"`
	Time string `gorm:"size:5;not null" json:"time"`

	Status string `gorm:"size:20;default:'pending_payment'" json:"status"`

	Notes          string `gorm:"size:255" json:"notes"`
	PostponeReason string `gorm:"size:255" json:"postpone_reason"`

	PaymentMethod string `gorm:"size:30" json:"payment_method"`
	PaymentRef    string `gorm:"size:64" json:"payment_ref"`
	CaseID        *uint  `json:"case_id"`

	CancelledAt *time.Time `json:"cancelled_at"`
	ConfirmedAt *time.Time `json:"confirmed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
