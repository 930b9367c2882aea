package models

import "time"

const (
	RoleProvider = "provider"
	RoleClient   = "client"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'client'" json:"role"`

	// Provider profile. Zero-valued for clients.
	Specialty       string  `gorm:"size:100" json:"specialty"`
	ConsultationFee float64 `json:"consultation_fee"`
	Timezone        string  `gorm:"size:50" json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
