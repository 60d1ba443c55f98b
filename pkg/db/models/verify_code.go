package models

import (
	"time"

	"github.com/google/uuid"
)

// VerifyCode stores a one-time code challenged against an msisdn or email.
// Validation locks the row to keep concurrent attempts from double-spending
// the same code.
type VerifyCode struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Msisdn     *string    `gorm:"column:msisdn;index"`
	Email      *string    `gorm:"column:email;index"`
	Challenge  string     `gorm:"column:challenge;not null"`
	Code       string     `gorm:"column:code;not null"`
	ValidUntil time.Time  `gorm:"column:valid_until;not null;index"`
	IsUsed     bool       `gorm:"column:is_used;not null;default:false"`
	IsVerified bool       `gorm:"column:is_verified;not null;default:false"`
	VerifiedAt *time.Time `gorm:"column:verified_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
