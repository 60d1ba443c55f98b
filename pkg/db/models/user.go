package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username         string         `gorm:"column:username;type:text;not null;uniqueIndex"`
	Email            string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash     string         `gorm:"column:password_hash;not null"`
	FirstName        string         `gorm:"column:first_name;not null"`
	LastName         string         `gorm:"column:last_name"`
	Msisdn           *string        `gorm:"column:msisdn;uniqueIndex"`
	IsMsisdnVerified bool           `gorm:"column:is_msisdn_verified;not null;default:false"`
	Role             enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	IsActive         bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt      *time.Time     `gorm:"column:last_login_at"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
