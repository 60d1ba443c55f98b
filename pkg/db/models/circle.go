package models

import (
	"time"

	"github.com/google/uuid"
)

// Circle is a named contact group owned by one user, used as an address book
// when inviting people into baskets.
type Circle struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CircleMember puts a user into a circle. The pair (circle, user) is unique.
type CircleMember struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CircleID  uuid.UUID `gorm:"column:circle_id;type:uuid;not null;uniqueIndex:ux_circle_members_circle_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_circle_members_circle_user;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
