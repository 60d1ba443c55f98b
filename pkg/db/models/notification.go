package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// Notification is an in-app message for a single user.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Kind      enums.NotificationKind `gorm:"column:kind;not null;index"`
	Title     string                 `gorm:"column:title;not null"`
	Body      string                 `gorm:"column:body;not null"`
	Data      json.RawMessage        `gorm:"column:data;type:jsonb"`
	ReadAt    *time.Time             `gorm:"column:read_at;index"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
