package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is metadata for a file stored in the object bucket. Exactly one
// of BasketID or StuffID is set.
type Attachment struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BasketID  *uuid.UUID `gorm:"column:basket_id;type:uuid;index"`
	StuffID   *uuid.UUID `gorm:"column:stuff_id;type:uuid;index"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	Name      string     `gorm:"column:name;not null"`
	ObjectKey string     `gorm:"column:object_key;not null;uniqueIndex"`
	MimeType  string     `gorm:"column:mime_type;not null"`
	SizeBytes int64      `gorm:"column:size_bytes;not null;default:0"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
