package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// Share grants another user access to a basket. UserID is the granter
// (always the basket creator), ToUserID the grantee. Admin implies CRUD.
type Share struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BasketID  uuid.UUID           `gorm:"column:basket_id;type:uuid;not null;uniqueIndex:ux_shares_basket_to_user"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	ToUserID  uuid.UUID           `gorm:"column:to_user_id;type:uuid;not null;uniqueIndex:ux_shares_basket_to_user;index"`
	Status    enums.GeneralStatus `gorm:"column:status;not null;default:waiting;index"`
	Sort      int                 `gorm:"column:sort;not null;default:1"`
	IsAdmin   bool                `gorm:"column:is_admin;not null;default:false"`
	IsCanCRUD bool                `gorm:"column:is_can_crud;not null;default:false"`
	IsCanBuy  bool                `gorm:"column:is_can_buy;not null;default:false"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// Normalize enforces the grant invariant before any save: an admin grant
// always carries CRUD.
func (s *Share) Normalize() {
	if s.IsAdmin {
		s.IsCanCRUD = true
	}
}
