package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// UserDTO is the API representation of a user. The password hash never
// leaves the service layer.
type UserDTO struct {
	ID               uuid.UUID      `json:"id"`
	Username         string         `json:"username"`
	Email            string         `json:"email"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name,omitempty"`
	Msisdn           *string        `json:"msisdn,omitempty"`
	IsMsisdnVerified bool           `json:"is_msisdn_verified"`
	Role             enums.UserRole `json:"role"`
	IsActive         bool           `json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
}

// ToDTO maps a user row to its API shape.
func ToDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Msisdn:           u.Msisdn,
		IsMsisdnVerified: u.IsMsisdnVerified,
		Role:             u.Role,
		IsActive:         u.IsActive,
		CreatedAt:        u.CreatedAt,
	}
}
