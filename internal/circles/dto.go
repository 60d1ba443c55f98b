package circles

import (
	"time"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
)

// CircleDTO is the API representation of a contact group.
type CircleDTO struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Name      string            `json:"name"`
	Members   []CircleMemberDTO `json:"members,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CircleMemberDTO is the API representation of one circle membership.
type CircleMemberDTO struct {
	ID        uuid.UUID `json:"id"`
	CircleID  uuid.UUID `json:"circle_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDTO maps a circle row and its memberships to the API shape.
func ToDTO(c *models.Circle, members []CircleMemberDTO) CircleDTO {
	return CircleDTO{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Members:   members,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToMemberDTO maps a membership row to its API shape. username may be empty
// when the caller did not join the users table.
func ToMemberDTO(m *models.CircleMember, username string) CircleMemberDTO {
	return CircleMemberDTO{
		ID:        m.ID,
		CircleID:  m.CircleID,
		UserID:    m.UserID,
		Username:  username,
		CreatedAt: m.CreatedAt,
	}
}
