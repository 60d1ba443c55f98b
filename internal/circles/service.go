package circles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keranjangku/keranjangku-backend/pkg/db"
	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AddMemberInput puts a user into one of the actor's circles.
type AddMemberInput struct {
	ActorID  uuid.UUID
	CircleID uuid.UUID
	UserID   uuid.UUID
}

// Service defines contact-group operations. Circles are strictly private to
// their owner.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, name string) (*CircleDTO, error)
	List(ctx context.Context, actorID uuid.UUID) ([]CircleDTO, error)
	Get(ctx context.Context, actorID, circleID uuid.UUID) (*CircleDTO, error)
	Rename(ctx context.Context, actorID, circleID uuid.UUID, name string) (*CircleDTO, error)
	Delete(ctx context.Context, actorID, circleID uuid.UUID) error
	AddMember(ctx context.Context, input AddMemberInput) (*CircleMemberDTO, error)
	RemoveMember(ctx context.Context, actorID, circleID, userID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a circles service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("circles repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, name string) (*CircleDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "circle name required")
	}

	created, err := s.repo.Create(ctx, &models.Circle{UserID: actorID, Name: name})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create circle")
	}
	dto := ToDTO(created, nil)
	return &dto, nil
}

func (s *service) List(ctx context.Context, actorID uuid.UUID) ([]CircleDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	circles, err := s.repo.ListForUser(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list circles")
	}
	ids := make([]uuid.UUID, 0, len(circles))
	for _, circle := range circles {
		ids = append(ids, circle.ID)
	}
	members, err := s.repo.ListMembers(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list circle members")
	}
	byCircle := make(map[uuid.UUID][]CircleMemberDTO, len(circles))
	for _, member := range members {
		byCircle[member.CircleID] = append(byCircle[member.CircleID], member)
	}
	result := make([]CircleDTO, 0, len(circles))
	for i := range circles {
		result = append(result, ToDTO(&circles[i], byCircle[circles[i].ID]))
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, actorID, circleID uuid.UUID) (*CircleDTO, error) {
	circle, err := s.ownedCircle(ctx, s.repo, actorID, circleID, false)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, []uuid.UUID{circle.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list circle members")
	}
	dto := ToDTO(circle, members)
	return &dto, nil
}

func (s *service) Rename(ctx context.Context, actorID, circleID uuid.UUID, name string) (*CircleDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "circle name required")
	}

	var renamed *models.Circle
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		circle, err := s.ownedCircle(ctx, repo, actorID, circleID, true)
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, circle.ID, map[string]any{"name": name}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename circle")
		}
		circle.Name = name
		renamed = circle
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ToDTO(renamed, nil)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actorID, circleID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		circle, err := s.ownedCircle(ctx, repo, actorID, circleID, true)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, circle.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete circle")
		}
		return nil
	})
}

func (s *service) AddMember(ctx context.Context, input AddMemberInput) (*CircleMemberDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target user required")
	}

	var result CircleMemberDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		circle, err := s.ownedCircle(ctx, repo, input.ActorID, input.CircleID, true)
		if err != nil {
			return err
		}
		username, err := repo.FindUsername(ctx, input.UserID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "target user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load target user")
		}
		existing, err := repo.FindMember(ctx, circle.ID, input.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
		}
		if existing != nil {
			result = ToMemberDTO(existing, username)
			return nil
		}

		member, err := repo.CreateMember(ctx, &models.CircleMember{
			CircleID: circle.ID,
			UserID:   input.UserID,
		})
		if err != nil {
			// concurrent add can slip past the existence check above
			if db.IsConstraintViolation(err, "ux_circle_members_circle_user") {
				return pkgerrors.New(pkgerrors.CodeConflict, "user is already in this circle")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create member")
		}
		result = ToMemberDTO(member, username)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) RemoveMember(ctx context.Context, actorID, circleID, userID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		circle, err := s.ownedCircle(ctx, repo, actorID, circleID, true)
		if err != nil {
			return err
		}
		member, err := repo.FindMember(ctx, circle.ID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
		}
		if member == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		if err := repo.DeleteMember(ctx, member.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete member")
		}
		return nil
	})
}

// ownedCircle loads the circle and rejects anyone but its owner.
func (s *service) ownedCircle(ctx context.Context, repo Repository, actorID, circleID uuid.UUID, forUpdate bool) (*models.Circle, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if circleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "circle id required")
	}
	var circle *models.Circle
	var err error
	if forUpdate {
		circle, err = repo.FindByIDForUpdate(ctx, circleID)
	} else {
		circle, err = repo.FindByID(ctx, circleID)
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "circle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load circle")
	}
	if circle.UserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "circle does not belong to user")
	}
	return circle, nil
}
