package baskets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox/payloads"
	"github.com/keranjangku/keranjangku-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateInput carries the data needed to open a new basket.
type CreateInput struct {
	ActorID uuid.UUID
	Name    string
	Note    *string
}

// UpdateInput carries a partial basket update. Nil pointers mean the field
// was absent from the request.
type UpdateInput struct {
	ActorID    uuid.UUID
	BasketID   uuid.UUID
	Name       *string
	Note       *string
	IsComplete *bool
}

// SortInput reorders the actor's baskets.
type SortInput struct {
	ActorID uuid.UUID
	Sorts   map[uuid.UUID]int
}

// Service defines basket-level operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*BasketDTO, error)
	Get(ctx context.Context, actorID, basketID uuid.UUID) (*BasketDTO, error)
	List(ctx context.Context, actorID uuid.UUID, params pagination.Params) (*BasketPageDTO, error)
	Update(ctx context.Context, input UpdateInput) (*BasketDTO, error)
	Delete(ctx context.Context, actorID, basketID uuid.UUID) error
	Sort(ctx context.Context, input SortInput) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds a basket service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("baskets repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*BasketDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket name required")
	}

	var created *models.Basket
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		maxSort, err := repo.MaxSort(ctx, input.ActorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute basket sort")
		}
		basket := &models.Basket{
			UserID: input.ActorID,
			Name:   name,
			Note:   input.Note,
			Sort:   maxSort + 1,
		}
		created, err = repo.Create(ctx, basket)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create basket")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ToDTO(created, false)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, actorID, basketID uuid.UUID) (*BasketDTO, error) {
	if basketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket id required")
	}
	basket, err := s.repo.FindByID(ctx, basketID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}
	share, err := s.repo.FindShare(ctx, basketID, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
	}
	if err := CanView(basket, actorID, share); err != nil {
		return nil, err
	}
	dto := ToDTO(basket, basket.UserID != actorID)
	return &dto, nil
}

func (s *service) List(ctx context.Context, actorID uuid.UUID, params pagination.Params) (*BasketPageDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	page, err := s.repo.ListForUser(ctx, actorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list baskets")
	}
	return page, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*BasketDTO, error) {
	if input.BasketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	fields := UpdateFields{
		Name:       input.Name != nil,
		Note:       input.Note != nil,
		IsComplete: input.IsComplete != nil,
	}
	if !fields.Name && !fields.Note && !fields.IsComplete {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var updated *models.Basket
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		basket, err := repo.FindByIDForUpdate(ctx, input.BasketID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		share, err := repo.FindShare(ctx, input.BasketID, input.ActorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
		}
		if err := CanUpdate(basket, input.ActorID, share, fields, false); err != nil {
			return err
		}

		updates := map[string]any{}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "basket name required")
			}
			updates["name"] = name
			basket.Name = name
		}
		if input.Note != nil {
			updates["note"] = *input.Note
			basket.Note = input.Note
		}

		completedNow := false
		if input.IsComplete != nil && *input.IsComplete != basket.IsComplete {
			updates["is_complete"] = *input.IsComplete
			basket.IsComplete = *input.IsComplete
			if *input.IsComplete {
				now := s.now()
				updates["completed_at"] = now
				updates["completed_by_id"] = input.ActorID
				basket.CompletedAt = &now
				actor := input.ActorID
				basket.CompletedByID = &actor
				completedNow = true
			} else {
				updates["completed_at"] = nil
				updates["completed_by_id"] = nil
				basket.CompletedAt = nil
				basket.CompletedByID = nil
			}
		}

		if len(updates) == 0 {
			updated = basket
			return nil
		}
		if err := repo.Update(ctx, basket.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket")
		}
		updated = basket

		event := outbox.DomainEvent{
			EventType:     enums.EventBasketUpdated,
			AggregateType: enums.AggregateBasket,
			AggregateID:   basket.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID},
			Data: payloads.BasketUpdatedEvent{
				BasketID:    basket.ID,
				OwnerID:     basket.UserID,
				IsComplete:  basket.IsComplete,
				IsPurchased: basket.IsPurchased,
				IsOrdered:   basket.IsOrdered,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		if completedNow {
			completedEvent := outbox.DomainEvent{
				EventType:     enums.EventBasketCompleted,
				AggregateType: enums.AggregateBasket,
				AggregateID:   basket.ID,
				Version:       1,
				Actor:         &outbox.ActorRef{UserID: input.ActorID},
				Data: payloads.BasketCompletedEvent{
					BasketID:      basket.ID,
					OwnerID:       basket.UserID,
					CompletedByID: input.ActorID,
					CompletedAt:   *basket.CompletedAt,
				},
			}
			if err := s.outbox.Emit(ctx, tx, completedEvent); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ToDTO(updated, updated.UserID != input.ActorID)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actorID, basketID uuid.UUID) error {
	if basketID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "basket id required")
	}
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		basket, err := repo.FindByIDForUpdate(ctx, basketID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		if err := CanDelete(basket, actorID); err != nil {
			return err
		}
		if err := repo.Delete(ctx, basketID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete basket")
		}
		return nil
	})
}

func (s *service) Sort(ctx context.Context, input SortInput) error {
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Sorts) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no sort entries provided")
	}
	for _, sort := range input.Sorts {
		if sort <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "sort values must be positive")
		}
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateSorts(ctx, input.ActorID, input.Sorts); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reorder baskets")
		}
		return nil
	})
}
