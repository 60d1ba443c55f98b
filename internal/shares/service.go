package shares

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keranjangku/keranjangku-backend/pkg/db"
	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// AddInput grants a user access to a basket.
type AddInput struct {
	ActorID   uuid.UUID
	BasketID  uuid.UUID
	ToUserID  uuid.UUID
	IsAdmin   bool
	IsCanCRUD bool
	IsCanBuy  bool
}

// UpdateInput carries a partial share update. Nil pointers mean the field was
// absent from the request.
type UpdateInput struct {
	ActorID   uuid.UUID
	ShareID   uuid.UUID
	Status    *enums.GeneralStatus
	Sort      *int
	IsAdmin   *bool
	IsCanCRUD *bool
	IsCanBuy  *bool
}

// Service defines share-grant operations.
type Service interface {
	Add(ctx context.Context, input AddInput) (*ShareDTO, error)
	List(ctx context.Context, actorID, basketID uuid.UUID) ([]ShareDTO, error)
	Update(ctx context.Context, input UpdateInput) (*ShareDTO, error)
	Delete(ctx context.Context, actorID, shareID uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a share service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shares repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher}, nil
}

// Add grants access, returning the existing row when the grantee already
// holds one.
func (s *service) Add(ctx context.Context, input AddInput) (*ShareDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.BasketID == uuid.Nil || input.ToUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket and target user required")
	}

	var result *models.Share
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		basket, err := repo.FindBasketForUpdate(ctx, input.BasketID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		if err := CanAdd(basket, input.ActorID, input.ToUserID); err != nil {
			return err
		}
		if _, err := repo.FindUsername(ctx, input.ToUserID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "target user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load target user")
		}

		existing, err := repo.FindByBasketAndUser(ctx, input.BasketID, input.ToUserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
		}
		if existing != nil {
			result = existing
			return nil
		}

		share := &models.Share{
			BasketID:  input.BasketID,
			UserID:    input.ActorID,
			ToUserID:  input.ToUserID,
			Status:    enums.StatusWaiting,
			Sort:      1,
			IsAdmin:   input.IsAdmin,
			IsCanCRUD: input.IsCanCRUD,
			IsCanBuy:  input.IsCanBuy,
		}
		share.Normalize()
		result, err = repo.Create(ctx, share)
		if err != nil {
			// concurrent invite can slip past the existence check above
			if db.IsConstraintViolation(err, "ux_shares_basket_to_user") {
				return pkgerrors.New(pkgerrors.CodeConflict, "basket is already shared with this user")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create share")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShareCreated,
			AggregateType: enums.AggregateShare,
			AggregateID:   result.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID},
			Data:          shareEventPayload(result),
		})
	})
	if err != nil {
		return nil, err
	}

	dto := ToDTO(result, "")
	return &dto, nil
}

func (s *service) List(ctx context.Context, actorID, basketID uuid.UUID) ([]ShareDTO, error) {
	if basketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket id required")
	}
	basket, err := s.repo.FindBasket(ctx, basketID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}
	if basket.UserID != actorID {
		share, err := s.repo.FindByBasketAndUser(ctx, basketID, actorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
		}
		if share == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "basket does not belong to user")
		}
	}
	items, err := s.repo.ListForBasket(ctx, basketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shares")
	}
	return items, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*ShareDTO, error) {
	if input.ShareID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "share id required")
	}
	fields := UpdateFields{
		Status:    input.Status != nil,
		Sort:      input.Sort != nil,
		IsAdmin:   input.IsAdmin != nil,
		IsCanCRUD: input.IsCanCRUD != nil,
		IsCanBuy:  input.IsCanBuy != nil,
	}
	if !fields.Status && !fields.Sort && !fields.IsAdmin && !fields.IsCanCRUD && !fields.IsCanBuy {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	var updated *models.Share
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		share, err := repo.FindByID(ctx, input.ShareID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "share not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
		}
		basket, err := repo.FindBasketForUpdate(ctx, share.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		if err := CanUpdate(basket, share, input.ActorID, fields); err != nil {
			return err
		}

		updates := map[string]any{}
		if input.Status != nil {
			updates["status"] = *input.Status
			share.Status = *input.Status
		}
		if input.Sort != nil {
			updates["sort"] = *input.Sort
			share.Sort = *input.Sort
		}
		if input.IsAdmin != nil {
			share.IsAdmin = *input.IsAdmin
		}
		if input.IsCanCRUD != nil {
			share.IsCanCRUD = *input.IsCanCRUD
		}
		if input.IsCanBuy != nil {
			share.IsCanBuy = *input.IsCanBuy
			updates["is_can_buy"] = *input.IsCanBuy
		}
		// Admin implies CRUD, even when only one of the two was sent.
		if input.IsAdmin != nil || input.IsCanCRUD != nil {
			share.Normalize()
			updates["is_admin"] = share.IsAdmin
			updates["is_can_crud"] = share.IsCanCRUD
		}

		if err := repo.Update(ctx, share.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update share")
		}
		updated = share

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShareUpdated,
			AggregateType: enums.AggregateShare,
			AggregateID:   share.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID},
			Data:          shareEventPayload(share),
		})
	})
	if err != nil {
		return nil, err
	}

	dto := ToDTO(updated, "")
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actorID, shareID uuid.UUID) error {
	if shareID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "share id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		share, err := repo.FindByID(ctx, shareID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "share not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
		}
		basket, err := repo.FindBasketForUpdate(ctx, share.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		if err := CanDelete(basket, share, actorID); err != nil {
			return err
		}

		contributions, err := repo.ContributionCount(ctx, share.BasketID, share.ToUserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count contributions")
		}
		if contributions > 0 {
			if actorID == share.ToUserID {
				return pkgerrors.New(pkgerrors.CodeConflict, "you have already added items to this basket")
			}
			username, err := repo.FindUsername(ctx, share.ToUserID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load target user")
			}
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("user %s has already added items to this basket", username))
		}

		// Remove the grantee's empty shopping sessions with the grant.
		if err := repo.DeleteContributions(ctx, share.BasketID, share.ToUserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove grantee rows")
		}
		if err := repo.Delete(ctx, share.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete share")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShareDeleted,
			AggregateType: enums.AggregateShare,
			AggregateID:   share.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actorID},
			Data:          shareEventPayload(share),
		})
	})
}

func shareEventPayload(share *models.Share) payloads.ShareChangedEvent {
	return payloads.ShareChangedEvent{
		ShareID:   share.ID,
		BasketID:  share.BasketID,
		ToUserID:  share.ToUserID,
		Status:    share.Status,
		IsAdmin:   share.IsAdmin,
		IsCanCRUD: share.IsCanCRUD,
		IsCanBuy:  share.IsCanBuy,
	}
}
