package stuff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
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

// AddInput carries the data needed to append a line to a basket.
type AddInput struct {
	ActorID  uuid.UUID
	BasketID uuid.UUID
	Name     string
	Quantity decimal.Decimal
	Metric   enums.Metric
	Note     *string
	Location *string
}

// UpdateInput carries a partial stuff update. Nil pointers mean the field was
// absent from the request.
type UpdateInput struct {
	ActorID  uuid.UUID
	StuffID  uuid.UUID
	Name     *string
	Quantity *decimal.Decimal
	Metric   *enums.Metric
	Note     *string
	Location *string
	Sort     *int
	IsDone   *bool
}

// Service defines basket-line operations.
type Service interface {
	Add(ctx context.Context, input AddInput) (*StuffDTO, error)
	List(ctx context.Context, actorID, basketID uuid.UUID, params pagination.Params) (*StuffPageDTO, error)
	Update(ctx context.Context, input UpdateInput) (*StuffDTO, error)
	Delete(ctx context.Context, actorID, stuffID uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds a stuff service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stuff repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher, logg: logg, now: time.Now}, nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*StuffDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.BasketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	metric := input.Metric
	if metric == "" {
		metric = enums.MetricUnit
	}
	if !metric.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid metric")
	}

	var created *models.Stuff
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		basket, err := repo.FindBasketForUpdate(ctx, input.BasketID)
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
		if err := CanAdd(basket, input.ActorID, share); err != nil {
			return err
		}

		maxSort, err := repo.MaxSort(ctx, input.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute item sort")
		}

		line := &models.Stuff{
			BasketID: input.BasketID,
			UserID:   input.ActorID,
			Name:     name,
			Quantity: input.Quantity,
			Metric:   metric,
			Note:     input.Note,
			Location: input.Location,
			Sort:     maxSort + 1,
			// Items landing in an already-completed basket are extras.
			IsAdditional: basket.IsComplete,
		}

		product, err := repo.GetOrCreateProduct(ctx, input.ActorID, name)
		if err != nil {
			// Catalog bookkeeping must not block the add.
			s.logg.Error(s.logg.WithBasketID(ctx, input.BasketID.String()), "product get-or-create failed", err)
		} else {
			line.ProductID = &product.ID
		}

		created, err = repo.Create(ctx, line)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStuffCreated,
			AggregateType: enums.AggregateStuff,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID},
			Data:          stuffEventPayload(created),
		})
	})
	if err != nil {
		return nil, err
	}

	dto := ToDTO(created)
	return &dto, nil
}

func (s *service) List(ctx context.Context, actorID, basketID uuid.UUID, params pagination.Params) (*StuffPageDTO, error) {
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
		share, err := s.repo.FindShare(ctx, basketID, actorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
		}
		if share == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "basket does not belong to user")
		}
	}
	page, err := s.repo.ListForBasket(ctx, basketID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return page, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*StuffDTO, error) {
	if input.StuffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.Quantity != nil && !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.Metric != nil && !input.Metric.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid metric")
	}

	var updated *models.Stuff
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindByID(ctx, input.StuffID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		basket, err := repo.FindBasketForUpdate(ctx, line.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		share, err := repo.FindShare(ctx, line.BasketID, input.ActorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
		}
		purchased, err := repo.FindPurchasedStuff(ctx, line.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
		}
		if err := CanMutate(basket, line, input.ActorID, share, purchased); err != nil {
			return err
		}

		updates := map[string]any{}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "item name required")
			}
			updates["name"] = name
			line.Name = name
		}
		if input.Quantity != nil {
			updates["quantity"] = *input.Quantity
			line.Quantity = *input.Quantity
		}
		if input.Metric != nil {
			updates["metric"] = *input.Metric
			line.Metric = *input.Metric
		}
		if input.Note != nil {
			updates["note"] = *input.Note
			line.Note = input.Note
		}
		if input.Location != nil {
			updates["location"] = *input.Location
			line.Location = input.Location
		}
		if input.Sort != nil {
			updates["sort"] = *input.Sort
			line.Sort = *input.Sort
		}
		if input.IsDone != nil && *input.IsDone != line.IsDone {
			updates["is_done"] = *input.IsDone
			line.IsDone = *input.IsDone
			if *input.IsDone {
				now := s.now()
				updates["done_at"] = now
				line.DoneAt = &now
			} else {
				updates["done_at"] = nil
				line.DoneAt = nil
			}
		}
		if len(updates) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
		}

		if err := repo.Update(ctx, line.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
		}
		updated = line

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStuffUpdated,
			AggregateType: enums.AggregateStuff,
			AggregateID:   line.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID},
			Data:          stuffEventPayload(line),
		})
	})
	if err != nil {
		return nil, err
	}

	dto := ToDTO(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actorID, stuffID uuid.UUID) error {
	if stuffID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindByID(ctx, stuffID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		basket, err := repo.FindBasketForUpdate(ctx, line.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		share, err := repo.FindShare(ctx, line.BasketID, actorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
		}
		purchased, err := repo.FindPurchasedStuff(ctx, line.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
		}
		if err := CanMutate(basket, line, actorID, share, purchased); err != nil {
			return err
		}

		if err := repo.Delete(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStuffDeleted,
			AggregateType: enums.AggregateStuff,
			AggregateID:   line.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actorID},
			Data:          stuffEventPayload(line),
		})
	})
}

func stuffEventPayload(line *models.Stuff) payloads.StuffChangedEvent {
	return payloads.StuffChangedEvent{
		StuffID:      line.ID,
		BasketID:     line.BasketID,
		Name:         line.Name,
		IsAdditional: line.IsAdditional,
		IsPurchased:  line.IsPurchased,
	}
}
