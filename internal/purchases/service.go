package purchases

import (
	"context"
	"fmt"
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
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// AddItemInput records the buy of a single stuff line.
type AddItemInput struct {
	ActorID     uuid.UUID
	PurchasedID uuid.UUID
	StuffID     uuid.UUID
	Quantity    *decimal.Decimal
	Amount      int64
	IsFound     *bool
	Note        *string
	Location    *string
	IsPrivate   bool
}

// UpdateItemInput carries a partial purchase-line update. Nil pointers mean
// the field was absent from the request.
type UpdateItemInput struct {
	ActorID   uuid.UUID
	ItemID    uuid.UUID
	Quantity  *decimal.Decimal
	Amount    *int64
	IsFound   *bool
	Note      *string
	Location  *string
	IsPrivate *bool
}

// Service defines shopping-session operations.
type Service interface {
	Start(ctx context.Context, actorID, basketID uuid.UUID) (*PurchasedDTO, error)
	List(ctx context.Context, actorID, basketID uuid.UUID) ([]PurchasedDTO, error)
	Delete(ctx context.Context, actorID, purchasedID uuid.UUID) error
	AddItem(ctx context.Context, input AddItemInput) (*PurchasedStuffDTO, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*PurchasedStuffDTO, error)
	DeleteItem(ctx context.Context, actorID, itemID uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds a purchases service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchases repository required")
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

// Start opens the actor's shopping session on the basket, returning the
// existing one when already open. The first session flips the basket's
// purchased flag.
func (s *service) Start(ctx context.Context, actorID, basketID uuid.UUID) (*PurchasedDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if basketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket id required")
	}

	var session *models.Purchased
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		basket, err := repo.FindBasketForUpdate(ctx, basketID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		share, err := repo.FindShare(ctx, basketID, actorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
		}
		if err := CanPurchase(basket, actorID, share); err != nil {
			return err
		}

		existing, err := repo.FindPurchased(ctx, basketID, actorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
		}
		if existing != nil {
			session = existing
			return nil
		}

		startedAt := s.now()
		session, err = repo.CreatePurchased(ctx, &models.Purchased{
			BasketID:  basketID,
			UserID:    actorID,
			StartedAt: &startedAt,
			IsOngoing: true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
		}

		if !basket.IsPurchased {
			if err := repo.UpdateBasket(ctx, basketID, map[string]any{"is_purchased": true}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flag basket purchased")
			}
			basket.IsPurchased = true
			event := outbox.DomainEvent{
				EventType:     enums.EventBasketUpdated,
				AggregateType: enums.AggregateBasket,
				AggregateID:   basket.ID,
				Version:       1,
				Actor:         &outbox.ActorRef{UserID: actorID},
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
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ToSessionDTO(session, nil)
	return &dto, nil
}

func (s *service) List(ctx context.Context, actorID, basketID uuid.UUID) ([]PurchasedDTO, error) {
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

	sessions, err := s.repo.ListSessionsForBasket(ctx, basketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sessions")
	}
	ids := make([]uuid.UUID, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}
	items, err := s.repo.ListItemsForSessions(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list session items")
	}
	bySession := make(map[uuid.UUID][]models.PurchasedStuff, len(sessions))
	for _, item := range items {
		// Private lines are only visible to their purchaser.
		if item.IsPrivate && item.UserID != actorID {
			continue
		}
		bySession[item.PurchasedID] = append(bySession[item.PurchasedID], item)
	}
	result := make([]PurchasedDTO, 0, len(sessions))
	for i := range sessions {
		result = append(result, ToSessionDTO(&sessions[i], bySession[sessions[i].ID]))
	}
	return result, nil
}

// Delete removes the actor's shopping session with its lines, resetting the
// affected stuff. Removing the basket's last session clears its purchased
// flag.
func (s *service) Delete(ctx context.Context, actorID, purchasedID uuid.UUID) error {
	if purchasedID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		session, err := repo.FindPurchasedByID(ctx, purchasedID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
		}
		basket, err := repo.FindBasketForUpdate(ctx, session.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		if basket.Ordered() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "basket already sent to assistant")
		}
		if session.UserID != actorID && basket.UserID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "purchase does not belong to user")
		}

		removed, err := repo.DeleteItemsForSession(ctx, session.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session items")
		}
		for _, item := range removed {
			updates := map[string]any{"is_purchased": false, "is_done": false, "done_at": nil}
			if err := repo.UpdateStuff(ctx, item.StuffID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset item")
			}
		}
		if err := repo.DeletePurchased(ctx, session.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session")
		}

		remaining, err := repo.CountPurchasedForBasket(ctx, session.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count sessions")
		}
		if remaining == 0 && basket.IsPurchased {
			if err := repo.UpdateBasket(ctx, basket.ID, map[string]any{"is_purchased": false}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset basket purchased")
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPurchaseReverted,
			AggregateType: enums.AggregatePurchased,
			AggregateID:   session.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actorID},
			Data: payloads.PurchaseRevertedEvent{
				PurchasedID: session.ID,
				BasketID:    session.BasketID,
				UserID:      session.UserID,
			},
		})
	})
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*PurchasedStuffDTO, error) {
	if input.PurchasedID == uuid.Nil || input.StuffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase and item ids required")
	}
	if input.Amount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}

	var created *models.PurchasedStuff
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		session, err := repo.FindPurchasedByID(ctx, input.PurchasedID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
		}
		if session.UserID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "purchase does not belong to user")
		}
		basket, err := repo.FindBasketForUpdate(ctx, session.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		share, err := repo.FindShare(ctx, session.BasketID, input.ActorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
		}
		if err := CanPurchase(basket, input.ActorID, share); err != nil {
			return err
		}

		line, err := repo.FindStuff(ctx, input.StuffID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		if line.BasketID != session.BasketID {
			return pkgerrors.New(pkgerrors.CodeValidation, "item belongs to another basket")
		}
		existing, err := repo.FindItemByStuffID(ctx, input.StuffID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing purchase line")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "item already bought")
		}

		quantity := line.Quantity
		if input.Quantity != nil {
			quantity = *input.Quantity
		}
		found := input.IsFound != nil && *input.IsFound
		if found && !quantity.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		price, amount := ComputePrice(line.Metric, input.Amount, quantity, found)

		item := &models.PurchasedStuff{
			PurchasedID: session.ID,
			BasketID:    session.BasketID,
			UserID:      input.ActorID,
			StuffID:     line.ID,
			Name:        line.Name,
			Quantity:    quantity,
			Metric:      line.Metric,
			Price:       price,
			Amount:      amount,
			Note:        input.Note,
			Location:    input.Location,
			IsFound:     input.IsFound,
			IsPrivate:   input.IsPrivate,
		}
		created, err = repo.CreateItem(ctx, item)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase line")
		}

		stuffUpdates := map[string]any{"is_purchased": true}
		if input.ActorID == basket.UserID {
			stuffUpdates["is_done"] = true
			stuffUpdates["done_at"] = s.now()
		}
		if err := repo.UpdateStuff(ctx, line.ID, stuffUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark item purchased")
		}

		s.recordRate(ctx, repo, created)

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPurchaseRecorded,
			AggregateType: enums.AggregatePurchased,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID},
			Data: payloads.PurchaseRecordedEvent{
				PurchasedID:      session.ID,
				PurchasedStuffID: created.ID,
				BasketID:         session.BasketID,
				StuffID:          line.ID,
				IsFound:          created.IsFound,
				Price:            created.Price,
				Amount:           created.Amount,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	dto := ToItemDTO(created)
	return &dto, nil
}

func (s *service) UpdateItem(ctx context.Context, input UpdateItemInput) (*PurchasedStuffDTO, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase line id required")
	}
	if input.Amount != nil && *input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	var updated *models.PurchasedStuff
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItemByIDForUpdate(ctx, input.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase line")
		}
		basket, err := repo.FindBasketForUpdate(ctx, item.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		if basket.Ordered() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "basket already sent to assistant")
		}
		line, err := repo.FindStuff(ctx, item.StuffID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		// Guard against the persisted row, before any incoming change.
		if err := CanEditItem(basket, line, item, input.ActorID); err != nil {
			return err
		}
		wasFound := item.Found()

		if input.Quantity != nil {
			item.Quantity = *input.Quantity
		}
		if input.Amount != nil {
			item.Amount = *input.Amount
		}
		if input.IsFound != nil {
			item.IsFound = input.IsFound
		}
		if input.Note != nil {
			item.Note = input.Note
		}
		if input.Location != nil {
			item.Location = input.Location
		}
		if input.IsPrivate != nil {
			item.IsPrivate = *input.IsPrivate
		}
		if item.Found() && !item.Quantity.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}

		item.Price, item.Amount = ComputePrice(item.Metric, item.Amount, item.Quantity, item.Found())

		updates := map[string]any{
			"quantity":   item.Quantity,
			"price":      item.Price,
			"amount":     item.Amount,
			"is_found":   item.IsFound,
			"is_private": item.IsPrivate,
		}
		if input.Note != nil {
			updates["note"] = *input.Note
		}
		if input.Location != nil {
			updates["location"] = *input.Location
		}
		if err := repo.UpdateItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase line")
		}
		updated = item

		// A missing item located after completion becomes an extra, so it
		// stays editable.
		if !wasFound && item.Found() && basket.IsComplete && line != nil && !line.IsAdditional {
			if err := repo.UpdateStuff(ctx, line.ID, map[string]any{"is_additional": true}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flag item additional")
			}
		}

		rateUpdates := map[string]any{
			"price":      item.Price,
			"is_private": item.IsPrivate,
		}
		if input.Location != nil {
			rateUpdates["location"] = *input.Location
		}
		if err := repo.SyncLatestRate(ctx, item.ID, rateUpdates); err != nil {
			s.logg.Error(ctx, "product rate sync failed", err)
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPurchaseRecorded,
			AggregateType: enums.AggregatePurchased,
			AggregateID:   item.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID},
			Data: payloads.PurchaseRecordedEvent{
				PurchasedID:      item.PurchasedID,
				PurchasedStuffID: item.ID,
				BasketID:         item.BasketID,
				StuffID:          item.StuffID,
				IsFound:          item.IsFound,
				Price:            item.Price,
				Amount:           item.Amount,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	dto := ToItemDTO(updated)
	return &dto, nil
}

// DeleteItem removes a purchase line. Additional stuff disappears with its
// purchase; regular stuff is reset to wanted.
func (s *service) DeleteItem(ctx context.Context, actorID, itemID uuid.UUID) error {
	if itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase line id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItemByIDForUpdate(ctx, itemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase line")
		}
		if item.UserID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "purchase line does not belong to user")
		}
		basket, err := repo.FindBasketForUpdate(ctx, item.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		if basket.Ordered() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "basket already sent to assistant")
		}

		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete purchase line")
		}

		line, err := repo.FindStuff(ctx, item.StuffID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		if line != nil {
			if line.IsAdditional {
				if err := repo.DeleteStuff(ctx, line.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete additional item")
				}
			} else {
				updates := map[string]any{"is_purchased": false, "is_done": false, "done_at": nil}
				if err := repo.UpdateStuff(ctx, line.ID, updates); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset item")
				}
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPurchaseReverted,
			AggregateType: enums.AggregatePurchased,
			AggregateID:   item.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actorID},
			Data: payloads.PurchaseRevertedEvent{
				PurchasedID: item.PurchasedID,
				BasketID:    item.BasketID,
				UserID:      item.UserID,
			},
		})
	})
}

// recordRate stores a market-price observation. Rate bookkeeping must never
// fail the purchase.
func (s *service) recordRate(ctx context.Context, repo Repository, item *models.PurchasedStuff) {
	if !item.Found() || item.Price <= 0 {
		return
	}
	product, err := repo.FindProductByName(ctx, item.Name)
	if err != nil {
		s.logg.Error(ctx, "product lookup for rate failed", err)
		return
	}
	if product == nil {
		return
	}
	itemID := item.ID
	rate := &models.ProductRate{
		UserID:           item.UserID,
		ProductID:        product.ID,
		PurchasedStuffID: &itemID,
		Name:             item.Name,
		Quantity:         item.Quantity,
		Metric:           item.Metric,
		Price:            item.Price,
		Location:         item.Location,
		IsPrivate:        item.IsPrivate,
	}
	if err := repo.UpsertProductRate(ctx, rate); err != nil {
		s.logg.Error(ctx, "product rate upsert failed", err)
	}
}
