package orders

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

// CreateInput escalates a basket to an order.
type CreateInput struct {
	ActorID     uuid.UUID
	BasketID    uuid.UUID
	Note        *string
	ScheduledAt *time.Time
}

// UpdateLineInput carries an assistant's progress on one snapshot line.
type UpdateLineInput struct {
	ActorID   uuid.UUID
	ActorRole enums.UserRole
	LineID    uuid.UUID
	Quantity  *decimal.Decimal
	Price     *int64
	IsFound   *bool
	Note      *string
	Location  *string
}

// CreateAssignInput binds an assistant to a waiting order.
type CreateAssignInput struct {
	ActorID     uuid.UUID
	ActorRole   enums.UserRole
	OrderID     uuid.UUID
	AssistantID uuid.UUID
}

// UpdateAssignInput carries assignment progress. Nil pointers mean the field
// was absent from the request.
type UpdateAssignInput struct {
	ActorID    uuid.UUID
	ActorRole  enums.UserRole
	AssignID   uuid.UUID
	Status     *enums.GeneralStatus
	IsOngoing  *bool
	IsComplete *bool
}

// Service defines order-escalation operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*OrderDTO, error)
	List(ctx context.Context, actorID uuid.UUID, params pagination.Params) (*OrderPageDTO, error)
	Get(ctx context.Context, actorID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	Delete(ctx context.Context, actorID, orderID uuid.UUID) error
	Schedule(ctx context.Context, actorID, orderID uuid.UUID, at time.Time) (*OrderDTO, error)
	Unschedule(ctx context.Context, actorID, orderID uuid.UUID) error
	UpdateLine(ctx context.Context, input UpdateLineInput) (*OrderLineDTO, error)
	CreateAssign(ctx context.Context, input CreateAssignInput) (*AssignDTO, error)
	ListAssigns(ctx context.Context, actorID uuid.UUID, role enums.UserRole) ([]AssignDTO, error)
	UpdateAssign(ctx context.Context, input UpdateAssignInput) (*AssignDTO, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher, now: time.Now}, nil
}

// Create escalates the basket: every current line is snapshotted into the
// order and the basket freezes.
func (s *service) Create(ctx context.Context, input CreateInput) (*OrderDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.BasketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket id required")
	}
	if input.ScheduledAt != nil && scheduleTooSoon(s.now(), *input.ScheduledAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "schedule must be tomorrow or later")
	}

	var created *models.Order
	var snapshot []models.OrderLine
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		basket, err := repo.FindBasketForUpdate(ctx, input.BasketID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		if err := CanCreate(basket, input.ActorID); err != nil {
			return err
		}
		existing, err := repo.FindByBasket(ctx, input.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "basket already ordered")
		}

		stuff, err := repo.ListStuffForBasket(ctx, input.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list basket items")
		}
		if len(stuff) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "basket has no items to order")
		}

		number, err := NewOrderNumber(s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}
		created, err = repo.Create(ctx, &models.Order{
			CustomerID:  input.ActorID,
			BasketID:    input.BasketID,
			Number:      number,
			Status:      enums.StatusWaiting,
			Note:        input.Note,
			ScheduledAt: input.ScheduledAt,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		snapshot = make([]models.OrderLine, 0, len(stuff))
		for _, line := range stuff {
			snapshot = append(snapshot, models.OrderLine{
				OrderID:    created.ID,
				CustomerID: input.ActorID,
				StuffID:    line.ID,
				Name:       line.Name,
				Quantity:   line.Quantity,
				Metric:     line.Metric,
				Note:       line.Note,
				Location:   line.Location,
			})
		}
		if err := repo.CreateLines(ctx, snapshot); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot order lines")
		}

		ordered := true
		if err := repo.UpdateBasket(ctx, input.BasketID, map[string]any{"is_ordered": true}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "freeze basket")
		}
		basket.IsOrdered = &ordered

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID},
			Data: payloads.OrderCreatedEvent{
				OrderID:    created.ID,
				Number:     created.Number,
				BasketID:   created.BasketID,
				CustomerID: created.CustomerID,
				LineCount:  len(snapshot),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	dto := ToOrderDTO(created, snapshot)
	return &dto, nil
}

func (s *service) List(ctx context.Context, actorID uuid.UUID, params pagination.Params) (*OrderPageDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	page, err := s.repo.ListForCustomer(ctx, actorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, actorID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.CustomerID != actorID && !IsStaff(role) {
		assign, err := s.repo.FindAssignByOrder(ctx, orderID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if assign == nil || assign.AssistantID != actorID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
	}
	lines, err := s.repo.ListLines(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order lines")
	}
	dto := ToOrderDTO(order, lines)
	return &dto, nil
}

// Delete withdraws a waiting order and thaws the basket.
func (s *service) Delete(ctx context.Context, actorID, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		assign, err := repo.FindAssignByOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if err := CanDelete(order, actorID, assign != nil); err != nil {
			return err
		}

		if err := repo.DeleteLines(ctx, orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order lines")
		}
		if err := repo.Delete(ctx, orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		updates := map[string]any{"is_ordered": nil, "is_purchased": false}
		if err := repo.UpdateBasket(ctx, order.BasketID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "thaw basket")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actorID},
			Data: payloads.OrderCanceledEvent{
				OrderID:    order.ID,
				BasketID:   order.BasketID,
				CustomerID: order.CustomerID,
				CanceledAt: s.now(),
			},
		})
	})
}

// Schedule sets the requested delivery time. Assistants plan a day ahead, so
// the earliest slot is tomorrow.
func (s *service) Schedule(ctx context.Context, actorID, orderID uuid.UUID, at time.Time) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if scheduleTooSoon(s.now(), at) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "schedule must be tomorrow or later")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.schedulableOrder(ctx, repo, actorID, orderID)
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, order.ID, map[string]any{"scheduled_at": at}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "schedule order")
		}
		order.ScheduledAt = &at
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ToOrderDTO(updated, nil)
	return &dto, nil
}

// Unschedule clears the requested delivery time.
func (s *service) Unschedule(ctx context.Context, actorID, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.schedulableOrder(ctx, repo, actorID, orderID)
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, order.ID, map[string]any{"scheduled_at": nil}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unschedule order")
		}
		return nil
	})
}

// schedulableOrder loads the order and rejects schedule changes from anyone
// but the customer, or once fulfillment finished.
func (s *service) schedulableOrder(ctx context.Context, repo Repository, actorID, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.CustomerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	if order.IsComplete || order.Status == enums.StatusDone {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already completed")
	}
	return order, nil
}

// scheduleTooSoon reports whether the requested date lands before tomorrow.
func scheduleTooSoon(now, at time.Time) bool {
	ny, nm, nd := now.AddDate(0, 0, 1).Date()
	ay, am, ad := at.Date()
	if ay != ny {
		return ay < ny
	}
	if am != nm {
		return am < nm
	}
	return ad < nd
}

// UpdateLine records assistant progress on one line, mirroring it into the
// customer's open shopping session when one exists.
func (s *service) UpdateLine(ctx context.Context, input UpdateLineInput) (*OrderLineDTO, error) {
	if input.LineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order line id required")
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Quantity != nil && !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var updated *models.OrderLine
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindLineByID(ctx, input.LineID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order line")
		}
		order, err := repo.FindByIDForUpdate(ctx, line.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		assign, err := repo.FindAssignByOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if !IsStaff(input.ActorRole) {
			if assign == nil || assign.AssistantID != input.ActorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order not assigned to user")
			}
		}

		if input.Quantity != nil {
			line.Quantity = *input.Quantity
		}
		if input.Price != nil {
			line.Price = *input.Price
		}
		if input.IsFound != nil {
			line.IsFound = input.IsFound
		}
		if input.Note != nil {
			line.Note = input.Note
		}
		if input.Location != nil {
			line.Location = input.Location
		}
		line.Amount = lineAmount(line)
		if !line.Found() {
			line.Price = 0
		}

		updates := map[string]any{
			"quantity": line.Quantity,
			"price":    line.Price,
			"amount":   line.Amount,
			"is_found": line.IsFound,
		}
		if input.Note != nil {
			updates["note"] = *input.Note
		}
		if input.Location != nil {
			updates["location"] = *input.Location
		}
		if err := repo.UpdateLine(ctx, line.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order line")
		}
		updated = line

		// Keep the wanted quantity in step with what is actually bought.
		if input.Quantity != nil {
			if err := repo.UpdateStuff(ctx, line.StuffID, map[string]any{"quantity": line.Quantity}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync item quantity")
			}
		}
		if err := s.mirrorLineToPurchase(ctx, repo, tx, order, line, input.ActorID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ToLineDTO(updated)
	return &dto, nil
}

// lineAmount prices a snapshot line: unit price times quantity for measured
// metrics, the raw price for nominal ones, zero when not found.
func lineAmount(line *models.OrderLine) int64 {
	if !line.Found() {
		return 0
	}
	if line.Metric != enums.MetricNominal {
		return decimal.NewFromInt(line.Price).Mul(line.Quantity).Round(0).IntPart()
	}
	return line.Price
}

// mirrorLineToPurchase upserts the customer's purchase line so their own
// view of the basket reflects the assistant's shopping.
func (s *service) mirrorLineToPurchase(ctx context.Context, repo Repository, tx *gorm.DB, order *models.Order, line *models.OrderLine, actorID uuid.UUID) error {
	session, err := repo.FindPurchased(ctx, order.BasketID, order.CustomerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer session")
	}
	if session == nil || !session.IsOngoing {
		return nil
	}

	existing, err := repo.FindPurchasedStuffByStuffID(ctx, line.StuffID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase line")
	}
	var itemID uuid.UUID
	if existing != nil {
		updates := map[string]any{
			"quantity": line.Quantity,
			"price":    line.Price,
			"amount":   line.Amount,
			"is_found": line.IsFound,
		}
		if err := repo.UpdatePurchasedStuff(ctx, existing.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync purchase line")
		}
		itemID = existing.ID
	} else {
		item := &models.PurchasedStuff{
			PurchasedID: session.ID,
			BasketID:    order.BasketID,
			UserID:      order.CustomerID,
			StuffID:     line.StuffID,
			Name:        line.Name,
			Quantity:    line.Quantity,
			Metric:      line.Metric,
			Price:       line.Price,
			Amount:      line.Amount,
			Note:        line.Note,
			Location:    line.Location,
			IsFound:     line.IsFound,
		}
		if err := repo.CreatePurchasedStuff(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mirror purchase line")
		}
		itemID = item.ID
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPurchaseRecorded,
		AggregateType: enums.AggregatePurchased,
		AggregateID:   itemID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: actorID},
		Data: payloads.PurchaseRecordedEvent{
			PurchasedID:      session.ID,
			PurchasedStuffID: itemID,
			BasketID:         order.BasketID,
			StuffID:          line.StuffID,
			IsFound:          line.IsFound,
			Price:            line.Price,
			Amount:           line.Amount,
		},
	})
}

// CreateAssign binds an assistant to a waiting order and accepts it.
func (s *service) CreateAssign(ctx context.Context, input CreateAssignInput) (*AssignDTO, error) {
	if !IsStaff(input.ActorRole) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff may assign orders")
	}
	if input.OrderID == uuid.Nil || input.AssistantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order and assistant ids required")
	}

	var created *models.Assign
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		existing, err := repo.FindAssignByOrder(ctx, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already assigned")
		}
		if err := CanTransition(order.Status, enums.StatusAccept); err != nil {
			return err
		}

		startedAt := s.now()
		created, err = repo.CreateAssign(ctx, &models.Assign{
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			AssistantID: input.AssistantID,
			BasketID:    order.BasketID,
			StartedAt:   &startedAt,
			IsOngoing:   true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
		}

		if err := s.applyAssignState(ctx, repo, tx, created, order, input.ActorID, enums.StatusAccept); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ToAssignDTO(created)
	return &dto, nil
}

func (s *service) ListAssigns(ctx context.Context, actorID uuid.UUID, role enums.UserRole) ([]AssignDTO, error) {
	if role != enums.UserRoleAssistant && !IsStaff(role) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only assistants may list assignments")
	}
	assigns, err := s.repo.ListAssignsForAssistant(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	result := make([]AssignDTO, 0, len(assigns))
	for i := range assigns {
		result = append(result, ToAssignDTO(&assigns[i]))
	}
	return result, nil
}

// UpdateAssign moves the assignment forward and propagates its flags to the
// order, the basket, and the owner's shopping session.
func (s *service) UpdateAssign(ctx context.Context, input UpdateAssignInput) (*AssignDTO, error) {
	if input.AssignID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	var updated *models.Assign
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assign, err := repo.FindAssignByID(ctx, input.AssignID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if assign.AssistantID != input.ActorID && !IsStaff(input.ActorRole) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "assignment does not belong to user")
		}
		order, err := repo.FindByIDForUpdate(ctx, assign.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		updates := map[string]any{}
		if input.IsOngoing != nil {
			assign.IsOngoing = *input.IsOngoing
			updates["is_ongoing"] = assign.IsOngoing
			if assign.IsOngoing && assign.StartedAt == nil {
				now := s.now()
				assign.StartedAt = &now
				updates["started_at"] = now
			}
		}
		if input.IsComplete != nil {
			assign.IsComplete = *input.IsComplete
			updates["is_complete"] = assign.IsComplete
			if assign.IsComplete {
				now := s.now()
				assign.CompletedAt = &now
				assign.IsOngoing = false
				updates["completed_at"] = now
				updates["is_ongoing"] = false
			}
		}

		targetStatus := order.Status
		if input.Status != nil {
			targetStatus = *input.Status
		} else if assign.IsComplete {
			targetStatus = enums.StatusDone
		}
		if targetStatus != order.Status {
			if err := CanTransition(order.Status, targetStatus); err != nil {
				return err
			}
		}

		if len(updates) > 0 {
			if err := repo.UpdateAssign(ctx, assign.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update assignment")
			}
		}
		updated = assign

		if err := s.applyAssignState(ctx, repo, tx, assign, order, input.ActorID, targetStatus); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ToAssignDTO(updated)
	return &dto, nil
}

// applyAssignState pushes the assignment's flags onto the order and basket,
// keeps the owner's shopping session in step, and emits the progress events.
func (s *service) applyAssignState(ctx context.Context, repo Repository, tx *gorm.DB, assign *models.Assign, order *models.Order, actorID uuid.UUID, status enums.GeneralStatus) error {
	orderUpdates := map[string]any{
		"status":      status,
		"is_ongoing":  assign.IsOngoing,
		"is_complete": assign.IsComplete,
	}
	if err := repo.Update(ctx, order.ID, orderUpdates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	order.Status = status
	order.IsOngoing = assign.IsOngoing
	order.IsComplete = assign.IsComplete

	basketUpdates := map[string]any{"is_purchased": assign.IsOngoing || assign.IsComplete}
	if assign.IsComplete {
		basketUpdates["is_complete"] = true
		basketUpdates["completed_at"] = s.now()
		basketUpdates["completed_by_id"] = assign.AssistantID
	}
	if err := repo.UpdateBasket(ctx, assign.BasketID, basketUpdates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket")
	}

	session, err := repo.FindPurchased(ctx, assign.BasketID, order.CustomerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer session")
	}
	if session == nil {
		startedAt := s.now()
		if _, err := repo.CreatePurchased(ctx, &models.Purchased{
			BasketID:   assign.BasketID,
			UserID:     order.CustomerID,
			StartedAt:  &startedAt,
			IsOngoing:  assign.IsOngoing,
			IsComplete: assign.IsComplete,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open customer session")
		}
	} else {
		sessionUpdates := map[string]any{
			"is_ongoing":  assign.IsOngoing,
			"is_complete": assign.IsComplete,
		}
		if assign.IsComplete && session.CompletedAt == nil {
			sessionUpdates["completed_at"] = s.now()
		}
		if err := repo.UpdatePurchased(ctx, session.ID, sessionUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync customer session")
		}
	}

	err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventAssignUpdated,
		AggregateType: enums.AggregateAssign,
		AggregateID:   assign.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: actorID},
		Data: payloads.AssignUpdatedEvent{
			AssignID:    assign.ID,
			OrderID:     assign.OrderID,
			BasketID:    assign.BasketID,
			CustomerID:  assign.CustomerID,
			AssistantID: assign.AssistantID,
			IsOngoing:   assign.IsOngoing,
			IsComplete:  assign.IsComplete,
		},
	})
	if err != nil {
		return err
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStateChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: actorID},
		Data: payloads.OrderStateChangedEvent{
			OrderID:    order.ID,
			BasketID:   order.BasketID,
			CustomerID: order.CustomerID,
			Status:     order.Status,
			IsOngoing:  order.IsOngoing,
			IsComplete: order.IsComplete,
		},
	})
}
