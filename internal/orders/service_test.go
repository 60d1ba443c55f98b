package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox"
	"github.com/keranjangku/keranjangku-backend/pkg/pagination"
)

type fakeRepository struct {
	basket    *models.Basket
	order     *models.Order
	stuff     []models.Stuff
	assign    *models.Assign
	line      *models.OrderLine
	purchased *models.Purchased

	createdOrder  *models.Order
	createdLines  []models.OrderLine
	basketUpdates map[string]any
	orderUpdates  map[string]any
	lineUpdates   map[string]any
	stuffUpdates  map[string]any
	deletedOrder  uuid.UUID
	deletedLines  uuid.UUID
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindBasketForUpdate(ctx context.Context, basketID uuid.UUID) (*models.Basket, error) {
	if f.basket == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.basket, nil
}

func (f *fakeRepository) UpdateBasket(ctx context.Context, basketID uuid.UUID, updates map[string]any) error {
	f.basketUpdates = updates
	return nil
}

func (f *fakeRepository) ListStuffForBasket(ctx context.Context, basketID uuid.UUID) ([]models.Stuff, error) {
	return f.stuff, nil
}

func (f *fakeRepository) UpdateStuff(ctx context.Context, stuffID uuid.UUID, updates map[string]any) error {
	f.stuffUpdates = updates
	return nil
}

func (f *fakeRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	f.createdOrder = order
	return order, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if f.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.order, nil
}

func (f *fakeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRepository) FindByBasket(ctx context.Context, basketID uuid.UUID) (*models.Order, error) {
	return f.order, nil
}

func (f *fakeRepository) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderPageDTO, error) {
	return &OrderPageDTO{}, nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	f.orderUpdates = updates
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	f.deletedOrder = id
	return nil
}

func (f *fakeRepository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	f.createdLines = lines
	return nil
}

func (f *fakeRepository) ListLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	return f.createdLines, nil
}

func (f *fakeRepository) FindLineByID(ctx context.Context, id uuid.UUID) (*models.OrderLine, error) {
	if f.line == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.line, nil
}

func (f *fakeRepository) UpdateLine(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	f.lineUpdates = updates
	return nil
}

func (f *fakeRepository) DeleteLines(ctx context.Context, orderID uuid.UUID) error {
	f.deletedLines = orderID
	return nil
}

func (f *fakeRepository) CreateAssign(ctx context.Context, assign *models.Assign) (*models.Assign, error) {
	assign.ID = uuid.New()
	f.assign = assign
	return assign, nil
}

func (f *fakeRepository) FindAssignByID(ctx context.Context, id uuid.UUID) (*models.Assign, error) {
	if f.assign == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.assign, nil
}

func (f *fakeRepository) FindAssignByOrder(ctx context.Context, orderID uuid.UUID) (*models.Assign, error) {
	return f.assign, nil
}

func (f *fakeRepository) ListAssignsForAssistant(ctx context.Context, assistantID uuid.UUID) ([]models.Assign, error) {
	if f.assign == nil {
		return nil, nil
	}
	return []models.Assign{*f.assign}, nil
}

func (f *fakeRepository) UpdateAssign(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (f *fakeRepository) FindPurchased(ctx context.Context, basketID, userID uuid.UUID) (*models.Purchased, error) {
	return f.purchased, nil
}

func (f *fakeRepository) CreatePurchased(ctx context.Context, purchased *models.Purchased) (*models.Purchased, error) {
	purchased.ID = uuid.New()
	f.purchased = purchased
	return purchased, nil
}

func (f *fakeRepository) UpdatePurchased(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (f *fakeRepository) FindPurchasedStuffByStuffID(ctx context.Context, stuffID uuid.UUID) (*models.PurchasedStuff, error) {
	return nil, nil
}

func (f *fakeRepository) CreatePurchasedStuff(ctx context.Context, item *models.PurchasedStuff) error {
	return nil
}

func (f *fakeRepository) UpdatePurchasedStuff(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func newTestService(t *testing.T, repo Repository, ob *fakeOutbox) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{}, ob)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateSnapshotsBasket(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	repo := &fakeRepository{
		basket: basket,
		stuff: []models.Stuff{
			{ID: uuid.New(), BasketID: basket.ID, Name: "rice", Quantity: decimal.NewFromInt(2), Metric: enums.MetricKilogram},
			{ID: uuid.New(), BasketID: basket.ID, Name: "eggs", Quantity: decimal.NewFromInt(12), Metric: enums.MetricPiece},
			{ID: uuid.New(), BasketID: basket.ID, Name: "oil", Quantity: decimal.NewFromInt(1), Metric: enums.MetricLiter},
		},
	}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)

	dto, err := svc.Create(context.Background(), CreateInput{ActorID: owner, BasketID: basket.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(dto.Lines) != 3 {
		t.Fatalf("expected 3 snapshot lines, got %d", len(dto.Lines))
	}
	if dto.Status != enums.StatusWaiting {
		t.Fatalf("expected waiting order, got %s", dto.Status)
	}
	if dto.Number == "" {
		t.Fatal("expected generated order number")
	}
	if frozen, ok := repo.basketUpdates["is_ordered"].(bool); !ok || !frozen {
		t.Fatalf("expected basket frozen, got %v", repo.basketUpdates)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventOrderCreated {
		t.Fatalf("expected order created event, got %+v", ob.events)
	}
}

func TestCreateEmptyBasketRejected(t *testing.T) {
	owner := uuid.New()
	repo := &fakeRepository{basket: &models.Basket{ID: uuid.New(), UserID: owner}}
	svc := newTestService(t, repo, &fakeOutbox{})

	_, err := svc.Create(context.Background(), CreateInput{ActorID: owner, BasketID: repo.basket.ID})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateAlreadyOrderedConflict(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	repo := &fakeRepository{
		basket: basket,
		order:  &models.Order{ID: uuid.New(), BasketID: basket.ID, CustomerID: owner},
	}
	svc := newTestService(t, repo, &fakeOutbox{})

	_, err := svc.Create(context.Background(), CreateInput{ActorID: owner, BasketID: basket.ID})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestScheduleSetsDeliveryTime(t *testing.T) {
	customer := uuid.New()
	order := &models.Order{ID: uuid.New(), CustomerID: customer, BasketID: uuid.New(), Status: enums.StatusWaiting}
	repo := &fakeRepository{order: order}
	svc := newTestService(t, repo, &fakeOutbox{})
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return now }

	at := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	dto, err := svc.Schedule(context.Background(), customer, order.ID, at)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if dto.ScheduledAt == nil || !dto.ScheduledAt.Equal(at) {
		t.Fatalf("expected scheduled_at %v, got %v", at, dto.ScheduledAt)
	}
	if got, ok := repo.orderUpdates["scheduled_at"].(time.Time); !ok || !got.Equal(at) {
		t.Fatalf("expected persisted schedule, got %v", repo.orderUpdates)
	}
}

func TestScheduleSameDayRejected(t *testing.T) {
	customer := uuid.New()
	order := &models.Order{ID: uuid.New(), CustomerID: customer, BasketID: uuid.New(), Status: enums.StatusWaiting}
	svc := newTestService(t, &fakeRepository{order: order}, &fakeOutbox{})
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return now }

	// Same-day delivery cannot be planned; tomorrow is the earliest slot.
	_, err := svc.Schedule(context.Background(), customer, order.ID, now.Add(2*time.Hour))
	expectCode(t, err, pkgerrors.CodeValidation)

	if _, err := svc.Schedule(context.Background(), customer, order.ID, now.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("next-day schedule must pass: %v", err)
	}
}

func TestScheduleByStrangerRejected(t *testing.T) {
	order := &models.Order{ID: uuid.New(), CustomerID: uuid.New(), BasketID: uuid.New(), Status: enums.StatusWaiting}
	svc := newTestService(t, &fakeRepository{order: order}, &fakeOutbox{})

	_, err := svc.Schedule(context.Background(), uuid.New(), order.ID, time.Now().AddDate(0, 0, 2))
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestScheduleCompletedOrderRejected(t *testing.T) {
	customer := uuid.New()
	order := &models.Order{ID: uuid.New(), CustomerID: customer, BasketID: uuid.New(), Status: enums.StatusDone, IsComplete: true}
	svc := newTestService(t, &fakeRepository{order: order}, &fakeOutbox{})

	_, err := svc.Schedule(context.Background(), customer, order.ID, time.Now().AddDate(0, 0, 2))
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestUnscheduleClearsDeliveryTime(t *testing.T) {
	customer := uuid.New()
	at := time.Now().AddDate(0, 0, 3)
	order := &models.Order{ID: uuid.New(), CustomerID: customer, BasketID: uuid.New(), Status: enums.StatusWaiting, ScheduledAt: &at}
	repo := &fakeRepository{order: order}
	svc := newTestService(t, repo, &fakeOutbox{})

	if err := svc.Unschedule(context.Background(), customer, order.ID); err != nil {
		t.Fatalf("Unschedule: %v", err)
	}
	if v, ok := repo.orderUpdates["scheduled_at"]; !ok || v != nil {
		t.Fatalf("expected scheduled_at cleared, got %v", repo.orderUpdates)
	}
}

func TestDeleteThawsBasket(t *testing.T) {
	customer := uuid.New()
	order := &models.Order{ID: uuid.New(), CustomerID: customer, BasketID: uuid.New(), Status: enums.StatusWaiting}
	repo := &fakeRepository{order: order}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)

	if err := svc.Delete(context.Background(), customer, order.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if repo.deletedOrder != order.ID || repo.deletedLines != order.ID {
		t.Fatal("expected order and lines deleted")
	}
	if v, ok := repo.basketUpdates["is_ordered"]; !ok || v != nil {
		t.Fatalf("expected is_ordered reset to nil, got %v", repo.basketUpdates)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventOrderCanceled {
		t.Fatalf("expected order canceled event, got %+v", ob.events)
	}
}

func TestDeleteAssignedOrderRejected(t *testing.T) {
	customer := uuid.New()
	order := &models.Order{ID: uuid.New(), CustomerID: customer, BasketID: uuid.New()}
	repo := &fakeRepository{
		order:  order,
		assign: &models.Assign{ID: uuid.New(), OrderID: order.ID},
	}
	svc := newTestService(t, repo, &fakeOutbox{})

	expectCode(t, svc.Delete(context.Background(), customer, order.ID), pkgerrors.CodeStateConflict)
}

func TestUpdateLineByAssignedAssistant(t *testing.T) {
	assistant := uuid.New()
	order := &models.Order{ID: uuid.New(), CustomerID: uuid.New(), BasketID: uuid.New(), Status: enums.StatusAccept}
	line := &models.OrderLine{
		ID:       uuid.New(),
		OrderID:  order.ID,
		StuffID:  uuid.New(),
		Name:     "rice",
		Quantity: decimal.NewFromInt(2),
		Metric:   enums.MetricKilogram,
	}
	repo := &fakeRepository{
		order:  order,
		line:   line,
		assign: &models.Assign{ID: uuid.New(), OrderID: order.ID, AssistantID: assistant, BasketID: order.BasketID},
	}
	svc := newTestService(t, repo, &fakeOutbox{})

	price := int64(2000)
	found := true
	dto, err := svc.UpdateLine(context.Background(), UpdateLineInput{
		ActorID:   assistant,
		ActorRole: enums.UserRoleAssistant,
		LineID:    line.ID,
		Price:     &price,
		IsFound:   &found,
	})
	if err != nil {
		t.Fatalf("UpdateLine: %v", err)
	}
	if dto.Amount != 4000 {
		t.Fatalf("expected amount 4000 (2000 x 2kg), got %d", dto.Amount)
	}
}

func TestUpdateLineByStrangerRejected(t *testing.T) {
	order := &models.Order{ID: uuid.New(), CustomerID: uuid.New(), BasketID: uuid.New()}
	line := &models.OrderLine{ID: uuid.New(), OrderID: order.ID, StuffID: uuid.New(), Quantity: decimal.NewFromInt(1)}
	repo := &fakeRepository{order: order, line: line}
	svc := newTestService(t, repo, &fakeOutbox{})

	found := true
	_, err := svc.UpdateLine(context.Background(), UpdateLineInput{
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleAssistant,
		LineID:    line.ID,
		IsFound:   &found,
	})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateAssignAcceptsOrder(t *testing.T) {
	staff := uuid.New()
	assistant := uuid.New()
	order := &models.Order{ID: uuid.New(), CustomerID: uuid.New(), BasketID: uuid.New(), Status: enums.StatusWaiting}
	repo := &fakeRepository{order: order}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)

	dto, err := svc.CreateAssign(context.Background(), CreateAssignInput{
		ActorID:     staff,
		ActorRole:   enums.UserRoleStaff,
		OrderID:     order.ID,
		AssistantID: assistant,
	})
	if err != nil {
		t.Fatalf("CreateAssign: %v", err)
	}
	if dto.AssistantID != assistant || !dto.IsOngoing {
		t.Fatalf("expected ongoing assignment for assistant, got %+v", dto)
	}
	if repo.orderUpdates["status"] != enums.StatusAccept {
		t.Fatalf("expected order accepted, got %v", repo.orderUpdates)
	}
}

func TestCreateAssignRequiresStaff(t *testing.T) {
	_, err := newTestService(t, &fakeRepository{}, &fakeOutbox{}).CreateAssign(context.Background(), CreateAssignInput{
		ActorID:     uuid.New(),
		ActorRole:   enums.UserRoleAssistant,
		OrderID:     uuid.New(),
		AssistantID: uuid.New(),
	})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateAssignCompletionClosesEverything(t *testing.T) {
	assistant := uuid.New()
	customer := uuid.New()
	order := &models.Order{ID: uuid.New(), CustomerID: customer, BasketID: uuid.New(), Status: enums.StatusAccept}
	assign := &models.Assign{
		ID:          uuid.New(),
		OrderID:     order.ID,
		CustomerID:  customer,
		AssistantID: assistant,
		BasketID:    order.BasketID,
		IsOngoing:   true,
	}
	repo := &fakeRepository{order: order, assign: assign}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)

	complete := true
	dto, err := svc.UpdateAssign(context.Background(), UpdateAssignInput{
		ActorID:    assistant,
		ActorRole:  enums.UserRoleAssistant,
		AssignID:   assign.ID,
		IsComplete: &complete,
	})
	if err != nil {
		t.Fatalf("UpdateAssign: %v", err)
	}
	if !dto.IsComplete || dto.IsOngoing {
		t.Fatalf("expected completed assignment, got %+v", dto)
	}
	if repo.orderUpdates["status"] != enums.StatusDone {
		t.Fatalf("expected order done, got %v", repo.orderUpdates)
	}
	if v, _ := repo.basketUpdates["is_complete"].(bool); !v {
		t.Fatalf("expected basket completed, got %v", repo.basketUpdates)
	}
	if repo.basketUpdates["completed_by_id"] != assistant {
		t.Fatalf("expected completion attributed to the assistant, got %v", repo.basketUpdates["completed_by_id"])
	}
	// Messaging covers both the assignment progress and the order state.
	if len(ob.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(ob.events))
	}
	if ob.events[0].EventType != enums.EventAssignUpdated || ob.events[1].EventType != enums.EventOrderStateChanged {
		t.Fatalf("unexpected event order: %+v", ob.events)
	}
}
