package stuff

import (
	"context"
	"errors"
	"io"
	"testing"
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

type fakeRepository struct {
	basket     *models.Basket
	share      *models.Share
	line       *models.Stuff
	purchased  *models.PurchasedStuff
	maxSort    int
	product    *models.Product
	productErr error

	created   *models.Stuff
	updates   map[string]any
	deletedID uuid.UUID
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, stuff *models.Stuff) (*models.Stuff, error) {
	stuff.ID = uuid.New()
	f.created = stuff
	return stuff, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Stuff, error) {
	if f.line == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.line, nil
}

func (f *fakeRepository) FindBasketForUpdate(ctx context.Context, basketID uuid.UUID) (*models.Basket, error) {
	if f.basket == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.basket, nil
}

func (f *fakeRepository) FindBasket(ctx context.Context, basketID uuid.UUID) (*models.Basket, error) {
	return f.FindBasketForUpdate(ctx, basketID)
}

func (f *fakeRepository) FindShare(ctx context.Context, basketID, userID uuid.UUID) (*models.Share, error) {
	return f.share, nil
}

func (f *fakeRepository) FindPurchasedStuff(ctx context.Context, stuffID uuid.UUID) (*models.PurchasedStuff, error) {
	return f.purchased, nil
}

func (f *fakeRepository) ListForBasket(ctx context.Context, basketID uuid.UUID, params pagination.Params) (*StuffPageDTO, error) {
	return &StuffPageDTO{}, nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	f.updates = updates
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	f.deletedID = id
	return nil
}

func (f *fakeRepository) MaxSort(ctx context.Context, basketID uuid.UUID) (int, error) {
	return f.maxSort, nil
}

func (f *fakeRepository) GetOrCreateProduct(ctx context.Context, userID uuid.UUID, name string) (*models.Product, error) {
	if f.productErr != nil {
		return nil, f.productErr
	}
	if f.product != nil {
		return f.product, nil
	}
	return &models.Product{ID: uuid.New(), UserID: userID, Name: name}, nil
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
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, fakeTxRunner{}, ob, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestAddToOpenBasketAppendsLine(t *testing.T) {
	owner := uuid.New()
	repo := &fakeRepository{
		basket:  &models.Basket{ID: uuid.New(), UserID: owner},
		maxSort: 2,
	}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)

	dto, err := svc.Add(context.Background(), AddInput{
		ActorID:  owner,
		BasketID: repo.basket.ID,
		Name:     "  milk  ",
		Quantity: decimal.NewFromInt(2),
		Metric:   enums.MetricLiter,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if repo.created.Name != "milk" {
		t.Fatalf("expected trimmed name, got %q", repo.created.Name)
	}
	if repo.created.Sort != 3 {
		t.Fatalf("expected sort 3, got %d", repo.created.Sort)
	}
	if repo.created.IsAdditional {
		t.Fatal("line on an open basket must not be additional")
	}
	if repo.created.ProductID == nil {
		t.Fatal("expected product linked to the line")
	}
	if dto.IsAdditional {
		t.Fatal("dto must not carry the additional flag")
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventStuffCreated {
		t.Fatalf("expected one stuff_created event, got %+v", ob.events)
	}
}

func TestAddToCompleteBasketFlagsAdditional(t *testing.T) {
	owner := uuid.New()
	repo := &fakeRepository{
		basket: &models.Basket{ID: uuid.New(), UserID: owner, IsComplete: true},
	}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)

	dto, err := svc.Add(context.Background(), AddInput{
		ActorID:  owner,
		BasketID: repo.basket.ID,
		Name:     "batteries",
		Quantity: decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !repo.created.IsAdditional {
		t.Fatal("line landing in a completed basket must be flagged additional")
	}
	if !dto.IsAdditional {
		t.Fatal("dto must carry the additional flag")
	}
	payload, ok := ob.events[0].Data.(payloads.StuffChangedEvent)
	if !ok {
		t.Fatalf("unexpected event payload %T", ob.events[0].Data)
	}
	if !payload.IsAdditional {
		t.Fatal("event payload must carry the additional flag")
	}
}

func TestAddProductBookkeepingFailureDoesNotBlock(t *testing.T) {
	owner := uuid.New()
	repo := &fakeRepository{
		basket:     &models.Basket{ID: uuid.New(), UserID: owner},
		productErr: errors.New("catalog down"),
	}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)

	_, err := svc.Add(context.Background(), AddInput{
		ActorID:  owner,
		BasketID: repo.basket.ID,
		Name:     "eggs",
		Quantity: decimal.NewFromInt(12),
	})
	if err != nil {
		t.Fatalf("add must survive catalog failure: %v", err)
	}
	if repo.created == nil {
		t.Fatal("expected line created despite catalog failure")
	}
	if repo.created.ProductID != nil {
		t.Fatal("failed lookup must leave the line unlinked")
	}
}

func TestAddValidation(t *testing.T) {
	owner := uuid.New()
	repo := &fakeRepository{basket: &models.Basket{ID: uuid.New(), UserID: owner}}
	svc := newTestService(t, repo, &fakeOutbox{})

	_, err := svc.Add(context.Background(), AddInput{
		ActorID:  owner,
		BasketID: repo.basket.ID,
		Name:     "   ",
		Quantity: decimal.NewFromInt(1),
	})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Add(context.Background(), AddInput{
		ActorID:  owner,
		BasketID: repo.basket.ID,
		Name:     "flour",
		Quantity: decimal.Zero,
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateMarksItemDone(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	repo := &fakeRepository{
		basket: basket,
		line:   &models.Stuff{ID: uuid.New(), BasketID: basket.ID, UserID: owner},
	}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return now }

	_, err := svc.Update(context.Background(), UpdateInput{
		ActorID: owner,
		StuffID: repo.line.ID,
		IsDone:  boolPtr(true),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if done, ok := repo.updates["is_done"].(bool); !ok || !done {
		t.Fatalf("expected is_done true, got %v", repo.updates["is_done"])
	}
	if at, ok := repo.updates["done_at"].(time.Time); !ok || !at.Equal(now) {
		t.Fatalf("expected done_at %v, got %v", now, repo.updates["done_at"])
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventStuffUpdated {
		t.Fatalf("expected one stuff_updated event, got %+v", ob.events)
	}
}

func TestUpdateWithoutFieldsRejected(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	repo := &fakeRepository{
		basket: basket,
		line:   &models.Stuff{ID: uuid.New(), BasketID: basket.ID, UserID: owner},
	}
	svc := newTestService(t, repo, &fakeOutbox{})

	_, err := svc.Update(context.Background(), UpdateInput{ActorID: owner, StuffID: repo.line.ID})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteEmitsEvent(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	repo := &fakeRepository{
		basket: basket,
		line:   &models.Stuff{ID: uuid.New(), BasketID: basket.ID, UserID: owner},
	}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)

	if err := svc.Delete(context.Background(), owner, repo.line.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.deletedID != repo.line.ID {
		t.Fatalf("expected line %s deleted, got %s", repo.line.ID, repo.deletedID)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventStuffDeleted {
		t.Fatalf("expected one stuff_deleted event, got %+v", ob.events)
	}
}
