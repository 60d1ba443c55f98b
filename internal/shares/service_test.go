package shares

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox"
)

type fakeRepository struct {
	basket        *models.Basket
	share         *models.Share
	existing      *models.Share
	username      string
	contributions int64

	created       *models.Share
	updates       map[string]any
	deletedShare  uuid.UUID
	contribsGone  bool
	usernameCalls int
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, share *models.Share) (*models.Share, error) {
	share.ID = uuid.New()
	f.created = share
	return share, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Share, error) {
	if f.share == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.share, nil
}

func (f *fakeRepository) FindByBasketAndUser(ctx context.Context, basketID, toUserID uuid.UUID) (*models.Share, error) {
	return f.existing, nil
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

func (f *fakeRepository) FindUsername(ctx context.Context, userID uuid.UUID) (string, error) {
	f.usernameCalls++
	return f.username, nil
}

func (f *fakeRepository) ListForBasket(ctx context.Context, basketID uuid.UUID) ([]ShareDTO, error) {
	return nil, nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	f.updates = updates
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	f.deletedShare = id
	return nil
}

func (f *fakeRepository) ContributionCount(ctx context.Context, basketID, userID uuid.UUID) (int64, error) {
	return f.contributions, nil
}

func (f *fakeRepository) DeleteContributions(ctx context.Context, basketID, userID uuid.UUID) error {
	f.contribsGone = true
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

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected %s error, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
}

func TestAddNormalizesAdminGrant(t *testing.T) {
	owner := uuid.New()
	repo := &fakeRepository{basket: &models.Basket{ID: uuid.New(), UserID: owner}, username: "tio"}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)

	dto, err := svc.Add(context.Background(), AddInput{
		ActorID:  owner,
		BasketID: repo.basket.ID,
		ToUserID: uuid.New(),
		IsAdmin:  true,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !dto.IsAdmin || !dto.IsCanCRUD {
		t.Fatalf("admin grant must imply crud, got admin=%v crud=%v", dto.IsAdmin, dto.IsCanCRUD)
	}
	if repo.created == nil || repo.created.Status != enums.StatusWaiting {
		t.Fatalf("expected waiting share created, got %+v", repo.created)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventShareCreated {
		t.Fatalf("expected share created event, got %+v", ob.events)
	}
}

func TestAddToSelfRejected(t *testing.T) {
	owner := uuid.New()
	repo := &fakeRepository{basket: &models.Basket{ID: uuid.New(), UserID: owner}}
	svc := newTestService(t, repo, &fakeOutbox{})

	_, err := svc.Add(context.Background(), AddInput{ActorID: owner, BasketID: repo.basket.ID, ToUserID: owner})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestAddReturnsExistingGrant(t *testing.T) {
	owner := uuid.New()
	grantee := uuid.New()
	existing := &models.Share{ID: uuid.New(), ToUserID: grantee, Status: enums.StatusAccept}
	repo := &fakeRepository{basket: &models.Basket{ID: uuid.New(), UserID: owner}, existing: existing, username: "tio"}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)

	dto, err := svc.Add(context.Background(), AddInput{ActorID: owner, BasketID: repo.basket.ID, ToUserID: grantee})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if dto.ID != existing.ID {
		t.Fatalf("expected existing share returned, got %s", dto.ID)
	}
	if repo.created != nil || len(ob.events) != 0 {
		t.Fatal("expected no new share or event")
	}
}

func TestUpdateGranteeAnswersInvite(t *testing.T) {
	grantee := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: uuid.New()}
	share := &models.Share{ID: uuid.New(), BasketID: basket.ID, ToUserID: grantee, Status: enums.StatusWaiting}
	repo := &fakeRepository{basket: basket, share: share}
	svc := newTestService(t, repo, &fakeOutbox{})

	status := enums.StatusAccept
	dto, err := svc.Update(context.Background(), UpdateInput{ActorID: grantee, ShareID: share.ID, Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if dto.Status != enums.StatusAccept {
		t.Fatalf("expected accept, got %s", dto.Status)
	}

	// A second answer is rejected.
	_, err = svc.Update(context.Background(), UpdateInput{ActorID: grantee, ShareID: share.ID, Status: &status})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestUpdateGranteeCannotTouchGrants(t *testing.T) {
	grantee := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: uuid.New()}
	share := &models.Share{ID: uuid.New(), BasketID: basket.ID, ToUserID: grantee, Status: enums.StatusWaiting}
	repo := &fakeRepository{basket: basket, share: share}
	svc := newTestService(t, repo, &fakeOutbox{})

	admin := true
	_, err := svc.Update(context.Background(), UpdateInput{ActorID: grantee, ShareID: share.ID, IsAdmin: &admin})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestDeleteBlockedByOwnContributions(t *testing.T) {
	grantee := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: uuid.New()}
	share := &models.Share{ID: uuid.New(), BasketID: basket.ID, ToUserID: grantee}
	repo := &fakeRepository{basket: basket, share: share, contributions: 2}
	svc := newTestService(t, repo, &fakeOutbox{})

	err := svc.Delete(context.Background(), grantee, share.ID)
	expectCode(t, err, pkgerrors.CodeConflict)
	typed := pkgerrors.As(err)
	if !strings.Contains(typed.Message(), "you have already added") {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestDeleteBlockedByGranteeContributions(t *testing.T) {
	owner := uuid.New()
	grantee := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	share := &models.Share{ID: uuid.New(), BasketID: basket.ID, ToUserID: grantee}
	repo := &fakeRepository{basket: basket, share: share, contributions: 1, username: "tio"}
	svc := newTestService(t, repo, &fakeOutbox{})

	err := svc.Delete(context.Background(), owner, share.ID)
	expectCode(t, err, pkgerrors.CodeConflict)
	typed := pkgerrors.As(err)
	if !strings.Contains(typed.Message(), "tio") {
		t.Fatalf("expected grantee username in message, got %q", typed.Message())
	}
}

func TestDeleteCleanGrant(t *testing.T) {
	owner := uuid.New()
	grantee := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	share := &models.Share{ID: uuid.New(), BasketID: basket.ID, ToUserID: grantee}
	repo := &fakeRepository{basket: basket, share: share}
	ob := &fakeOutbox{}
	svc := newTestService(t, repo, ob)

	if err := svc.Delete(context.Background(), owner, share.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !repo.contribsGone {
		t.Fatal("expected grantee sessions removed")
	}
	if repo.deletedShare != share.ID {
		t.Fatalf("expected share %s deleted, got %s", share.ID, repo.deletedShare)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventShareDeleted {
		t.Fatalf("expected share deleted event, got %+v", ob.events)
	}
}
