package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/pagination"
)

type fakeRepository struct {
	page   *NotificationPageDTO
	unread int64

	markedIDs []uuid.UUID
	markedAll bool
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	return nil
}

func (f *fakeRepository) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*NotificationPageDTO, error) {
	if f.page == nil {
		return &NotificationPageDTO{}, nil
	}
	return f.page, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int64, error) {
	f.markedIDs = ids
	return int64(len(ids)), nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	f.markedAll = true
	return 9, nil
}

func (f *fakeRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.unread, nil
}

func (f *fakeRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestListIncludesUnreadCount(t *testing.T) {
	repo := &fakeRepository{
		page:   &NotificationPageDTO{Items: []NotificationDTO{{ID: uuid.New()}}},
		unread: 4,
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	page, err := svc.List(context.Background(), uuid.New(), pagination.Params{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Unread != 4 {
		t.Fatalf("expected unread count 4, got %d", page.Unread)
	}
}

func TestListRequiresIdentity(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.List(context.Background(), uuid.Nil, pagination.Params{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestMarkReadWithIDs(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	affected, err := svc.MarkRead(context.Background(), uuid.New(), ids)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if affected != 2 || len(repo.markedIDs) != 2 {
		t.Fatalf("expected 2 rows marked, got %d", affected)
	}
	if repo.markedAll {
		t.Fatal("explicit ids must not mark everything")
	}
}

func TestMarkReadEmptyMarksAll(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	affected, err := svc.MarkRead(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !repo.markedAll || affected != 9 {
		t.Fatalf("expected mark-all path, affected=%d markedAll=%v", affected, repo.markedAll)
	}
}
