package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/pagination"
)

// Service defines notification read operations.
type Service interface {
	List(ctx context.Context, actorID uuid.UUID, params pagination.Params) (*NotificationPageDTO, error)
	MarkRead(ctx context.Context, actorID uuid.UUID, ids []uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a notifications service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, actorID uuid.UUID, params pagination.Params) (*NotificationPageDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	page, err := s.repo.ListForUser(ctx, actorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	unread, err := s.repo.UnreadCount(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}
	page.Unread = unread
	return page, nil
}

// MarkRead stamps the given notifications read; an empty id list marks
// everything.
func (s *service) MarkRead(ctx context.Context, actorID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if actorID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	var affected int64
	var err error
	if len(ids) == 0 {
		affected, err = s.repo.MarkAllRead(ctx, actorID, s.now())
	} else {
		affected, err = s.repo.MarkRead(ctx, actorID, ids, s.now())
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return affected, nil
}
