package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/api/middleware"
	"github.com/keranjangku/keranjangku-backend/internal/notifications"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
	"github.com/keranjangku/keranjangku-backend/pkg/pagination"
)

type testNotificationsService struct {
	listFn     func(ctx context.Context, actorID uuid.UUID, params pagination.Params) (*notifications.NotificationPageDTO, error)
	markReadFn func(ctx context.Context, actorID uuid.UUID, ids []uuid.UUID) (int64, error)
}

func (s *testNotificationsService) List(ctx context.Context, actorID uuid.UUID, params pagination.Params) (*notifications.NotificationPageDTO, error) {
	if s.listFn == nil {
		return &notifications.NotificationPageDTO{}, nil
	}
	return s.listFn(ctx, actorID, params)
}

func (s *testNotificationsService) MarkRead(ctx context.Context, actorID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if s.markReadFn == nil {
		return 0, nil
	}
	return s.markReadFn(ctx, actorID, ids)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func authedRequest(method, target string, body io.Reader, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestListNotificationsReturnsPage(t *testing.T) {
	userID := uuid.New()
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, actorID uuid.UUID, params pagination.Params) (*notifications.NotificationPageDTO, error) {
			if actorID != userID {
				t.Fatalf("expected actor %s, got %s", userID, actorID)
			}
			return &notifications.NotificationPageDTO{
				Items:  []notifications.NotificationDTO{{ID: uuid.New(), Title: "Basket shared with you"}},
				Unread: 1,
			}, nil
		},
	}
	handler := ListNotifications(svc, testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/notifications", nil, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Data notifications.NotificationPageDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data.Items) != 1 || payload.Data.Unread != 1 {
		t.Fatalf("unexpected page %+v", payload.Data)
	}
}

func TestMarkNotificationsReadPassesIDs(t *testing.T) {
	userID := uuid.New()
	target := uuid.New()
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, actorID uuid.UUID, ids []uuid.UUID) (int64, error) {
			if len(ids) != 1 || ids[0] != target {
				t.Fatalf("unexpected ids %v", ids)
			}
			return 1, nil
		},
	}
	handler := MarkNotificationsRead(svc, testLogger())

	body := strings.NewReader(`{"ids":["` + target.String() + `"]}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/notifications/read", body, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMarkNotificationsReadServiceError(t *testing.T) {
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, actorID uuid.UUID, ids []uuid.UUID) (int64, error) {
			return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
		},
	}
	handler := MarkNotificationsRead(svc, testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/notifications/read", strings.NewReader(`{}`), uuid.Nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
