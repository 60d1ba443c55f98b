package baskets

import (
	"testing"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

func boolPtr(v bool) *bool { return &v }

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
}

func TestCanUpdateCreator(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}

	if err := CanUpdate(basket, owner, nil, UpdateFields{Name: true}, false); err != nil {
		t.Fatalf("creator update: %v", err)
	}
}

func TestCanUpdateMissingBasket(t *testing.T) {
	assertCode(t, CanUpdate(nil, uuid.New(), nil, UpdateFields{Name: true}, false), pkgerrors.CodeNotFound)
}

func TestCanUpdateOrderedFreeze(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner, IsOrdered: boolPtr(true)}

	assertCode(t, CanUpdate(basket, owner, nil, UpdateFields{Name: true}, false), pkgerrors.CodeStateConflict)

	// The reorder path stays open after escalation.
	if err := CanUpdate(basket, owner, nil, UpdateFields{Sort: true}, true); err != nil {
		t.Fatalf("sort after escalation: %v", err)
	}
}

func TestCanUpdateStranger(t *testing.T) {
	basket := &models.Basket{ID: uuid.New(), UserID: uuid.New()}

	assertCode(t, CanUpdate(basket, uuid.New(), nil, UpdateFields{IsComplete: true}, false), pkgerrors.CodeForbidden)
}

func TestCanUpdateSharedUserCompletionOnly(t *testing.T) {
	actor := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: uuid.New()}
	share := &models.Share{BasketID: basket.ID, ToUserID: actor, IsCanBuy: true}

	if err := CanUpdate(basket, actor, share, UpdateFields{IsComplete: true}, false); err != nil {
		t.Fatalf("completion by shared user: %v", err)
	}

	assertCode(t, CanUpdate(basket, actor, share, UpdateFields{Name: true}, false), pkgerrors.CodeForbidden)
	assertCode(t, CanUpdate(basket, actor, share, UpdateFields{IsComplete: true, Note: true}, false), pkgerrors.CodeForbidden)
}

func TestCanUpdateSharedUserWithoutBuyGrant(t *testing.T) {
	actor := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: uuid.New()}
	share := &models.Share{BasketID: basket.ID, ToUserID: actor, IsCanBuy: false}

	assertCode(t, CanUpdate(basket, actor, share, UpdateFields{IsComplete: true}, false), pkgerrors.CodeForbidden)
}

func TestCanDelete(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}

	if err := CanDelete(basket, owner); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
	assertCode(t, CanDelete(basket, uuid.New()), pkgerrors.CodeForbidden)

	basket.IsOrdered = boolPtr(true)
	assertCode(t, CanDelete(basket, owner), pkgerrors.CodeStateConflict)
}

func TestCanView(t *testing.T) {
	owner := uuid.New()
	grantee := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	share := &models.Share{BasketID: basket.ID, ToUserID: grantee}

	if err := CanView(basket, owner, nil); err != nil {
		t.Fatalf("creator view: %v", err)
	}
	if err := CanView(basket, grantee, share); err != nil {
		t.Fatalf("grantee view: %v", err)
	}
	assertCode(t, CanView(basket, uuid.New(), nil), pkgerrors.CodeForbidden)
	assertCode(t, CanView(nil, owner, nil), pkgerrors.CodeNotFound)
}
