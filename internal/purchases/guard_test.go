package purchases

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

func TestCanPurchase(t *testing.T) {
	owner := uuid.New()
	buyer := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}

	if err := CanPurchase(basket, owner, nil); err != nil {
		t.Fatalf("owner: %v", err)
	}

	share := &models.Share{BasketID: basket.ID, ToUserID: buyer, IsCanBuy: true}
	if err := CanPurchase(basket, buyer, share); err != nil {
		t.Fatalf("buy grant: %v", err)
	}

	share.IsCanBuy = false
	assertCode(t, CanPurchase(basket, buyer, share), pkgerrors.CodeForbidden)
	assertCode(t, CanPurchase(basket, uuid.New(), nil), pkgerrors.CodeForbidden)
	assertCode(t, CanPurchase(nil, owner, nil), pkgerrors.CodeNotFound)

	basket.IsOrdered = boolPtr(true)
	assertCode(t, CanPurchase(basket, owner, nil), pkgerrors.CodeStateConflict)
}

func TestCanEditItem(t *testing.T) {
	actor := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: actor}
	line := &models.Stuff{ID: uuid.New(), BasketID: basket.ID}
	item := &models.PurchasedStuff{ID: uuid.New(), BasketID: basket.ID, StuffID: line.ID, UserID: actor}

	if err := CanEditItem(basket, line, item, actor); err != nil {
		t.Fatalf("purchaser edit: %v", err)
	}

	assertCode(t, CanEditItem(basket, line, item, uuid.New()), pkgerrors.CodeForbidden)
	assertCode(t, CanEditItem(basket, line, nil, actor), pkgerrors.CodeNotFound)
}

func TestCanEditItemFoundLockedAfterCompletion(t *testing.T) {
	actor := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: actor, IsComplete: true}
	line := &models.Stuff{ID: uuid.New(), BasketID: basket.ID}
	item := &models.PurchasedStuff{ID: uuid.New(), BasketID: basket.ID, StuffID: line.ID, UserID: actor, IsFound: boolPtr(true)}

	assertCode(t, CanEditItem(basket, line, item, actor), pkgerrors.CodeStateConflict)

	// An additional line stays editable after completion.
	line.IsAdditional = true
	if err := CanEditItem(basket, line, item, actor); err != nil {
		t.Fatalf("additional line after completion: %v", err)
	}

	// A line that was never found is also still editable.
	line.IsAdditional = false
	item.IsFound = boolPtr(false)
	if err := CanEditItem(basket, line, item, actor); err != nil {
		t.Fatalf("unfound line after completion: %v", err)
	}
}
