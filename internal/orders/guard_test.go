package orders

import (
	"testing"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

func boolPtr(v bool) *bool { return &v }

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

func TestCanCreate(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}

	if err := CanCreate(basket, owner); err != nil {
		t.Fatalf("creator order: %v", err)
	}
	expectCode(t, CanCreate(basket, uuid.New()), pkgerrors.CodeForbidden)
	expectCode(t, CanCreate(nil, owner), pkgerrors.CodeNotFound)

	basket.IsPurchased = true
	expectCode(t, CanCreate(basket, owner), pkgerrors.CodeStateConflict)

	basket.IsPurchased = false
	basket.IsOrdered = boolPtr(true)
	expectCode(t, CanCreate(basket, owner), pkgerrors.CodeStateConflict)
}

func TestCanDeleteOrder(t *testing.T) {
	customer := uuid.New()
	order := &models.Order{ID: uuid.New(), CustomerID: customer}

	if err := CanDelete(order, customer, false); err != nil {
		t.Fatalf("withdraw waiting order: %v", err)
	}
	expectCode(t, CanDelete(order, uuid.New(), false), pkgerrors.CodeForbidden)
	expectCode(t, CanDelete(order, customer, true), pkgerrors.CodeStateConflict)

	order.IsOngoing = true
	expectCode(t, CanDelete(order, customer, false), pkgerrors.CodeStateConflict)
	expectCode(t, CanDelete(nil, customer, false), pkgerrors.CodeNotFound)
}

func TestCanTransition(t *testing.T) {
	valid := [][2]enums.GeneralStatus{
		{enums.StatusWaiting, enums.StatusAccept},
		{enums.StatusWaiting, enums.StatusReject},
		{enums.StatusAccept, enums.StatusReject},
		{enums.StatusAccept, enums.StatusDone},
	}
	for _, pair := range valid {
		if err := CanTransition(pair[0], pair[1]); err != nil {
			t.Fatalf("%s -> %s should be allowed: %v", pair[0], pair[1], err)
		}
	}

	invalid := [][2]enums.GeneralStatus{
		{enums.StatusWaiting, enums.StatusDone},
		{enums.StatusDone, enums.StatusWaiting},
		{enums.StatusReject, enums.StatusAccept},
		{enums.StatusDone, enums.StatusAccept},
	}
	for _, pair := range invalid {
		expectCode(t, CanTransition(pair[0], pair[1]), pkgerrors.CodeStateConflict)
	}
}

func TestIsStaff(t *testing.T) {
	if !IsStaff(enums.UserRoleStaff) {
		t.Fatal("staff must pass")
	}
	if IsStaff(enums.UserRoleAssistant) || IsStaff(enums.UserRoleCustomer) {
		t.Fatal("non-staff roles must not pass")
	}
}
