package stuff

import (
	"testing"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

func boolPtr(v bool) *bool { return &v }

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%s)", code, typed.Code(), typed.Message())
	}
}

func TestCanAddCreator(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	if err := CanAdd(basket, owner, nil); err != nil {
		t.Fatalf("creator should add freely: %v", err)
	}
}

func TestCanAddMissingBasket(t *testing.T) {
	expectCode(t, CanAdd(nil, uuid.New(), nil), pkgerrors.CodeNotFound)
}

func TestCanAddOrderedBasketFrozen(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner, IsOrdered: boolPtr(true)}
	expectCode(t, CanAdd(basket, owner, nil), pkgerrors.CodeStateConflict)
}

func TestCanAddSharedUser(t *testing.T) {
	owner := uuid.New()
	grantee := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	share := &models.Share{BasketID: basket.ID, UserID: owner, ToUserID: grantee, IsCanCRUD: true}

	if err := CanAdd(basket, grantee, share); err != nil {
		t.Fatalf("sharer with crud grant should add: %v", err)
	}

	share.IsCanCRUD = false
	expectCode(t, CanAdd(basket, grantee, share), pkgerrors.CodeForbidden)

	expectCode(t, CanAdd(basket, uuid.New(), share), pkgerrors.CodeForbidden)
}

func TestCanAddAdditionalNeedsBuyGrant(t *testing.T) {
	owner := uuid.New()
	grantee := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner, IsComplete: true}
	share := &models.Share{BasketID: basket.ID, ToUserID: grantee, IsCanCRUD: true}

	expectCode(t, CanAdd(basket, grantee, share), pkgerrors.CodeForbidden)

	share.IsCanBuy = true
	if err := CanAdd(basket, grantee, share); err != nil {
		t.Fatalf("buy grant should open the additional path: %v", err)
	}

	// The creator never needs the grant.
	if err := CanAdd(basket, owner, nil); err != nil {
		t.Fatalf("creator should add to own completed basket: %v", err)
	}
}

func TestCanMutateOwners(t *testing.T) {
	owner := uuid.New()
	author := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	line := &models.Stuff{ID: uuid.New(), BasketID: basket.ID, UserID: author}

	if err := CanMutate(basket, line, author, nil, nil); err != nil {
		t.Fatalf("line author should mutate: %v", err)
	}
	if err := CanMutate(basket, line, owner, nil, nil); err != nil {
		t.Fatalf("basket creator should mutate any line: %v", err)
	}
	expectCode(t, CanMutate(basket, line, uuid.New(), nil, nil), pkgerrors.CodeForbidden)
}

func TestCanMutateAdminShare(t *testing.T) {
	owner := uuid.New()
	admin := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	line := &models.Stuff{ID: uuid.New(), BasketID: basket.ID, UserID: owner}
	share := &models.Share{BasketID: basket.ID, ToUserID: admin, IsAdmin: true, IsCanCRUD: true}

	if err := CanMutate(basket, line, admin, share, nil); err != nil {
		t.Fatalf("admin sharer should mutate: %v", err)
	}

	share.IsAdmin = false
	expectCode(t, CanMutate(basket, line, admin, share, nil), pkgerrors.CodeForbidden)
}

func TestCanMutateBoughtLine(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	line := &models.Stuff{ID: uuid.New(), BasketID: basket.ID, UserID: owner}
	bought := &models.PurchasedStuff{StuffID: line.ID, UserID: uuid.New()}

	// A line someone else already bought is locked for everyone but the buyer.
	expectCode(t, CanMutate(basket, line, owner, nil, bought), pkgerrors.CodeForbidden)

	ownBought := &models.PurchasedStuff{StuffID: line.ID, UserID: owner}
	if err := CanMutate(basket, line, owner, nil, ownBought); err != nil {
		t.Fatalf("buyer-owner should still mutate: %v", err)
	}
}

func TestCanMutateCompletedBasket(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner, IsComplete: true}
	line := &models.Stuff{ID: uuid.New(), BasketID: basket.ID, UserID: owner}

	expectCode(t, CanMutate(basket, line, owner, nil, nil), pkgerrors.CodeStateConflict)

	line.IsAdditional = true
	if err := CanMutate(basket, line, owner, nil, nil); err != nil {
		t.Fatalf("additional lines stay editable after completion: %v", err)
	}
}

func TestCanMutateOrderedFrozen(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner, IsOrdered: boolPtr(true)}
	line := &models.Stuff{ID: uuid.New(), BasketID: basket.ID, UserID: owner}
	expectCode(t, CanMutate(basket, line, owner, nil, nil), pkgerrors.CodeStateConflict)
}
