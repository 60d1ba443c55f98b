package shares

import (
	"testing"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

func TestCanAdd(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}

	if err := CanAdd(basket, owner, uuid.New()); err != nil {
		t.Fatalf("creator grant: %v", err)
	}
	expectCode(t, CanAdd(basket, uuid.New(), uuid.New()), pkgerrors.CodeForbidden)
	expectCode(t, CanAdd(basket, owner, owner), pkgerrors.CodeValidation)
	expectCode(t, CanAdd(nil, owner, uuid.New()), pkgerrors.CodeNotFound)
}

func TestCanUpdateCreatorUnrestricted(t *testing.T) {
	owner := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	share := &models.Share{BasketID: basket.ID, ToUserID: uuid.New(), Status: enums.StatusAccept}

	if err := CanUpdate(basket, share, owner, UpdateFields{IsAdmin: true, Sort: true}); err != nil {
		t.Fatalf("creator update: %v", err)
	}
}

func TestCanUpdateGranteeStatusOnly(t *testing.T) {
	grantee := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: uuid.New()}
	share := &models.Share{BasketID: basket.ID, ToUserID: grantee, Status: enums.StatusWaiting}

	if err := CanUpdate(basket, share, grantee, UpdateFields{Status: true}); err != nil {
		t.Fatalf("grantee answer: %v", err)
	}
	expectCode(t, CanUpdate(basket, share, grantee, UpdateFields{Status: true, Sort: true}), pkgerrors.CodeForbidden)
	expectCode(t, CanUpdate(basket, share, uuid.New(), UpdateFields{Status: true}), pkgerrors.CodeForbidden)

	share.Status = enums.StatusAccept
	expectCode(t, CanUpdate(basket, share, grantee, UpdateFields{Status: true}), pkgerrors.CodeStateConflict)
}

func TestCanDeleteShare(t *testing.T) {
	owner := uuid.New()
	grantee := uuid.New()
	basket := &models.Basket{ID: uuid.New(), UserID: owner}
	share := &models.Share{BasketID: basket.ID, ToUserID: grantee}

	if err := CanDelete(basket, share, owner); err != nil {
		t.Fatalf("creator revoke: %v", err)
	}
	if err := CanDelete(basket, share, grantee); err != nil {
		t.Fatalf("grantee leave: %v", err)
	}
	expectCode(t, CanDelete(basket, share, uuid.New()), pkgerrors.CodeForbidden)
	expectCode(t, CanDelete(basket, nil, owner), pkgerrors.CodeNotFound)
}
