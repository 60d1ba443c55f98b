package stuff

import (
	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

// CanAdd decides whether the actor may add a line to the basket. Once the
// basket is complete a sharer needs the buy capability too (the additional
// item path); the creator may always append.
func CanAdd(basket *models.Basket, actorID uuid.UUID, share *models.Share) error {
	if basket == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
	}
	if basket.Ordered() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "basket already sent to assistant")
	}
	if basket.UserID == actorID {
		return nil
	}
	if share == nil || share.ToUserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "basket does not belong to user")
	}
	if !share.IsCanCRUD {
		return pkgerrors.New(pkgerrors.CodeForbidden, "share does not allow editing items")
	}
	if basket.IsComplete && !share.IsCanBuy {
		return pkgerrors.New(pkgerrors.CodeForbidden, "share does not allow buying")
	}
	return nil
}

// CanMutate decides whether the actor may update or delete a stuff line.
// purchased is the linked PurchasedStuff, nil when the line is unbought.
func CanMutate(basket *models.Basket, stuff *models.Stuff, actorID uuid.UUID, share *models.Share, purchased *models.PurchasedStuff) error {
	if basket == nil || stuff == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	if basket.Ordered() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "basket already sent to assistant")
	}
	if purchased != nil && purchased.UserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "item already bought by another user")
	}
	allowed := stuff.UserID == actorID ||
		basket.UserID == actorID ||
		(share != nil && share.ToUserID == actorID && share.IsAdmin)
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, "item does not belong to user")
	}
	if basket.IsComplete && !stuff.IsAdditional {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "basket already completed")
	}
	return nil
}
