package purchases

import (
	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

// CanPurchase allows the basket creator and anyone holding a buy grant to
// open a shopping session or record lines. An ordered basket is frozen.
func CanPurchase(basket *models.Basket, actorID uuid.UUID, share *models.Share) error {
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
	if !share.IsCanBuy {
		return pkgerrors.New(pkgerrors.CodeForbidden, "share does not allow buying")
	}
	return nil
}

// CanEditItem restricts purchase-line edits to the purchaser. item carries
// the persisted row, loaded before any incoming change is applied: a line
// that was already found stays locked once the basket is complete, unless it
// is an additional item.
func CanEditItem(basket *models.Basket, line *models.Stuff, item *models.PurchasedStuff, actorID uuid.UUID) error {
	if basket == nil || item == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "purchase item not found")
	}
	if item.UserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "purchase item does not belong to user")
	}
	if basket.IsComplete && line != nil && !line.IsAdditional && item.Found() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "found item locked after basket completion")
	}
	return nil
}
