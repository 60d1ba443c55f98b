package baskets

import (
	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

// UpdateFields names the basket columns an update request wants to touch.
// Guards inspect it for the field-level restriction on shared users.
type UpdateFields struct {
	Name       bool
	Note       bool
	IsComplete bool
	Sort       bool
}

func (f UpdateFields) onlyCompletion() bool {
	return f.IsComplete && !f.Name && !f.Note && !f.Sort
}

// CanUpdate decides whether the actor may apply the requested fields to the
// basket. share is the actor's grant on this basket, nil when none exists.
// fromSort marks the internal reordering path, which is exempt from the
// ordered-basket freeze.
func CanUpdate(basket *models.Basket, actorID uuid.UUID, share *models.Share, fields UpdateFields, fromSort bool) error {
	if basket == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
	}
	if basket.Ordered() && !fromSort {
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
	if !fields.onlyCompletion() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "shared user may only change completion")
	}
	return nil
}

// CanDelete restricts deletion to the creator, and never after escalation.
func CanDelete(basket *models.Basket, actorID uuid.UUID) error {
	if basket == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
	}
	if basket.UserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator may delete a basket")
	}
	if basket.Ordered() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "basket already sent to assistant")
	}
	return nil
}

// CanView allows the creator and anyone holding a share.
func CanView(basket *models.Basket, actorID uuid.UUID, share *models.Share) error {
	if basket == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
	}
	if basket.UserID == actorID {
		return nil
	}
	if share != nil && share.ToUserID == actorID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "basket does not belong to user")
}
