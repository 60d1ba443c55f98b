package shares

import (
	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

// UpdateFields names the share columns an update request wants to touch.
type UpdateFields struct {
	Status    bool
	Sort      bool
	IsAdmin   bool
	IsCanCRUD bool
	IsCanBuy  bool
}

func (f UpdateFields) onlyStatus() bool {
	return f.Status && !f.Sort && !f.IsAdmin && !f.IsCanCRUD && !f.IsCanBuy
}

// CanAdd allows only the basket creator to grant access, and never to
// themself.
func CanAdd(basket *models.Basket, actorID, toUserID uuid.UUID) error {
	if basket == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
	}
	if basket.UserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator may share a basket")
	}
	if toUserID == actorID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot share a basket to yourself")
	}
	return nil
}

// CanUpdate lets the creator change any field; the grantee may only answer
// the invite, and only while it is still waiting.
func CanUpdate(basket *models.Basket, share *models.Share, actorID uuid.UUID, fields UpdateFields) error {
	if basket == nil || share == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "share not found")
	}
	if basket.UserID == actorID {
		return nil
	}
	if share.ToUserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "share does not belong to user")
	}
	if share.Status != enums.StatusWaiting {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "share invite already answered")
	}
	if !fields.onlyStatus() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "shared user may only change status")
	}
	return nil
}

// CanDelete allows the creator to revoke a grant and the grantee to leave.
// The contribution rule is enforced separately by the service, which has to
// count the grantee's rows.
func CanDelete(basket *models.Basket, share *models.Share, actorID uuid.UUID) error {
	if basket == nil || share == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "share not found")
	}
	if basket.UserID == actorID || share.ToUserID == actorID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "share does not belong to user")
}
