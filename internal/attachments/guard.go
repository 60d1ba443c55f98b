package attachments

import (
	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

// CanView decides whether the actor may read attachments on the basket.
// Any collaborator with a grant can see what the group uploaded.
func CanView(basket *models.Basket, actorID uuid.UUID, share *models.Share) error {
	if basket == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
	}
	if basket.UserID == actorID {
		return nil
	}
	if share == nil || share.ToUserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "basket does not belong to user")
	}
	return nil
}

// CanAdd decides whether the actor may attach a file to the basket.
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
	if share == nil || share.ToUserID != actorID || !share.IsCanCRUD {
		return pkgerrors.New(pkgerrors.CodeForbidden, "user may not modify this basket")
	}
	return nil
}

// CanDelete decides whether the actor may remove an attachment. The uploader,
// the basket creator and admin shares may delete.
func CanDelete(basket *models.Basket, attachment *models.Attachment, actorID uuid.UUID, share *models.Share) error {
	if basket == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
	}
	if attachment == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
	}
	if basket.Ordered() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "basket already sent to assistant")
	}
	if attachment.UserID == actorID || basket.UserID == actorID {
		return nil
	}
	if share != nil && share.ToUserID == actorID && share.IsAdmin {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "attachment does not belong to user")
}
