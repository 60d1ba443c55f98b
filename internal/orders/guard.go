package orders

import (
	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

// CanCreate allows only the basket creator to escalate, and only while the
// basket is still untouched by shopping.
func CanCreate(basket *models.Basket, actorID uuid.UUID) error {
	if basket == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
	}
	if basket.UserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator may order a basket")
	}
	if basket.Ordered() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "basket already sent to assistant")
	}
	if basket.IsPurchased {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "basket already has purchases")
	}
	return nil
}

// CanDelete rejects withdrawal once fulfillment has begun. hasAssign reports
// whether an assistant is already bound to the order.
func CanDelete(order *models.Order, actorID uuid.UUID, hasAssign bool) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.CustomerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	if order.IsOngoing || hasAssign {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order already being fulfilled")
	}
	return nil
}

// CanTransition validates the order status machine:
// waiting -> accept -> reject | done.
func CanTransition(from, to enums.GeneralStatus) error {
	allowed := map[enums.GeneralStatus][]enums.GeneralStatus{
		enums.StatusWaiting: {enums.StatusAccept, enums.StatusReject},
		enums.StatusAccept:  {enums.StatusReject, enums.StatusDone},
	}
	for _, candidate := range allowed[from] {
		if candidate == to {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		"order cannot move from "+from.String()+" to "+to.String())
}

// IsStaff reports whether the role may manage assignments.
func IsStaff(role enums.UserRole) bool {
	return role == enums.UserRoleStaff
}
