package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keranjangku/keranjangku-backend/api/middleware"
	"github.com/keranjangku/keranjangku-backend/api/responses"
	"github.com/keranjangku/keranjangku-backend/api/validators"
	"github.com/keranjangku/keranjangku-backend/internal/purchases"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

type addPurchaseItemRequest struct {
	StuffID   uuid.UUID        `json:"stuff_id" validate:"required"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	Amount    int64            `json:"amount" validate:"min=0"`
	IsFound   *bool            `json:"is_found,omitempty"`
	Note      *string          `json:"note,omitempty" validate:"omitempty,max=1024"`
	Location  *string          `json:"location,omitempty" validate:"omitempty,max=128"`
	IsPrivate bool             `json:"is_private"`
}

type updatePurchaseItemRequest struct {
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	Amount    *int64           `json:"amount,omitempty"`
	IsFound   *bool            `json:"is_found,omitempty"`
	Note      *string          `json:"note,omitempty" validate:"omitempty,max=1024"`
	Location  *string          `json:"location,omitempty" validate:"omitempty,max=128"`
	IsPrivate *bool            `json:"is_private,omitempty"`
}

// StartPurchase opens (or returns) the caller's shopping session on a basket.
func StartPurchase(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		basketID, err := validators.ParseUUIDParam(r, "basketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Start(r.Context(), middleware.UserIDFromContext(r.Context()), basketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListPurchases returns the shopping sessions on a basket.
func ListPurchases(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		basketID, err := validators.ParseUUIDParam(r, "basketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()), basketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeletePurchase reverts a whole shopping session.
func DeletePurchase(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		purchasedID, err := validators.ParseUUIDParam(r, "purchasedId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), purchasedID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reverted"})
	}
}

// AddPurchaseItem records a bought item in the caller's session.
func AddPurchaseItem(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		purchasedID, err := validators.ParseUUIDParam(r, "purchasedId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addPurchaseItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddItem(r.Context(), purchases.AddItemInput{
			ActorID:     middleware.UserIDFromContext(r.Context()),
			PurchasedID: purchasedID,
			StuffID:     body.StuffID,
			Quantity:    body.Quantity,
			Amount:      body.Amount,
			IsFound:     body.IsFound,
			Note:        body.Note,
			Location:    body.Location,
			IsPrivate:   body.IsPrivate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// UpdatePurchaseItem applies a partial purchase-line update.
func UpdatePurchaseItem(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		itemID, err := validators.ParseUUIDParam(r, "purchasedStuffId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updatePurchaseItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateItem(r.Context(), purchases.UpdateItemInput{
			ActorID:   middleware.UserIDFromContext(r.Context()),
			ItemID:    itemID,
			Quantity:  body.Quantity,
			Amount:    body.Amount,
			IsFound:   body.IsFound,
			Note:      body.Note,
			Location:  body.Location,
			IsPrivate: body.IsPrivate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeletePurchaseItem reverts one bought item.
func DeletePurchaseItem(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		itemID, err := validators.ParseUUIDParam(r, "purchasedStuffId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), middleware.UserIDFromContext(r.Context()), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reverted"})
	}
}
