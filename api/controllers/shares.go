package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/api/middleware"
	"github.com/keranjangku/keranjangku-backend/api/responses"
	"github.com/keranjangku/keranjangku-backend/api/validators"
	"github.com/keranjangku/keranjangku-backend/internal/shares"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

type addShareRequest struct {
	ToUserID  uuid.UUID `json:"to_user_id" validate:"required"`
	IsAdmin   bool      `json:"is_admin"`
	IsCanCRUD bool      `json:"is_can_crud"`
	IsCanBuy  bool      `json:"is_can_buy"`
}

type updateShareRequest struct {
	Status    *string `json:"status,omitempty"`
	Sort      *int    `json:"sort,omitempty"`
	IsAdmin   *bool   `json:"is_admin,omitempty"`
	IsCanCRUD *bool   `json:"is_can_crud,omitempty"`
	IsCanBuy  *bool   `json:"is_can_buy,omitempty"`
}

// AddShare grants a user access to a basket.
func AddShare(svc shares.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shares service unavailable"))
			return
		}

		basketID, err := validators.ParseUUIDParam(r, "basketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addShareRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Add(r.Context(), shares.AddInput{
			ActorID:   middleware.UserIDFromContext(r.Context()),
			BasketID:  basketID,
			ToUserID:  body.ToUserID,
			IsAdmin:   body.IsAdmin,
			IsCanCRUD: body.IsCanCRUD,
			IsCanBuy:  body.IsCanBuy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListShares returns the grants on a basket.
func ListShares(svc shares.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shares service unavailable"))
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

// UpdateShare answers an invite or adjusts capabilities.
func UpdateShare(svc shares.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shares service unavailable"))
			return
		}

		shareID, err := validators.ParseUUIDParam(r, "shareId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateShareRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := shares.UpdateInput{
			ActorID:   middleware.UserIDFromContext(r.Context()),
			ShareID:   shareID,
			Sort:      body.Sort,
			IsAdmin:   body.IsAdmin,
			IsCanCRUD: body.IsCanCRUD,
			IsCanBuy:  body.IsCanBuy,
		}
		if body.Status != nil {
			status, err := enums.ParseGeneralStatus(*body.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		result, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeleteShare revokes a grant.
func DeleteShare(svc shares.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shares service unavailable"))
			return
		}

		shareID, err := validators.ParseUUIDParam(r, "shareId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), shareID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
