package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/api/middleware"
	"github.com/keranjangku/keranjangku-backend/api/responses"
	"github.com/keranjangku/keranjangku-backend/api/validators"
	"github.com/keranjangku/keranjangku-backend/internal/baskets"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

type createBasketRequest struct {
	Name string  `json:"name" validate:"required,max=128"`
	Note *string `json:"note,omitempty" validate:"omitempty,max=1024"`
}

type updateBasketRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=128"`
	Note       *string `json:"note,omitempty" validate:"omitempty,max=1024"`
	IsComplete *bool   `json:"is_complete,omitempty"`
}

type sortBasketsRequest struct {
	Sorts map[string]int `json:"sorts" validate:"required,min=1"`
}

// CreateBasket creates a shopping list for the caller.
func CreateBasket(svc baskets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "baskets service unavailable"))
			return
		}

		var body createBasketRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), baskets.CreateInput{
			ActorID: middleware.UserIDFromContext(r.Context()),
			Name:    validators.SanitizeString(body.Name, 128),
			Note:    body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListBaskets returns the caller's own and shared baskets.
func ListBaskets(svc baskets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "baskets service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetBasket returns one basket the caller can see.
func GetBasket(svc baskets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "baskets service unavailable"))
			return
		}

		basketID, err := validators.ParseUUIDParam(r, "basketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()), basketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// UpdateBasket applies a partial update.
func UpdateBasket(svc baskets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "baskets service unavailable"))
			return
		}

		basketID, err := validators.ParseUUIDParam(r, "basketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateBasketRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Update(r.Context(), baskets.UpdateInput{
			ActorID:    middleware.UserIDFromContext(r.Context()),
			BasketID:   basketID,
			Name:       validators.SanitizeStringPtr(body.Name, 128),
			Note:       body.Note,
			IsComplete: body.IsComplete,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeleteBasket removes a basket the caller created.
func DeleteBasket(svc baskets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "baskets service unavailable"))
			return
		}

		basketID, err := validators.ParseUUIDParam(r, "basketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), basketID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SortBaskets reorders the caller's basket list.
func SortBaskets(svc baskets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "baskets service unavailable"))
			return
		}

		var body sortBasketsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sorts := make(map[uuid.UUID]int, len(body.Sorts))
		for raw, sort := range body.Sorts {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sort keys must be basket ids"))
				return
			}
			sorts[id] = sort
		}

		if err := svc.Sort(r.Context(), baskets.SortInput{
			ActorID: middleware.UserIDFromContext(r.Context()),
			Sorts:   sorts,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sorted"})
	}
}
