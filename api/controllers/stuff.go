package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/keranjangku/keranjangku-backend/api/middleware"
	"github.com/keranjangku/keranjangku-backend/api/responses"
	"github.com/keranjangku/keranjangku-backend/api/validators"
	"github.com/keranjangku/keranjangku-backend/internal/stuff"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

type addStuffRequest struct {
	Name     string          `json:"name" validate:"required,max=128"`
	Quantity decimal.Decimal `json:"quantity"`
	Metric   string          `json:"metric,omitempty"`
	Note     *string         `json:"note,omitempty" validate:"omitempty,max=1024"`
	Location *string         `json:"location,omitempty" validate:"omitempty,max=128"`
}

type updateStuffRequest struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,max=128"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Metric   *string          `json:"metric,omitempty"`
	Note     *string          `json:"note,omitempty" validate:"omitempty,max=1024"`
	Location *string          `json:"location,omitempty" validate:"omitempty,max=128"`
	Sort     *int             `json:"sort,omitempty"`
	IsDone   *bool            `json:"is_done,omitempty"`
}

// AddStuff appends a line to a basket.
func AddStuff(svc stuff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stuff service unavailable"))
			return
		}

		basketID, err := validators.ParseUUIDParam(r, "basketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addStuffRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		metric := enums.MetricUnit
		if body.Metric != "" {
			parsed, err := enums.ParseMetric(body.Metric)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid metric"))
				return
			}
			metric = parsed
		}

		result, err := svc.Add(r.Context(), stuff.AddInput{
			ActorID:  middleware.UserIDFromContext(r.Context()),
			BasketID: basketID,
			Name:     validators.SanitizeString(body.Name, 128),
			Quantity: body.Quantity,
			Metric:   metric,
			Note:     body.Note,
			Location: body.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListStuff returns the lines of a basket.
func ListStuff(svc stuff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stuff service unavailable"))
			return
		}

		basketID, err := validators.ParseUUIDParam(r, "basketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()), basketID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// UpdateStuff applies a partial line update.
func UpdateStuff(svc stuff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stuff service unavailable"))
			return
		}

		stuffID, err := validators.ParseUUIDParam(r, "stuffId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateStuffRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := stuff.UpdateInput{
			ActorID:  middleware.UserIDFromContext(r.Context()),
			StuffID:  stuffID,
			Name:     validators.SanitizeStringPtr(body.Name, 128),
			Quantity: body.Quantity,
			Note:     body.Note,
			Location: body.Location,
			Sort:     body.Sort,
			IsDone:   body.IsDone,
		}
		if body.Metric != nil {
			metric, err := enums.ParseMetric(*body.Metric)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid metric"))
				return
			}
			input.Metric = &metric
		}

		result, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeleteStuff removes a line.
func DeleteStuff(svc stuff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stuff service unavailable"))
			return
		}

		stuffID, err := validators.ParseUUIDParam(r, "stuffId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), stuffID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
