package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/api/middleware"
	"github.com/keranjangku/keranjangku-backend/api/responses"
	"github.com/keranjangku/keranjangku-backend/api/validators"
	"github.com/keranjangku/keranjangku-backend/internal/circles"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

type circleRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

type circleMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// CreateCircle opens a new contact group for the caller.
func CreateCircle(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circles service unavailable"))
			return
		}

		var body circleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), validators.SanitizeString(body.Name, 128))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListCircles returns the caller's contact groups with their members.
func ListCircles(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circles service unavailable"))
			return
		}

		result, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetCircle returns one contact group with its members.
func GetCircle(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circles service unavailable"))
			return
		}

		circleID, err := validators.ParseUUIDParam(r, "circleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()), circleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// RenameCircle changes a contact group's name.
func RenameCircle(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circles service unavailable"))
			return
		}

		circleID, err := validators.ParseUUIDParam(r, "circleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body circleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Rename(r.Context(), middleware.UserIDFromContext(r.Context()), circleID, validators.SanitizeString(body.Name, 128))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeleteCircle removes a contact group with its memberships.
func DeleteCircle(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circles service unavailable"))
			return
		}

		circleID, err := validators.ParseUUIDParam(r, "circleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), circleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AddCircleMember puts a user into the caller's contact group.
func AddCircleMember(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circles service unavailable"))
			return
		}

		circleID, err := validators.ParseUUIDParam(r, "circleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body circleMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddMember(r.Context(), circles.AddMemberInput{
			ActorID:  middleware.UserIDFromContext(r.Context()),
			CircleID: circleID,
			UserID:   body.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// RemoveCircleMember takes a user out of the caller's contact group.
func RemoveCircleMember(svc circles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circles service unavailable"))
			return
		}

		circleID, err := validators.ParseUUIDParam(r, "circleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveMember(r.Context(), middleware.UserIDFromContext(r.Context()), circleID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
