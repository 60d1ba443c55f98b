package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/api/middleware"
	"github.com/keranjangku/keranjangku-backend/api/responses"
	"github.com/keranjangku/keranjangku-backend/api/validators"
	"github.com/keranjangku/keranjangku-backend/internal/attachments"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

type createAttachmentRequest struct {
	StuffID   *uuid.UUID `json:"stuff_id,omitempty"`
	Name      string     `json:"name" validate:"required,max=255"`
	MimeType  string     `json:"mime_type" validate:"required,max=128"`
	SizeBytes int64      `json:"size_bytes" validate:"required,min=1"`
}

// CreateAttachment registers attachment metadata and returns a signed upload URL.
func CreateAttachment(svc attachments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attachments service unavailable"))
			return
		}

		basketID, err := validators.ParseUUIDParam(r, "basketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createAttachmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), attachments.CreateInput{
			ActorID:   middleware.UserIDFromContext(r.Context()),
			BasketID:  basketID,
			StuffID:   body.StuffID,
			Name:      body.Name,
			MimeType:  body.MimeType,
			SizeBytes: body.SizeBytes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListAttachments returns attachment metadata with download URLs.
func ListAttachments(svc attachments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attachments service unavailable"))
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

// DeleteAttachment removes attachment metadata and its stored object.
func DeleteAttachment(svc attachments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attachments service unavailable"))
			return
		}

		attachmentID, err := validators.ParseUUIDParam(r, "attachmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), attachmentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
