package controllers

import (
	"net/http"

	"github.com/keranjangku/keranjangku-backend/api/responses"
	"github.com/keranjangku/keranjangku-backend/api/validators"
	"github.com/keranjangku/keranjangku-backend/internal/verifycode"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

type createVerifyCodeRequest struct {
	Msisdn *string `json:"msisdn,omitempty" validate:"omitempty,max=20"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
}

type validateVerifyCodeRequest struct {
	Challenge string `json:"challenge" validate:"required"`
	Code      string `json:"code" validate:"required,max=12"`
}

// CreateVerifyCode issues a one-time challenge code for an msisdn or email.
func CreateVerifyCode(svc verifycode.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verify code service unavailable"))
			return
		}

		var body createVerifyCodeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), verifycode.CreateInput{
			Msisdn: body.Msisdn,
			Email:  body.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ValidateVerifyCode spends a challenge code.
func ValidateVerifyCode(svc verifycode.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verify code service unavailable"))
			return
		}

		var body validateVerifyCodeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Validate(r.Context(), verifycode.ValidateInput{
			Challenge: body.Challenge,
			Code:      body.Code,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "verified"})
	}
}
