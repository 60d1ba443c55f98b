package verifycode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/keranjangku/keranjangku-backend/pkg/config"
	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
	"github.com/keranjangku/keranjangku-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput requests a one-time code against an msisdn or email.
type CreateInput struct {
	Msisdn *string
	Email  *string
}

// ChallengeDTO hands the caller the handle to validate against. The code
// itself travels out of band.
type ChallengeDTO struct {
	Challenge  string    `json:"challenge"`
	ValidUntil time.Time `json:"valid_until"`
}

// ValidateInput spends a code.
type ValidateInput struct {
	Challenge string
	Code      string
}

// Service defines one-time-code operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ChallengeDTO, error)
	Validate(ctx context.Context, input ValidateInput) error
}

type service struct {
	repo Repository
	tx   txRunner
	cfg  config.VerifyCodeConfig
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds a verify-code service with the required dependencies.
func NewService(repo Repository, tx txRunner, cfg config.VerifyCodeConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("verify-code repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, cfg: cfg, logg: logg, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ChallengeDTO, error) {
	hasMsisdn := input.Msisdn != nil && strings.TrimSpace(*input.Msisdn) != ""
	hasEmail := input.Email != nil && strings.TrimSpace(*input.Email) != ""
	if hasMsisdn == hasEmail {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of msisdn or email required")
	}

	challenge, err := security.GenerateChallenge()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate challenge")
	}
	code, err := security.GenerateNumericCode(s.cfg.CodeLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}

	row := &models.VerifyCode{
		Msisdn:     input.Msisdn,
		Email:      input.Email,
		Challenge:  challenge,
		Code:       code,
		ValidUntil: s.now().Add(s.cfg.TTL),
	}
	if _, err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store verify code")
	}

	// Dispatch (SMS/email) happens out of process; the challenge is all the
	// API caller ever sees.
	s.logg.Info(s.logg.WithField(ctx, "challenge", challenge), "verify code issued")

	return &ChallengeDTO{Challenge: challenge, ValidUntil: row.ValidUntil}, nil
}

func (s *service) Validate(ctx context.Context, input ValidateInput) error {
	if strings.TrimSpace(input.Challenge) == "" || strings.TrimSpace(input.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "challenge and code required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByChallengeForUpdate(ctx, input.Challenge)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "challenge not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verify code")
		}
		if row.IsUsed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "code already used")
		}
		if s.now().After(row.ValidUntil) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "code expired")
		}
		if row.Code != input.Code {
			return pkgerrors.New(pkgerrors.CodeValidation, "incorrect code")
		}

		now := s.now()
		updates := map[string]any{
			"is_used":     true,
			"is_verified": true,
			"verified_at": now,
		}
		if err := repo.Update(ctx, row.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "spend verify code")
		}
		if row.Msisdn != nil {
			if err := repo.MarkUserMsisdnVerified(ctx, *row.Msisdn); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flag msisdn verified")
			}
		}
		return nil
	})
}
