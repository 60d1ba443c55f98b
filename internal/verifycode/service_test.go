package verifycode

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keranjangku/keranjangku-backend/pkg/config"
	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

type fakeRepository struct {
	row *models.VerifyCode

	created        *models.VerifyCode
	updates        map[string]any
	verifiedMsisdn string
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, code *models.VerifyCode) (*models.VerifyCode, error) {
	code.ID = uuid.New()
	f.created = code
	return code, nil
}

func (f *fakeRepository) FindByChallengeForUpdate(ctx context.Context, challenge string) (*models.VerifyCode, error) {
	if f.row == nil || f.row.Challenge != challenge {
		return nil, gorm.ErrRecordNotFound
	}
	return f.row, nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	f.updates = updates
	return nil
}

func (f *fakeRepository) MarkUserMsisdnVerified(ctx context.Context, msisdn string) error {
	f.verifiedMsisdn = msisdn
	return nil
}

func (f *fakeRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func strPtr(v string) *string { return &v }

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%s)", code, typed.Code(), typed.Message())
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	cfg := config.VerifyCodeConfig{TTL: 10 * time.Minute, CodeLength: 6}
	svc, err := NewService(repo, fakeTxRunner{}, cfg, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateIssuesChallenge(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo)

	dto, err := svc.Create(context.Background(), CreateInput{Msisdn: strPtr("+6281234567890")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.Challenge == "" {
		t.Fatal("expected a challenge handle")
	}
	if repo.created == nil || len(repo.created.Code) != 6 {
		t.Fatalf("expected a stored 6-digit code, got %+v", repo.created)
	}
	if !dto.ValidUntil.After(time.Now()) {
		t.Fatalf("expected future expiry, got %s", dto.ValidUntil)
	}
}

func TestCreateRequiresExactlyOneTarget(t *testing.T) {
	svc := newTestService(t, &fakeRepository{})

	_, err := svc.Create(context.Background(), CreateInput{})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(context.Background(), CreateInput{Msisdn: strPtr("+62812"), Email: strPtr("a@b.id")})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestValidateSpendsCode(t *testing.T) {
	repo := &fakeRepository{row: &models.VerifyCode{
		ID:         uuid.New(),
		Msisdn:     strPtr("+6281234567890"),
		Challenge:  "chl-1",
		Code:       "123456",
		ValidUntil: time.Now().Add(5 * time.Minute),
	}}
	svc := newTestService(t, repo)

	if err := svc.Validate(context.Background(), ValidateInput{Challenge: "chl-1", Code: "123456"}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if used, _ := repo.updates["is_used"].(bool); !used {
		t.Fatalf("expected code spent, got %v", repo.updates)
	}
	if repo.verifiedMsisdn != "+6281234567890" {
		t.Fatalf("expected msisdn flagged verified, got %q", repo.verifiedMsisdn)
	}
}

func TestValidateWrongCode(t *testing.T) {
	repo := &fakeRepository{row: &models.VerifyCode{
		ID:         uuid.New(),
		Challenge:  "chl-1",
		Code:       "123456",
		ValidUntil: time.Now().Add(5 * time.Minute),
	}}
	svc := newTestService(t, repo)

	err := svc.Validate(context.Background(), ValidateInput{Challenge: "chl-1", Code: "000000"})
	expectCode(t, err, pkgerrors.CodeValidation)
	if repo.updates != nil {
		t.Fatal("wrong code must not spend the challenge")
	}
}

func TestValidateUnknownChallenge(t *testing.T) {
	svc := newTestService(t, &fakeRepository{})
	err := svc.Validate(context.Background(), ValidateInput{Challenge: "missing", Code: "123456"})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestValidateReplayRejected(t *testing.T) {
	repo := &fakeRepository{row: &models.VerifyCode{
		ID:         uuid.New(),
		Challenge:  "chl-1",
		Code:       "123456",
		ValidUntil: time.Now().Add(5 * time.Minute),
		IsUsed:     true,
	}}
	svc := newTestService(t, repo)

	err := svc.Validate(context.Background(), ValidateInput{Challenge: "chl-1", Code: "123456"})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestValidateExpiredCode(t *testing.T) {
	repo := &fakeRepository{row: &models.VerifyCode{
		ID:         uuid.New(),
		Challenge:  "chl-1",
		Code:       "123456",
		ValidUntil: time.Now().Add(-time.Minute),
	}}
	svc := newTestService(t, repo)

	err := svc.Validate(context.Background(), ValidateInput{Challenge: "chl-1", Code: "123456"})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}
