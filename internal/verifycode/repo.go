package verifycode

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, code *models.VerifyCode) (*models.VerifyCode, error)
	FindByChallengeForUpdate(ctx context.Context, challenge string) (*models.VerifyCode, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	MarkUserMsisdnVerified(ctx context.Context, msisdn string) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a verify-code repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, code *models.VerifyCode) (*models.VerifyCode, error) {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return nil, err
	}
	return code, nil
}

// FindByChallengeForUpdate locks the row so concurrent attempts cannot
// double-spend the same code.
func (r *repository) FindByChallengeForUpdate(ctx context.Context, challenge string) (*models.VerifyCode, error) {
	var code models.VerifyCode
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("challenge = ?", challenge).
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.VerifyCode{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) MarkUserMsisdnVerified(ctx context.Context, msisdn string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("msisdn = ?", msisdn).
		Update("is_msisdn_verified", true).Error
}

func (r *repository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("valid_until < ?", cutoff).
		Delete(&models.VerifyCode{})
	return result.RowsAffected, result.Error
}
