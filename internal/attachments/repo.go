package attachments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
)

// Repository defines persistence operations for attachment metadata.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	ListForBasket(ctx context.Context, basketID uuid.UUID) ([]models.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindBasket(ctx context.Context, basketID uuid.UUID) (*models.Basket, error)
	FindShare(ctx context.Context, basketID, userID uuid.UUID) (*models.Share, error)
	StuffInBasket(ctx context.Context, basketID, stuffID uuid.UUID) (bool, error)
	FindStuff(ctx context.Context, stuffID uuid.UUID) (*models.Stuff, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an attachments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error) {
	if err := r.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return nil, err
	}
	return attachment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	var attachment models.Attachment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *repository) ListForBasket(ctx context.Context, basketID uuid.UUID) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := r.db.WithContext(ctx).
		Where("basket_id = ? OR stuff_id IN (?)",
			basketID,
			r.db.Model(&models.Stuff{}).Select("id").Where("basket_id = ?", basketID),
		).
		Order("created_at ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Attachment{}).Error
}

func (r *repository) FindBasket(ctx context.Context, basketID uuid.UUID) (*models.Basket, error) {
	var basket models.Basket
	err := r.db.WithContext(ctx).Where("id = ?", basketID).First(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

func (r *repository) FindShare(ctx context.Context, basketID, userID uuid.UUID) (*models.Share, error) {
	var share models.Share
	err := r.db.WithContext(ctx).
		Where("basket_id = ? AND to_user_id = ?", basketID, userID).
		First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *repository) StuffInBasket(ctx context.Context, basketID, stuffID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Stuff{}).
		Where("id = ? AND basket_id = ?", stuffID, basketID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindStuff(ctx context.Context, stuffID uuid.UUID) (*models.Stuff, error) {
	var line models.Stuff
	err := r.db.WithContext(ctx).Where("id = ?", stuffID).First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}
