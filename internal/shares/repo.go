package shares

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, share *models.Share) (*models.Share, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Share, error)
	FindByBasketAndUser(ctx context.Context, basketID, toUserID uuid.UUID) (*models.Share, error)
	FindBasketForUpdate(ctx context.Context, basketID uuid.UUID) (*models.Basket, error)
	FindBasket(ctx context.Context, basketID uuid.UUID) (*models.Basket, error)
	FindUsername(ctx context.Context, userID uuid.UUID) (string, error)
	ListForBasket(ctx context.Context, basketID uuid.UUID) ([]ShareDTO, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	ContributionCount(ctx context.Context, basketID, userID uuid.UUID) (int64, error)
	DeleteContributions(ctx context.Context, basketID, userID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a shares repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, share *models.Share) (*models.Share, error) {
	if err := r.db.WithContext(ctx).Create(share).Error; err != nil {
		return nil, err
	}
	return share, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Share, error) {
	var share models.Share
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&share).Error
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *repository) FindByBasketAndUser(ctx context.Context, basketID, toUserID uuid.UUID) (*models.Share, error) {
	var share models.Share
	err := r.db.WithContext(ctx).
		Where("basket_id = ? AND to_user_id = ?", basketID, toUserID).
		First(&share).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &share, nil
}

func (r *repository) FindBasketForUpdate(ctx context.Context, basketID uuid.UUID) (*models.Basket, error) {
	var basket models.Basket
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", basketID).
		First(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

func (r *repository) FindBasket(ctx context.Context, basketID uuid.UUID) (*models.Basket, error) {
	var basket models.Basket
	err := r.db.WithContext(ctx).Where("id = ?", basketID).First(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

func (r *repository) FindUsername(ctx context.Context, userID uuid.UUID) (string, error) {
	var username string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("username").
		Where("id = ?", userID).
		Take(&username).Error
	if err != nil {
		return "", err
	}
	return username, nil
}

type shareRecord struct {
	models.Share
	ToUsername string `gorm:"column:to_username"`
}

func (r *repository) ListForBasket(ctx context.Context, basketID uuid.UUID) ([]ShareDTO, error) {
	var records []shareRecord
	err := r.db.WithContext(ctx).
		Table("shares AS s").
		Select("s.*, u.username AS to_username").
		Joins("JOIN users u ON u.id = s.to_user_id").
		Where("s.basket_id = ?", basketID).
		Order("s.sort ASC, s.created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	items := make([]ShareDTO, 0, len(records))
	for i := range records {
		items = append(items, ToDTO(&records[i].Share, records[i].ToUsername))
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Share{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Share{}).Error
}

// ContributionCount counts the stuff and purchased-stuff rows the user has
// written into the basket. A non-zero count blocks share deletion.
func (r *repository) ContributionCount(ctx context.Context, basketID, userID uuid.UUID) (int64, error) {
	var stuffCount int64
	err := r.db.WithContext(ctx).
		Model(&models.Stuff{}).
		Where("basket_id = ? AND user_id = ?", basketID, userID).
		Count(&stuffCount).Error
	if err != nil {
		return 0, err
	}
	var purchasedCount int64
	err = r.db.WithContext(ctx).
		Model(&models.PurchasedStuff{}).
		Where("basket_id = ? AND user_id = ?", basketID, userID).
		Count(&purchasedCount).Error
	if err != nil {
		return 0, err
	}
	return stuffCount + purchasedCount, nil
}

func (r *repository) DeleteContributions(ctx context.Context, basketID, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("basket_id = ? AND user_id = ?", basketID, userID).
		Delete(&models.PurchasedStuff{}).Error
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).
		Where("basket_id = ? AND user_id = ?", basketID, userID).
		Delete(&models.Purchased{}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("basket_id = ? AND user_id = ?", basketID, userID).
		Delete(&models.Stuff{}).Error
}
