package stuff

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/pagination"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, stuff *models.Stuff) (*models.Stuff, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Stuff, error)
	FindBasketForUpdate(ctx context.Context, basketID uuid.UUID) (*models.Basket, error)
	FindBasket(ctx context.Context, basketID uuid.UUID) (*models.Basket, error)
	FindShare(ctx context.Context, basketID, userID uuid.UUID) (*models.Share, error)
	FindPurchasedStuff(ctx context.Context, stuffID uuid.UUID) (*models.PurchasedStuff, error)
	ListForBasket(ctx context.Context, basketID uuid.UUID, params pagination.Params) (*StuffPageDTO, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	MaxSort(ctx context.Context, basketID uuid.UUID) (int, error)
	GetOrCreateProduct(ctx context.Context, userID uuid.UUID, name string) (*models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stuff repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, stuff *models.Stuff) (*models.Stuff, error) {
	if err := r.db.WithContext(ctx).Create(stuff).Error; err != nil {
		return nil, err
	}
	return stuff, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Stuff, error) {
	var stuff models.Stuff
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&stuff).Error
	if err != nil {
		return nil, err
	}
	return &stuff, nil
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

func (r *repository) FindShare(ctx context.Context, basketID, userID uuid.UUID) (*models.Share, error) {
	var share models.Share
	err := r.db.WithContext(ctx).
		Where("basket_id = ? AND to_user_id = ?", basketID, userID).
		First(&share).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &share, nil
}

func (r *repository) FindPurchasedStuff(ctx context.Context, stuffID uuid.UUID) (*models.PurchasedStuff, error) {
	var purchased models.PurchasedStuff
	err := r.db.WithContext(ctx).
		Where("stuff_id = ?", stuffID).
		First(&purchased).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &purchased, nil
}

func (r *repository) ListForBasket(ctx context.Context, basketID uuid.UUID, params pagination.Params) (*StuffPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Stuff{}).
		Where("basket_id = ?", basketID)

	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var records []models.Stuff
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > normalizedLimit {
		resultRows = records[:normalizedLimit]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]StuffDTO, 0, len(resultRows))
	for i := range resultRows {
		items = append(items, ToDTO(&resultRows[i]))
	}

	return &StuffPageDTO{Items: items, NextCursor: nextCursor}, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Stuff{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Stuff{}).Error
}

func (r *repository) MaxSort(ctx context.Context, basketID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.Stuff{}).
		Where("basket_id = ?", basketID).
		Select("COALESCE(MAX(sort), 0)").
		Scan(&max).Error
	return max, err
}

// GetOrCreateProduct resolves the catalog row for a stuff name, creating it
// on first use.
func (r *repository) GetOrCreateProduct(ctx context.Context, userID uuid.UUID, name string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&product).Error
	if err == nil {
		return &product, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	product = models.Product{
		UserID:    userID,
		Name:      name,
		IsEnabled: true,
	}
	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
