package baskets

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/pagination"
)

// Repository defines persistence operations for baskets and their grants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, basket *models.Basket) (*models.Basket, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Basket, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Basket, error)
	FindShare(ctx context.Context, basketID, userID uuid.UUID) (*models.Share, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*BasketPageDTO, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateSorts(ctx context.Context, userID uuid.UUID, sorts map[uuid.UUID]int) error
	Delete(ctx context.Context, id uuid.UUID) error
	MaxSort(ctx context.Context, userID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a baskets repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, basket *models.Basket) (*models.Basket, error) {
	if err := r.db.WithContext(ctx).Create(basket).Error; err != nil {
		return nil, err
	}
	return basket, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Basket, error) {
	var basket models.Basket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Basket, error) {
	var basket models.Basket
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&basket).Error
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

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*BasketPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Table("baskets b").
		Select("b.*, (b.user_id <> ?) AS is_shared", userID).
		Where("b.user_id = ? OR EXISTS (SELECT 1 FROM shares s WHERE s.basket_id = b.id AND s.to_user_id = ?)", userID, userID)

	if decodedCursor != nil {
		query = query.Where("(b.created_at < ?) OR (b.created_at = ? AND b.id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	query = query.Order("b.created_at DESC").Order("b.id DESC").Limit(limitWithBuffer)

	var records []basketRecord
	if err := query.Scan(&records).Error; err != nil {
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

	items := make([]BasketDTO, 0, len(resultRows))
	for _, record := range resultRows {
		items = append(items, record.toDTO())
	}

	return &BasketPageDTO{Items: items, NextCursor: nextCursor}, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Basket{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateSorts(ctx context.Context, userID uuid.UUID, sorts map[uuid.UUID]int) error {
	for id, sort := range sorts {
		err := r.db.WithContext(ctx).
			Model(&models.Basket{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("sort", sort).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Basket{}).Error
}

func (r *repository) MaxSort(ctx context.Context, userID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.Basket{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(sort), 0)").
		Scan(&max).Error
	return max, err
}

type basketRecord struct {
	models.Basket
	IsShared bool `gorm:"column:is_shared"`
}

func (r basketRecord) toDTO() BasketDTO {
	return BasketDTO{
		ID:            r.ID,
		UserID:        r.UserID,
		CompletedByID: r.CompletedByID,
		Name:          r.Name,
		Note:          r.Note,
		Sort:          r.Sort,
		CompleteSort:  r.CompleteSort,
		CompletedAt:   r.CompletedAt,
		IsComplete:    r.IsComplete,
		IsPurchased:   r.IsPurchased,
		IsOrdered:     r.IsOrdered,
		IsShared:      r.IsShared,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToDTO converts a bare model row.
func ToDTO(b *models.Basket, shared bool) BasketDTO {
	return basketRecord{Basket: *b, IsShared: shared}.toDTO()
}
