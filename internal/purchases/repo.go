package purchases

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindBasketForUpdate(ctx context.Context, basketID uuid.UUID) (*models.Basket, error)
	FindBasket(ctx context.Context, basketID uuid.UUID) (*models.Basket, error)
	FindShare(ctx context.Context, basketID, userID uuid.UUID) (*models.Share, error)
	UpdateBasket(ctx context.Context, basketID uuid.UUID, updates map[string]any) error

	CreatePurchased(ctx context.Context, purchased *models.Purchased) (*models.Purchased, error)
	FindPurchased(ctx context.Context, basketID, userID uuid.UUID) (*models.Purchased, error)
	FindPurchasedByID(ctx context.Context, id uuid.UUID) (*models.Purchased, error)
	DeletePurchased(ctx context.Context, id uuid.UUID) error
	CountPurchasedForBasket(ctx context.Context, basketID uuid.UUID) (int64, error)
	ListSessionsForBasket(ctx context.Context, basketID uuid.UUID) ([]models.Purchased, error)
	ListItemsForSessions(ctx context.Context, purchasedIDs []uuid.UUID) ([]models.PurchasedStuff, error)

	CreateItem(ctx context.Context, item *models.PurchasedStuff) (*models.PurchasedStuff, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.PurchasedStuff, error)
	FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.PurchasedStuff, error)
	FindItemByStuffID(ctx context.Context, stuffID uuid.UUID) (*models.PurchasedStuff, error)
	UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	DeleteItemsForSession(ctx context.Context, purchasedID uuid.UUID) ([]models.PurchasedStuff, error)

	FindStuff(ctx context.Context, stuffID uuid.UUID) (*models.Stuff, error)
	UpdateStuff(ctx context.Context, stuffID uuid.UUID, updates map[string]any) error
	DeleteStuff(ctx context.Context, stuffID uuid.UUID) error

	UpsertProductRate(ctx context.Context, rate *models.ProductRate) error
	SyncLatestRate(ctx context.Context, purchasedStuffID uuid.UUID, updates map[string]any) error
	FindProductByName(ctx context.Context, name string) (*models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a purchases repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
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

func (r *repository) UpdateBasket(ctx context.Context, basketID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Basket{}).
		Where("id = ?", basketID).
		Updates(updates).Error
}

func (r *repository) CreatePurchased(ctx context.Context, purchased *models.Purchased) (*models.Purchased, error) {
	if err := r.db.WithContext(ctx).Create(purchased).Error; err != nil {
		return nil, err
	}
	return purchased, nil
}

func (r *repository) FindPurchased(ctx context.Context, basketID, userID uuid.UUID) (*models.Purchased, error) {
	var purchased models.Purchased
	err := r.db.WithContext(ctx).
		Where("basket_id = ? AND user_id = ?", basketID, userID).
		First(&purchased).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &purchased, nil
}

func (r *repository) FindPurchasedByID(ctx context.Context, id uuid.UUID) (*models.Purchased, error) {
	var purchased models.Purchased
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&purchased).Error
	if err != nil {
		return nil, err
	}
	return &purchased, nil
}

func (r *repository) DeletePurchased(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Purchased{}).Error
}

func (r *repository) CountPurchasedForBasket(ctx context.Context, basketID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Purchased{}).
		Where("basket_id = ?", basketID).
		Count(&count).Error
	return count, err
}

func (r *repository) ListSessionsForBasket(ctx context.Context, basketID uuid.UUID) ([]models.Purchased, error) {
	var sessions []models.Purchased
	err := r.db.WithContext(ctx).
		Where("basket_id = ?", basketID).
		Order("created_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *repository) ListItemsForSessions(ctx context.Context, purchasedIDs []uuid.UUID) ([]models.PurchasedStuff, error) {
	if len(purchasedIDs) == 0 {
		return nil, nil
	}
	var items []models.PurchasedStuff
	err := r.db.WithContext(ctx).
		Where("purchased_id IN ?", purchasedIDs).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) CreateItem(ctx context.Context, item *models.PurchasedStuff) (*models.PurchasedStuff, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.PurchasedStuff, error) {
	var item models.PurchasedStuff
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.PurchasedStuff, error) {
	var item models.PurchasedStuff
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemByStuffID(ctx context.Context, stuffID uuid.UUID) (*models.PurchasedStuff, error) {
	var item models.PurchasedStuff
	err := r.db.WithContext(ctx).
		Where("stuff_id = ?", stuffID).
		First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchasedStuff{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PurchasedStuff{}).Error
}

// DeleteItemsForSession removes every line of the session and returns the
// deleted rows so the caller can reset the underlying stuff.
func (r *repository) DeleteItemsForSession(ctx context.Context, purchasedID uuid.UUID) ([]models.PurchasedStuff, error) {
	var items []models.PurchasedStuff
	err := r.db.WithContext(ctx).
		Where("purchased_id = ?", purchasedID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	err = r.db.WithContext(ctx).
		Where("purchased_id = ?", purchasedID).
		Delete(&models.PurchasedStuff{}).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindStuff(ctx context.Context, stuffID uuid.UUID) (*models.Stuff, error) {
	var stuff models.Stuff
	err := r.db.WithContext(ctx).Where("id = ?", stuffID).First(&stuff).Error
	if err != nil {
		return nil, err
	}
	return &stuff, nil
}

func (r *repository) UpdateStuff(ctx context.Context, stuffID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Stuff{}).
		Where("id = ?", stuffID).
		Updates(updates).Error
}

func (r *repository) DeleteStuff(ctx context.Context, stuffID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", stuffID).Delete(&models.Stuff{}).Error
}

// UpsertProductRate records a market-price observation unless an identical
// one already exists for the purchaser.
func (r *repository) UpsertProductRate(ctx context.Context, rate *models.ProductRate) error {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ? AND price = ? AND quantity = ? AND metric = ?",
			rate.UserID, rate.Name, rate.Price, rate.Quantity, rate.Metric)
	if rate.Location != nil {
		query = query.Where("location = ?", *rate.Location)
	} else {
		query = query.Where("location IS NULL")
	}
	var existing models.ProductRate
	err := query.First(&existing).Error
	if err == nil {
		*rate = existing
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.WithContext(ctx).Create(rate).Error
}

// SyncLatestRate pushes price/location/privacy changes onto the most recent
// observation linked to the purchase line.
func (r *repository) SyncLatestRate(ctx context.Context, purchasedStuffID uuid.UUID, updates map[string]any) error {
	var rate models.ProductRate
	err := r.db.WithContext(ctx).
		Where("purchased_stuff_id = ?", purchasedStuffID).
		Order("created_at DESC").
		First(&rate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.ProductRate{}).
		Where("id = ?", rate.ID).
		Updates(updates).Error
}

func (r *repository) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}
