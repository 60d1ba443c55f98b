package orders

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

	FindBasketForUpdate(ctx context.Context, basketID uuid.UUID) (*models.Basket, error)
	UpdateBasket(ctx context.Context, basketID uuid.UUID, updates map[string]any) error
	ListStuffForBasket(ctx context.Context, basketID uuid.UUID) ([]models.Stuff, error)
	UpdateStuff(ctx context.Context, stuffID uuid.UUID, updates map[string]any) error

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByBasket(ctx context.Context, basketID uuid.UUID) (*models.Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderPageDTO, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateLines(ctx context.Context, lines []models.OrderLine) error
	ListLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)
	FindLineByID(ctx context.Context, id uuid.UUID) (*models.OrderLine, error)
	UpdateLine(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteLines(ctx context.Context, orderID uuid.UUID) error

	CreateAssign(ctx context.Context, assign *models.Assign) (*models.Assign, error)
	FindAssignByID(ctx context.Context, id uuid.UUID) (*models.Assign, error)
	FindAssignByOrder(ctx context.Context, orderID uuid.UUID) (*models.Assign, error)
	ListAssignsForAssistant(ctx context.Context, assistantID uuid.UUID) ([]models.Assign, error)
	UpdateAssign(ctx context.Context, id uuid.UUID, updates map[string]any) error

	FindPurchased(ctx context.Context, basketID, userID uuid.UUID) (*models.Purchased, error)
	CreatePurchased(ctx context.Context, purchased *models.Purchased) (*models.Purchased, error)
	UpdatePurchased(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindPurchasedStuffByStuffID(ctx context.Context, stuffID uuid.UUID) (*models.PurchasedStuff, error)
	CreatePurchasedStuff(ctx context.Context, item *models.PurchasedStuff) error
	UpdatePurchasedStuff(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
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

func (r *repository) UpdateBasket(ctx context.Context, basketID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Basket{}).
		Where("id = ?", basketID).
		Updates(updates).Error
}

func (r *repository) ListStuffForBasket(ctx context.Context, basketID uuid.UUID) ([]models.Stuff, error) {
	var stuff []models.Stuff
	err := r.db.WithContext(ctx).
		Where("basket_id = ?", basketID).
		Order("sort ASC, created_at ASC").
		Find(&stuff).Error
	return stuff, err
}

func (r *repository) UpdateStuff(ctx context.Context, stuffID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Stuff{}).
		Where("id = ?", stuffID).
		Updates(updates).Error
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByBasket(ctx context.Context, basketID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("basket_id = ?", basketID).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("customer_id = ?", customerID)

	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var records []models.Order
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

	items := make([]OrderDTO, 0, len(resultRows))
	for i := range resultRows {
		items = append(items, ToOrderDTO(&resultRows[i], nil))
	}

	return &OrderPageDTO{Items: items, NextCursor: nextCursor}, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{}).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) ListLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *repository) FindLineByID(ctx context.Context, id uuid.UUID) (*models.OrderLine, error) {
	var line models.OrderLine
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) UpdateLine(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteLines(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderLine{}).Error
}

func (r *repository) CreateAssign(ctx context.Context, assign *models.Assign) (*models.Assign, error) {
	if err := r.db.WithContext(ctx).Create(assign).Error; err != nil {
		return nil, err
	}
	return assign, nil
}

func (r *repository) FindAssignByID(ctx context.Context, id uuid.UUID) (*models.Assign, error) {
	var assign models.Assign
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&assign).Error
	if err != nil {
		return nil, err
	}
	return &assign, nil
}

func (r *repository) FindAssignByOrder(ctx context.Context, orderID uuid.UUID) (*models.Assign, error) {
	var assign models.Assign
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&assign).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &assign, nil
}

func (r *repository) ListAssignsForAssistant(ctx context.Context, assistantID uuid.UUID) ([]models.Assign, error) {
	var assigns []models.Assign
	err := r.db.WithContext(ctx).
		Where("assistant_id = ?", assistantID).
		Order("created_at DESC").
		Find(&assigns).Error
	return assigns, err
}

func (r *repository) UpdateAssign(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Assign{}).
		Where("id = ?", id).
		Updates(updates).Error
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

func (r *repository) CreatePurchased(ctx context.Context, purchased *models.Purchased) (*models.Purchased, error) {
	if err := r.db.WithContext(ctx).Create(purchased).Error; err != nil {
		return nil, err
	}
	return purchased, nil
}

func (r *repository) UpdatePurchased(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Purchased{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindPurchasedStuffByStuffID(ctx context.Context, stuffID uuid.UUID) (*models.PurchasedStuff, error) {
	var item models.PurchasedStuff
	err := r.db.WithContext(ctx).Where("stuff_id = ?", stuffID).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreatePurchasedStuff(ctx context.Context, item *models.PurchasedStuff) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdatePurchasedStuff(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchasedStuff{}).
		Where("id = ?", id).
		Updates(updates).Error
}
