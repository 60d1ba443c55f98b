package products

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// RateSummary is one aggregated market-price row, grouped by metric and
// location.
type RateSummary struct {
	Name     string       `gorm:"column:name" json:"name"`
	Metric   enums.Metric `gorm:"column:metric" json:"metric"`
	Location *string      `gorm:"column:location" json:"location,omitempty"`
	MinPrice int64        `gorm:"column:min_price" json:"min_price"`
	MaxPrice int64        `gorm:"column:max_price" json:"max_price"`
	AvgPrice int64        `gorm:"column:avg_price" json:"avg_price"`
	Samples  int64        `gorm:"column:samples" json:"samples"`
	LastSeen time.Time    `gorm:"column:last_seen" json:"last_seen"`
}

type Repository interface {
	AggregateRates(ctx context.Context, actorID uuid.UUID, name string) ([]RateSummary, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// AggregateRates folds observations into per-location price bands. Private
// observations only count for their own author.
func (r *repository) AggregateRates(ctx context.Context, actorID uuid.UUID, name string) ([]RateSummary, error) {
	var summaries []RateSummary
	err := r.db.WithContext(ctx).
		Table("product_rates").
		Select("name, metric, location, MIN(price) AS min_price, MAX(price) AS max_price, "+
			"CAST(AVG(price) AS bigint) AS avg_price, COUNT(*) AS samples, MAX(created_at) AS last_seen").
		Where("name ILIKE ?", "%"+name+"%").
		Where("is_private = false OR user_id = ?", actorID).
		Group("name, metric, location").
		Order("name ASC, samples DESC").
		Limit(50).
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
