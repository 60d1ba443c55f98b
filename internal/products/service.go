package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
)

// Service exposes the market-price aggregation.
type Service interface {
	Rates(ctx context.Context, actorID uuid.UUID, name string) ([]RateSummary, error)
}

type service struct {
	repo Repository
}

// NewService builds a products service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Rates(ctx context.Context, actorID uuid.UUID, name string) ([]RateSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	summaries, err := s.repo.AggregateRates(ctx, actorID, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate rates")
	}
	return summaries, nil
}
