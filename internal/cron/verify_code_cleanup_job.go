package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

const defaultVerifyCodeRetention = 168 * time.Hour

type verifyCodeCleanupRepo interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// VerifyCodeCleanupJobParams configure the verify-code cleanup job.
type VerifyCodeCleanupJobParams struct {
	Logger     *logger.Logger
	Repository verifyCodeCleanupRepo
	Retention  time.Duration
}

// NewVerifyCodeCleanupJob builds a job that sweeps expired challenge codes.
func NewVerifyCodeCleanupJob(params VerifyCodeCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("verify code repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultVerifyCodeRetention
	}
	return &verifyCodeCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type verifyCodeCleanupJob struct {
	logg      *logger.Logger
	repo      verifyCodeCleanupRepo
	retention time.Duration
	now       func() time.Time
}

func (j *verifyCodeCleanupJob) Name() string { return "verify-code-cleanup" }

func (j *verifyCodeCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.repo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("verify code cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "verify code cleanup complete")
	return nil
}
