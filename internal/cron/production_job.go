package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/metrics"
)

const productionJobName = "production-start"

type productionStarter interface {
	DueForProduction(ctx context.Context) ([]uuid.UUID, error)
	StartScheduledProduction(ctx context.Context, id uuid.UUID) (bool, error)
}

type ProductionJobParams struct {
	Logger  *logger.Logger
	Orders  productionStarter
	Metrics *metrics.CronJobMetrics
}

// NewProductionJob promotes waiting orders whose production start date has
// arrived. Ship-ASAP orders are left for operators to push by hand.
func NewProductionJob(params ProductionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("client orders service required")
	}
	return &productionJob{logg: params.Logger, orders: params.Orders, metrics: params.Metrics}, nil
}

type productionJob struct {
	logg    *logger.Logger
	orders  productionStarter
	metrics *metrics.CronJobMetrics
}

func (j *productionJob) Name() string { return productionJobName }

func (j *productionJob) Run(ctx context.Context) error {
	ids, err := j.orders.DueForProduction(ctx)
	if err != nil {
		return fmt.Errorf("load due orders: %w", err)
	}

	var started, skipped int
	var errs error
	for _, id := range ids {
		ok, err := j.orders.StartScheduledProduction(ctx, id)
		if err != nil {
			j.logg.Error(j.logg.WithOrderID(ctx, id.String()), "failed to start production", err)
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		if ok {
			started++
		} else {
			skipped++
		}
	}
	failed := len(multierr.Errors(errs))
	j.metrics.AddItems(productionJobName, "started", started)
	j.metrics.AddItems(productionJobName, "failed", failed)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"due":     len(ids),
		"started": started,
		"skipped": skipped,
		"failed":  failed,
	})
	j.logg.Info(logCtx, "production sweep complete")
	return errs
}
