package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/metrics"
)

const reminderJobName = "delivery-reminder"

type reminderSource interface {
	ReminderCandidates(ctx context.Context) ([]uuid.UUID, error)
}

type notificationSender interface {
	Send(ctx context.Context, orderID uuid.UUID, kind enums.ClientOrderNotification) error
}

type ReminderJobParams struct {
	Logger     *logger.Logger
	Orders     reminderSource
	Dispatcher notificationSender
	Metrics    *metrics.CronJobMetrics
}

// NewReminderJob emails stores whose in-production orders deliver a week
// from today.
func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("client orders service required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	return &reminderJob{
		logg:       params.Logger,
		orders:     params.Orders,
		dispatcher: params.Dispatcher,
		metrics:    params.Metrics,
	}, nil
}

type reminderJob struct {
	logg       *logger.Logger
	orders     reminderSource
	dispatcher notificationSender
	metrics    *metrics.CronJobMetrics
}

func (j *reminderJob) Name() string { return reminderJobName }

func (j *reminderJob) Run(ctx context.Context) error {
	ids, err := j.orders.ReminderCandidates(ctx)
	if err != nil {
		return fmt.Errorf("load reminder candidates: %w", err)
	}

	var errs error
	sent := 0
	for _, id := range ids {
		if err := j.dispatcher.Send(ctx, id, enums.NotifySevenDayReminder); err != nil {
			j.logg.Error(j.logg.WithOrderID(ctx, id.String()), "failed to send reminder", err)
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		sent++
	}
	failed := len(multierr.Errors(errs))
	j.metrics.AddItems(reminderJobName, "sent", sent)
	j.metrics.AddItems(reminderJobName, "failed", failed)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(ids),
		"sent":       sent,
		"failed":     failed,
	})
	j.logg.Info(logCtx, "reminder sweep complete")
	return errs
}
