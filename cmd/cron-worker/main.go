package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shohaib1996/better-edible-backend/internal/app"
	"github.com/shohaib1996/better-edible-backend/internal/cron"
	"github.com/shohaib1996/better-edible-backend/internal/notifications"
	"github.com/shohaib1996/better-edible-backend/pkg/config"
	"github.com/shohaib1996/better-edible-backend/pkg/db"
	"github.com/shohaib1996/better-edible-backend/pkg/email"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/metrics"
	"github.com/shohaib1996/better-edible-backend/pkg/migrate"
	"github.com/shohaib1996/better-edible-backend/pkg/redis"
)

const lockPrefix = "cron-worker:"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svcs, err := app.NewServices(app.Params{Config: cfg, DB: dbClient, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	sender, err := email.NewSender(cfg.Sendgrid, cfg.App, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create email sender", err)
		os.Exit(1)
	}
	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Orders:    svcs.ClientOrdersRepo,
		Clients:   svcs.Clients,
		Directory: svcs.Directory,
		Sender:    sender,
		Metrics:   metrics.NewNotificationMetrics(prometheus.DefaultRegisterer),
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	registry, err := buildRegistry(cfg, logg, svcs, dispatcher, dbClient, cronMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to register cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockName(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	location, err := cfg.Scheduler.Location()
	if err != nil {
		logg.Error(context.Background(), "invalid scheduler timezone", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  cronMetrics,
		Spec:     cfg.Scheduler.Spec,
		Location: location,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"schedule":    cfg.Scheduler.Spec,
		"timezone":    location.String(),
		"jobs":        registry.Names(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

// buildRegistry orders the daily cycle: production starts run before
// reminders, and outbox retention runs last.
func buildRegistry(
	cfg *config.Config,
	logg *logger.Logger,
	svcs *app.Services,
	dispatcher *notifications.Dispatcher,
	dbClient *db.Client,
	cronMetrics *metrics.CronJobMetrics,
) (*cron.Registry, error) {
	production, err := cron.NewProductionJob(cron.ProductionJobParams{
		Logger:  logg,
		Orders:  svcs.ClientOrders,
		Metrics: cronMetrics,
	})
	if err != nil {
		return nil, err
	}
	reminder, err := cron.NewReminderJob(cron.ReminderJobParams{
		Logger:     logg,
		Orders:     svcs.ClientOrders,
		Dispatcher: dispatcher,
		Metrics:    cronMetrics,
	})
	if err != nil {
		return nil, err
	}
	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: svcs.OutboxRepo,
		Retention:  cfg.Eventing.OutboxRetention,
	})
	if err != nil {
		return nil, err
	}

	registry := cron.NewRegistry()
	for _, job := range []cron.Job{production, reminder, retention} {
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return lockPrefix + env
}
