package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shohaib1996/better-edible-backend/internal/app"
	"github.com/shohaib1996/better-edible-backend/internal/notifications"
	"github.com/shohaib1996/better-edible-backend/internal/recurring"
	"github.com/shohaib1996/better-edible-backend/pkg/config"
	"github.com/shohaib1996/better-edible-backend/pkg/db"
	"github.com/shohaib1996/better-edible-backend/pkg/email"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/metrics"
	"github.com/shohaib1996/better-edible-backend/pkg/migrate"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox/idempotency"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox/registry"
	"github.com/shohaib1996/better-edible-backend/pkg/pubsub"
	"github.com/shohaib1996/better-edible-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	redisClient, err := redis.New(ctx, cfg.Redis)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.ClientOrdersSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "client orders subscription", errors.New("subscription not configured"))
	}

	svcs, err := app.NewServices(app.Params{Config: cfg, DB: dbClient, Logger: logg})
	requireResource(ctx, logg, "domain services", err)

	sender, err := email.NewSender(cfg.Sendgrid, cfg.App, logg)
	requireResource(ctx, logg, "email sender", err)

	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Orders:    svcs.ClientOrdersRepo,
		Clients:   svcs.Clients,
		Directory: svcs.Directory,
		Sender:    sender,
		Metrics:   metrics.NewNotificationMetrics(prometheus.DefaultRegisterer),
		Logger:    logg,
	})
	requireResource(ctx, logg, "notification dispatcher", err)

	generator, err := recurring.NewGenerator(recurring.Params{
		Orders:   svcs.ClientOrdersRepo,
		Clients:  svcs.Clients,
		Tx:       dbClient,
		Outbox:   svcs.Outbox,
		Settings: svcs.Settings,
		Logger:   logg,
	})
	requireResource(ctx, logg, "recurring generator", err)

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	notificationConsumer, err := notifications.NewConsumer(notifications.ConsumerParams{
		Dispatcher:   dispatcher,
		Recurring:    generator,
		Subscription: subscription,
		Idempotency:  manager,
		Decoders:     registry.NewClientOrderDecoders(),
		Logger:       logg,
	})
	requireResource(ctx, logg, "notification consumer", err)

	service, err := NewService(ServiceParams{
		Logger: logg,
		Dependencies: []Dependency{
			{Name: "database", Ping: dbClient},
			{Name: "redis", Ping: redisClient},
			{Name: "pubsub", Ping: pubsubClient},
		},
		Consumers: []consumer{notificationConsumer},
	})
	requireResource(ctx, logg, "worker service", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":          cfg.App.Env,
		"serviceKind":  cfg.Service.Kind,
		"subscription": cfg.PubSub.ClientOrdersSubscription,
	})
	logg.Info(runCtx, "starting worker")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
