package app

import (
	"fmt"

	"github.com/shohaib1996/better-edible-backend/internal/clientorders"
	"github.com/shohaib1996/better-edible-backend/internal/clients"
	"github.com/shohaib1996/better-edible-backend/internal/directory"
	"github.com/shohaib1996/better-edible-backend/internal/events"
	"github.com/shohaib1996/better-edible-backend/internal/labels"
	"github.com/shohaib1996/better-edible-backend/internal/products"
	"github.com/shohaib1996/better-edible-backend/pkg/config"
	"github.com/shohaib1996/better-edible-backend/pkg/db"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox"
	"github.com/shohaib1996/better-edible-backend/pkg/storage"
)

// Params collect what every binary needs to build the domain services.
type Params struct {
	Config *config.Config
	DB     *db.Client
	// Objects may be nil for binaries that never touch label artwork.
	Objects storage.ObjectStore
	Logger  *logger.Logger
}

// Services is the domain graph shared by the api, worker and cron binaries.
type Services struct {
	Directory        directory.Service
	Clients          clients.Service
	ClientsRepo      clients.Repository
	Labels           labels.Service
	Products         products.Service
	ClientOrders     clientorders.Service
	ClientOrdersRepo clientorders.Repository
	Outbox           *outbox.Service
	OutboxRepo       *outbox.Repository
	Settings         clientorders.Settings
}

// NewServices wires repositories and services in dependency order. The
// activation handler is subscribed so labels reaching production flip their
// client to active inside the same transaction.
func NewServices(params Params) (*Services, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg := params.Config
	conn := params.DB.DB()
	logg := params.Logger

	settings, err := OrderSettings(cfg)
	if err != nil {
		return nil, err
	}

	outboxRepo := outbox.NewRepository(conn)
	publisher := outbox.NewService(outboxRepo, logg)

	dir, err := directory.NewService(directory.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("directory service: %w", err)
	}

	clientRepo := clients.NewRepository(conn)
	clientSvc, err := clients.NewService(clientRepo, params.DB, dir, params.Objects, logg)
	if err != nil {
		return nil, fmt.Errorf("clients service: %w", err)
	}
	activation, err := clients.NewActivationHandler(clientRepo, logg)
	if err != nil {
		return nil, fmt.Errorf("activation handler: %w", err)
	}
	bus := events.NewBus()
	bus.SubscribeLabelReachedProduction(activation)

	labelSvc, err := labels.NewService(labels.ServiceParams{
		Repo:      labels.NewRepository(conn),
		Tx:        params.DB,
		Outbox:    publisher,
		Clients:   clientSvc,
		Directory: dir,
		Events:    bus,
		Objects:   params.Objects,
		Media:     cfg.Media,
		Logger:    logg,
	})
	if err != nil {
		return nil, fmt.Errorf("labels service: %w", err)
	}

	productSvc, err := products.NewService(products.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("products service: %w", err)
	}

	orderRepo := clientorders.NewRepository(conn)
	orderSvc, err := clientorders.NewService(clientorders.ServiceParams{
		Repo:      orderRepo,
		Tx:        params.DB,
		Outbox:    publisher,
		Clients:   clientSvc,
		Labels:    labelSvc,
		Prices:    productSvc,
		Directory: dir,
		Settings:  settings,
		Logger:    logg,
	})
	if err != nil {
		return nil, fmt.Errorf("client orders service: %w", err)
	}

	return &Services{
		Directory:        dir,
		Clients:          clientSvc,
		ClientsRepo:      clientRepo,
		Labels:           labelSvc,
		Products:         productSvc,
		ClientOrders:     orderSvc,
		ClientOrdersRepo: orderRepo,
		Outbox:           publisher,
		OutboxRepo:       outboxRepo,
		Settings:         settings,
	}, nil
}

// OrderSettings maps the orders and scheduler config onto the scheduling
// calendar. The scheduler timezone defines the business "today".
func OrderSettings(cfg *config.Config) (clientorders.Settings, error) {
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return clientorders.Settings{}, fmt.Errorf("scheduler timezone: %w", err)
	}
	prefix := cfg.Orders.NumberPrefix
	if prefix == "" {
		prefix = clientorders.DefaultNumberPrefix
	}
	lead := cfg.Orders.ProductionLeadDays
	if lead <= 0 {
		lead = clientorders.DefaultProductionLeadDays
	}
	return clientorders.Settings{
		NumberPrefix:     prefix,
		Calendar:         clientorders.Calendar{Location: loc, LeadDays: lead},
		ReminderLeadDays: cfg.Orders.ReminderLeadDays,
	}, nil
}
