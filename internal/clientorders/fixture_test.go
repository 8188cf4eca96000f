package clientorders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/internal/clients"
	"github.com/shohaib1996/better-edible-backend/internal/directory"
	"github.com/shohaib1996/better-edible-backend/internal/events"
	"github.com/shohaib1996/better-edible-backend/internal/labels"
	"github.com/shohaib1996/better-edible-backend/internal/products"
	"github.com/shohaib1996/better-edible-backend/pkg/db"
	"github.com/shohaib1996/better-edible-backend/pkg/db/dbtest"
	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

var fixedNow = time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)

type fixture struct {
	conn   *gorm.DB
	svc    *service
	labels labels.Service
	client *clients.ClientDTO
	rep    models.Rep
	admin  models.Admin
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	conn := dbtest.Open(t, dbtest.PrivateLabel()...)
	logg := logger.Nop()
	tx := db.Wrap(conn)
	publisher := outbox.NewService(outbox.NewRepository(conn), logg)

	dir, err := directory.NewService(directory.NewRepository(conn))
	require.NoError(t, err)
	clientRepo := clients.NewRepository(conn)
	clientSvc, err := clients.NewService(clientRepo, tx, dir, nil, logg)
	require.NoError(t, err)
	activation, err := clients.NewActivationHandler(clientRepo, logg)
	require.NoError(t, err)
	bus := events.NewBus()
	bus.SubscribeLabelReachedProduction(activation)

	labelSvc, err := labels.NewService(labels.ServiceParams{
		Repo:      labels.NewRepository(conn),
		Tx:        tx,
		Outbox:    publisher,
		Clients:   clientSvc,
		Directory: dir,
		Events:    bus,
		Logger:    logg,
	})
	require.NoError(t, err)

	productSvc, err := products.NewService(products.NewRepository(conn))
	require.NoError(t, err)
	_, err = productSvc.CreateProduct(ctx, products.CreateProductInput{Name: "BIOMAX", UnitPrice: decimal.RequireFromString("5.25")})
	require.NoError(t, err)
	_, err = productSvc.CreateProduct(ctx, products.CreateProductInput{Name: "Rosin", UnitPrice: decimal.RequireFromString("7.333")})
	require.NoError(t, err)

	store := models.Store{ID: uuid.New(), Name: "Green Leaf"}
	require.NoError(t, conn.Create(&store).Error)
	rep := models.Rep{ID: uuid.New(), Name: "Riley Rep", Email: "riley@betteredibles.com"}
	require.NoError(t, conn.Create(&rep).Error)
	admin := models.Admin{ID: uuid.New(), Name: "Dana Ops", Email: "dana@betteredibles.com"}
	require.NoError(t, conn.Create(&admin).Error)
	client, err := clientSvc.CreateClient(ctx, clients.CreateClientInput{StoreID: store.ID, ContactEmail: "buyer@greenleaf.com", AssignedRepID: &rep.ID})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		Tx:        tx,
		Outbox:    publisher,
		Clients:   clientSvc,
		Labels:    labelSvc,
		Prices:    productSvc,
		Directory: dir,
		Settings: Settings{
			NumberPrefix: DefaultNumberPrefix,
			Calendar:     Calendar{Location: time.UTC, LeadDays: DefaultProductionLeadDays},
		},
		Logger: logg,
	})
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return fixedNow }

	return &fixture{conn: conn, svc: impl, labels: labelSvc, client: client, rep: rep, admin: admin}
}

func (f *fixture) label(t *testing.T, clientID uuid.UUID, flavor, productType string, stage enums.LabelStage) uuid.UUID {
	t.Helper()
	label, err := f.labels.CreateLabel(context.Background(), labels.CreateLabelInput{
		ClientID:    clientID,
		FlavorName:  flavor,
		ProductType: productType,
		Stage:       &stage,
	})
	require.NoError(t, err)
	return label.ID
}

func (f *fixture) readyLabel(t *testing.T, flavor string) uuid.UUID {
	return f.label(t, f.client.ID, flavor, "BIOMAX", enums.LabelStageReadyForProduction)
}

func (f *fixture) actor() *types.Actor {
	return &types.Actor{Kind: enums.ActorAdmin, ID: f.admin.ID}
}

func (f *fixture) createOrder(t *testing.T, delivery time.Time, items ...ItemInput) *OrderDTO {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		ClientID:     f.client.ID,
		Items:        items,
		DeliveryDate: types.NewDate(delivery),
		Actor:        f.actor(),
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	query := f.conn.Model(model)
	if where != "" {
		query = query.Where(where, args...)
	}
	require.NoError(t, query.Count(&n).Error)
	return n
}

func day(offset int) time.Time {
	return DateOf(fixedNow).AddDate(0, 0, offset)
}
