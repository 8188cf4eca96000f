// Package recurring creates the next order of a recurring client once the
// current one ships.
package recurring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/internal/clientorders"
	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type clientLookup interface {
	Lookup(ctx context.Context, id uuid.UUID) (*models.PrivateLabelClient, error)
}

type Params struct {
	Orders   clientorders.Repository
	Clients  clientLookup
	Tx       txRunner
	Outbox   outboxPublisher
	Settings clientorders.Settings
	Logger   *logger.Logger
}

// Generator clones a shipped order into the next delivery cycle.
type Generator struct {
	orders   clientorders.Repository
	clients  clientLookup
	tx       txRunner
	outbox   outboxPublisher
	settings clientorders.Settings
	logg     *logger.Logger
}

func NewGenerator(params Params) (*Generator, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("client orders repository required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client lookup required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Generator{
		orders:   params.Orders,
		clients:  params.Clients,
		tx:       params.Tx,
		outbox:   params.Outbox,
		settings: params.Settings,
		logg:     params.Logger,
	}, nil
}

// Generate creates the successor of the shipped order parentID. It returns
// nil without error when nothing is due: the parent is not shipped, the
// client is gone or not recurring, or a successor already exists.
func (g *Generator) Generate(ctx context.Context, parentID uuid.UUID) (*models.ClientOrder, error) {
	parent, err := g.orders.FindByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clientorders.ErrOrderNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent order")
	}
	if parent.Status != enums.ClientOrderShipped {
		return nil, nil
	}

	client, err := g.clients.Lookup(ctx, parent.ClientID)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	if !client.RecurringEnabled {
		return nil, nil
	}
	interval := enums.RecurringMonthly
	if client.RecurringInterval != nil {
		interval = *client.RecurringInterval
	}

	delivery := NextDelivery(parent.DeliveryDate, interval)
	child := models.ClientOrder{
		ClientID:            parent.ClientID,
		AssignedRepID:       client.AssignedRepID,
		Status:              enums.ClientOrderWaiting,
		DeliveryDate:        delivery,
		ProductionStartDate: g.settings.Calendar.ScheduledProductionStart(delivery),
		Items:               cloneItems(parent.Items),
		Subtotal:            parent.Subtotal,
		Discount:            parent.Discount,
		DiscountType:        parent.DiscountType,
		DiscountAmount:      parent.DiscountAmount,
		Total:               parent.Total,
		Note:                annotate(parent),
		IsRecurring:         true,
		ParentOrderID:       &parent.ID,
	}

	var created bool
	err = g.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := g.orders.WithTx(tx)
		if _, err := repo.FindChild(ctx, parent.ID); err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing successor")
		}
		if err := clientorders.InsertOrder(ctx, tx, repo, g.outbox, g.settings.NumberPrefix, &child, nil); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, nil
	}

	logCtx := g.logg.WithFields(ctx, map[string]any{
		"order_id":        child.ID.String(),
		"order_number":    child.OrderNumber,
		"parent_order_id": parent.ID.String(),
		"interval":        string(interval),
	})
	g.logg.Info(logCtx, "recurring order generated")
	return &child, nil
}

// OnShipped runs Generate and only logs failures; a shipped order stays
// shipped whatever happens here.
func (g *Generator) OnShipped(ctx context.Context, parentID uuid.UUID) {
	if _, err := g.Generate(ctx, parentID); err != nil {
		g.logg.Error(g.logg.WithOrderID(ctx, parentID.String()), "recurring order generation failed", err)
	}
}

// NextDelivery adds the interval's month count to delivery. Day overflow
// rolls into the following month the way time.AddDate does.
func NextDelivery(delivery time.Time, interval enums.RecurringInterval) time.Time {
	return clientorders.DateOf(delivery).AddDate(0, interval.Months(), 0)
}

func cloneItems(items []models.ClientOrderItem) []models.ClientOrderItem {
	out := make([]models.ClientOrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.ClientOrderItem{
			LabelID:     item.LabelID,
			FlavorName:  item.FlavorName,
			ProductType: item.ProductType,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return out
}

func annotate(parent *models.ClientOrder) string {
	note := fmt.Sprintf("Recurring order generated from %s", parent.OrderNumber)
	if prev := strings.TrimSpace(parent.Note); prev != "" {
		note += "\n" + prev
	}
	return note
}
