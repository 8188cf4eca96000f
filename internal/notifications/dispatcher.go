// Package notifications sends the transactional emails of a client order and
// records which ones went out.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/internal/clientorders"
	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/email"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/metrics"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

type orderStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.ClientOrder, error)
	MarkNotificationSent(ctx context.Context, id uuid.UUID, kind enums.ClientOrderNotification) (bool, error)
}

type clientLookup interface {
	Lookup(ctx context.Context, id uuid.UUID) (*models.PrivateLabelClient, error)
}

type directoryReader interface {
	Store(ctx context.Context, id uuid.UUID) (*models.Store, error)
	Rep(ctx context.Context, id uuid.UUID) (*models.Rep, error)
}

type DispatcherParams struct {
	Orders    orderStore
	Clients   clientLookup
	Directory directoryReader
	Sender    email.Sender
	Metrics   *metrics.NotificationMetrics
	Logger    *logger.Logger
}

// Dispatcher sends each order notification at most once. The emails_sent
// flag is written only after every required recipient accepted the message.
type Dispatcher struct {
	orders    orderStore
	clients   clientLookup
	directory directoryReader
	sender    email.Sender
	metrics   *metrics.NotificationMetrics
	logg      *logger.Logger
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client lookup required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("directory required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{
		orders:    params.Orders,
		clients:   params.Clients,
		directory: params.Directory,
		sender:    params.Sender,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

// Send delivers the notification kind for orderID. It returns nil without
// sending when the flag for kind is already set.
func (d *Dispatcher) Send(ctx context.Context, orderID uuid.UUID, kind enums.ClientOrderNotification) error {
	if !kind.IsValid() {
		return clientorders.ErrUnknownNotification
	}
	logCtx := d.logg.WithFields(ctx, map[string]any{
		"order_id":     orderID.String(),
		"notification": string(kind),
	})

	order, err := d.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return clientorders.ErrOrderNotFound
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if clientorders.NotificationSent(*order, kind) {
		d.metrics.Observe(string(kind), metrics.OutcomeSkipped)
		d.logg.Info(logCtx, "notification already sent")
		return nil
	}

	messages, err := d.compose(ctx, order, kind)
	if err != nil {
		d.metrics.Observe(string(kind), metrics.OutcomeFailed)
		return err
	}
	if len(messages) == 0 {
		d.metrics.Observe(string(kind), metrics.OutcomeSkipped)
		d.logg.Warn(logCtx, "notification has no recipients")
		return nil
	}

	var sendErr error
	for _, msg := range messages {
		sendErr = multierr.Append(sendErr, d.sender.Send(ctx, msg))
	}
	if sendErr != nil {
		d.metrics.Observe(string(kind), metrics.OutcomeFailed)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, sendErr, "send notification")
	}

	if kind.Tracked() {
		if _, err := d.orders.MarkNotificationSent(ctx, order.ID, kind); err != nil {
			d.metrics.Observe(string(kind), metrics.OutcomeFailed)
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record notification")
		}
	}
	d.metrics.Observe(string(kind), metrics.OutcomeSent)
	d.logg.Info(logCtx, "notification sent")
	return nil
}

// Notify is Send for callers that must not fail: errors are logged only.
func (d *Dispatcher) Notify(ctx context.Context, orderID uuid.UUID, kind enums.ClientOrderNotification) {
	if err := d.Send(ctx, orderID, kind); err != nil {
		logCtx := d.logg.WithFields(ctx, map[string]any{
			"order_id":     orderID.String(),
			"notification": string(kind),
		})
		d.logg.Error(logCtx, "notification failed", err)
	}
}

// compose builds the messages for kind. Shipped goes to the store and the
// rep; the recurring notice goes to the rep only.
func (d *Dispatcher) compose(ctx context.Context, order *models.ClientOrder, kind enums.ClientOrderNotification) ([]email.Message, error) {
	client, err := d.clients.Lookup(ctx, order.ClientID)
	if err != nil {
		return nil, err
	}
	store, err := d.directory.Store(ctx, client.StoreID)
	if err != nil {
		return nil, err
	}
	var rep *models.Rep
	if repID := repFor(order, client); repID != nil {
		rep, err = d.directory.Rep(ctx, *repID)
		if err != nil && pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
			return nil, err
		}
	}

	view := d.view(ctx, order, store, rep)
	toStore := func(template, subject string) (email.Message, error) {
		html, err := render(template, view)
		if err != nil {
			return email.Message{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render "+template)
		}
		return email.Message{To: client.ContactEmail, ToName: store.Name, Subject: subject, HTML: html, Text: plainText(subject, view)}, nil
	}
	toRep := func(template, subject string) (email.Message, error) {
		html, err := render(template, view)
		if err != nil {
			return email.Message{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render "+template)
		}
		return email.Message{To: rep.Email, ToName: rep.Name, Subject: subject, HTML: html, Text: plainText(subject, view)}, nil
	}

	var out []email.Message
	add := func(msg email.Message, err error) error {
		if err != nil {
			return err
		}
		out = append(out, msg)
		return nil
	}

	switch kind {
	case enums.NotifyOrderCreated:
		subject := fmt.Sprintf("Order %s received", order.OrderNumber)
		if order.IsRecurring {
			subject = fmt.Sprintf("Recurring order %s scheduled", order.OrderNumber)
		}
		err = add(toStore("order_created", subject))
	case enums.NotifyProductionStarted:
		err = add(toStore("production_started", fmt.Sprintf("Production started on order %s", order.OrderNumber)))
	case enums.NotifySevenDayReminder:
		err = add(toStore("seven_day_reminder", fmt.Sprintf("Order %s delivers in one week", order.OrderNumber)))
	case enums.NotifyReadyToShip:
		err = add(toStore("ready_to_ship", fmt.Sprintf("Order %s is ready to ship", order.OrderNumber)))
	case enums.NotifyShipped:
		if err = add(toStore("shipped", fmt.Sprintf("Order %s has shipped", order.OrderNumber))); err == nil && hasEmail(rep) {
			err = add(toRep("rep_shipped", fmt.Sprintf("%s: order %s shipped", store.Name, order.OrderNumber)))
		}
	case enums.NotifyRecurringCreated:
		if hasEmail(rep) {
			err = add(toRep("recurring_created", fmt.Sprintf("Recurring order %s created for %s", order.OrderNumber, store.Name)))
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Dispatcher) view(ctx context.Context, order *models.ClientOrder, store *models.Store, rep *models.Rep) orderView {
	view := orderView{
		OrderNumber:         order.OrderNumber,
		StoreName:           store.Name,
		DeliveryDate:        types.NewDate(order.DeliveryDate.UTC()).Format("January 2, 2006"),
		ProductionStartDate: types.NewDate(order.ProductionStartDate.UTC()).Format("January 2, 2006"),
		Total:               order.Total.StringFixed(2),
		IsRecurring:         order.IsRecurring,
	}
	if rep != nil {
		view.RepName = rep.Name
	}
	if order.TrackingNumber != nil {
		view.TrackingNumber = *order.TrackingNumber
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, itemView{FlavorName: item.FlavorName, ProductType: item.ProductType, Quantity: item.Quantity})
	}
	if order.ParentOrderID != nil {
		if parent, err := d.orders.FindByID(ctx, *order.ParentOrderID); err == nil {
			view.ParentOrderNumber = parent.OrderNumber
		}
	}
	return view
}

func repFor(order *models.ClientOrder, client *models.PrivateLabelClient) *uuid.UUID {
	if order.AssignedRepID != nil {
		return order.AssignedRepID
	}
	return client.AssignedRepID
}

func hasEmail(rep *models.Rep) bool {
	return rep != nil && strings.TrimSpace(rep.Email) != ""
}

func plainText(subject string, view orderView) string {
	var b strings.Builder
	b.WriteString(subject)
	b.WriteString("\n\n")
	for _, item := range view.Items {
		fmt.Fprintf(&b, "- %s (%s) x%d\n", item.FlavorName, item.ProductType, item.Quantity)
	}
	fmt.Fprintf(&b, "\nDelivery: %s\nTotal: $%s\n", view.DeliveryDate, view.Total)
	if view.TrackingNumber != "" {
		fmt.Fprintf(&b, "Tracking: %s\n", view.TrackingNumber)
	}
	return b.String()
}
