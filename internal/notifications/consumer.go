package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox/payloads"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox/registry"
)

const (
	clientOrderNotificationConsumer = "client-order-notifications"
	// The rep notice has no flag on the order, so it is tracked apart from
	// the event marker that a failed client send releases.
	recurringNoticeConsumer = "client-order-recurring-notices"
)

type sender interface {
	Send(ctx context.Context, orderID uuid.UUID, kind enums.ClientOrderNotification) error
}

type recurringGenerator interface {
	OnShipped(ctx context.Context, parentID uuid.UUID)
}

type processedTracker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type ConsumerParams struct {
	Dispatcher   sender
	Recurring    recurringGenerator
	Subscription *pubsub.Subscriber
	Idempotency  processedTracker
	Decoders     *registry.DecoderRegistry
	Logger       *logger.Logger
}

// Consumer turns client order domain events into emails and recurring orders.
type Consumer struct {
	dispatcher   sender
	recurring    recurringGenerator
	subscription *pubsub.Subscriber
	idempotency  processedTracker
	decoders     *registry.DecoderRegistry
	logg         *logger.Logger
}

func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	if params.Recurring == nil {
		return nil, fmt.Errorf("recurring generator required")
	}
	if params.Subscription == nil {
		return nil, fmt.Errorf("client orders subscription required")
	}
	if params.Idempotency == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	decoders := params.Decoders
	if decoders == nil {
		decoders = registry.NewClientOrderDecoders()
	}
	return &Consumer{
		dispatcher:   params.Dispatcher,
		recurring:    params.Recurring,
		subscription: params.Subscription,
		idempotency:  params.Idempotency,
		decoders:     decoders,
		logg:         params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	if eventType != enums.EventClientOrderCreated && eventType != enums.EventClientOrderStatusChanged {
		c.logg.Info(logCtx, "skipping unrelated event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}
	payload, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, clientOrderNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(logCtx, eventID, payload); err != nil {
		c.logg.Error(logCtx, "client order event handling failed", err)
		_ = c.idempotency.Delete(ctx, clientOrderNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventID uuid.UUID, payload any) error {
	switch evt := payload.(type) {
	case *payloads.ClientOrderCreatedEvent:
		ctx = c.logg.WithOrderID(ctx, evt.OrderID.String())
		err := c.dispatcher.Send(ctx, evt.OrderID, enums.NotifyOrderCreated)
		if evt.IsRecurring {
			c.sendRecurringNotice(ctx, eventID, evt.OrderID)
		}
		return err
	case *payloads.ClientOrderStatusChangedEvent:
		ctx = c.logg.WithOrderID(ctx, evt.OrderID.String())
		return c.handleStatus(ctx, evt)
	default:
		return fmt.Errorf("unexpected payload %T", payload)
	}
}

// sendRecurringNotice emails the rep at most once per event. Failures are
// logged and release the marker so a redelivery can retry.
func (c *Consumer) sendRecurringNotice(ctx context.Context, eventID, orderID uuid.UUID) {
	already, err := c.idempotency.CheckAndMarkProcessed(ctx, recurringNoticeConsumer, eventID)
	if err != nil {
		c.logg.Error(ctx, "recurring notice idempotency check failed", err)
		return
	}
	if already {
		c.logg.Info(ctx, "recurring notice already sent")
		return
	}
	if err := c.dispatcher.Send(ctx, orderID, enums.NotifyRecurringCreated); err != nil {
		c.logg.Error(ctx, "recurring order notice failed", err)
		_ = c.idempotency.Delete(ctx, recurringNoticeConsumer, eventID)
	}
}

func (c *Consumer) handleStatus(ctx context.Context, evt *payloads.ClientOrderStatusChangedEvent) error {
	switch evt.To {
	case enums.ClientOrderStage1:
		return c.dispatcher.Send(ctx, evt.OrderID, enums.NotifyProductionStarted)
	case enums.ClientOrderReadyToShip:
		return c.dispatcher.Send(ctx, evt.OrderID, enums.NotifyReadyToShip)
	case enums.ClientOrderShipped:
		err := c.dispatcher.Send(ctx, evt.OrderID, enums.NotifyShipped)
		c.recurring.OnShipped(ctx, evt.OrderID)
		return err
	default:
		c.logg.Info(ctx, "status not handled")
		return nil
	}
}
