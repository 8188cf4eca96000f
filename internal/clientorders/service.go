package clientorders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox/payloads"
	"github.com/shohaib1996/better-edible-backend/pkg/pagination"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

var (
	ErrOrderNotFound       = pkgerrors.New(pkgerrors.CodeNotFound, "client order not found")
	ErrItemsRequired       = pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	ErrInvalidQuantity     = pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	ErrInvalidStatus       = pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	ErrInvalidDiscount     = pkgerrors.New(pkgerrors.CodeValidation, "invalid discount")
	ErrDeliveryRequired    = pkgerrors.New(pkgerrors.CodeValidation, "delivery_date is required")
	ErrOwnershipMismatch   = pkgerrors.New(pkgerrors.CodeValidation, "label does not belong to this client")
	ErrLabelNotReady       = pkgerrors.New(pkgerrors.CodeStateConflict, "label is not ready for production")
	ErrOrderLocked         = pkgerrors.New(pkgerrors.CodeStateConflict, "only waiting orders can be edited")
	ErrOrderInProduction   = pkgerrors.New(pkgerrors.CodeStateConflict, "orders in production cannot be deleted")
	ErrNotWaiting          = pkgerrors.New(pkgerrors.CodeStateConflict, "only waiting orders can be pushed to production")
	ErrPriceNotConfigured  = pkgerrors.New(pkgerrors.CodePriceNotConfigured, "no active price for product type")
	ErrUnknownNotification = errors.New("unknown notification kind")

	errLeftWaiting = errors.New("order is no longer waiting")
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

type labelLookup interface {
	Lookup(ctx context.Context, id uuid.UUID) (*models.Label, error)
}

// PriceResolver returns the unit price of a product type, zero when unset.
type PriceResolver interface {
	ResolveUnitPrice(ctx context.Context, productType string) (decimal.Decimal, error)
}

type nameLookup interface {
	StoreNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	RepNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Service is the client order aggregate.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderDetailDTO, error)
	ListOrders(ctx context.Context, input ListOrdersInput) (pagination.Result[OrderDTO], error)
	UpdateOrder(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*OrderDTO, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	TransitionStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*OrderDTO, error)
	UpdateDeliveryDate(ctx context.Context, id uuid.UUID, input DeliveryDateInput) (*OrderDTO, error)
	ToggleShipASAP(ctx context.Context, id uuid.UUID, input ShipASAPInput) (*OrderDTO, error)
	PushToProduction(ctx context.Context, id uuid.UUID, actor *types.Actor) (*OrderDTO, error)
	DueForProduction(ctx context.Context) ([]uuid.UUID, error)
	StartScheduledProduction(ctx context.Context, id uuid.UUID) (bool, error)
	ReminderCandidates(ctx context.Context) ([]uuid.UUID, error)
	ExportProductionSchedule(ctx context.Context, input ListOrdersInput, w io.Writer) error
}

type ItemInput struct {
	LabelID  uuid.UUID
	Quantity int
}

type CreateOrderInput struct {
	ClientID     uuid.UUID
	Items        []ItemInput
	DeliveryDate types.Date
	Discount     decimal.Decimal
	DiscountType enums.DiscountType
	Note         string
	ShipASAP     bool
	Actor        *types.Actor
}

// UpdateOrderInput holds the editable fields of a waiting order. Nil fields
// are left unchanged.
type UpdateOrderInput struct {
	Items        *[]ItemInput
	DeliveryDate *types.Date
	Discount     *decimal.Decimal
	DiscountType *enums.DiscountType
	Note         *string
	ShipASAP     *bool
	Actor        *types.Actor
}

type StatusInput struct {
	Status         enums.ClientOrderStatus
	TrackingNumber *string
	Actor          *types.Actor
}

type DeliveryDateInput struct {
	DeliveryDate types.Date
	Actor        *types.Actor
}

// ShipASAPInput sets the flag to Value, or flips it when Value is nil.
type ShipASAPInput struct {
	Value *bool
	Actor *types.Actor
}

type ListOrdersInput struct {
	Statuses     []enums.ClientOrderStatus
	ClientID     *uuid.UUID
	RepID        *uuid.UUID
	DeliveryFrom *types.Date
	DeliveryTo   *types.Date
	Search       string
	Page         pagination.Params
}

// DefaultReminderLeadDays is how many days before delivery the reminder goes out.
const DefaultReminderLeadDays = 7

// Settings are the order numbering and scheduling knobs.
type Settings struct {
	NumberPrefix     string
	Calendar         Calendar
	ReminderLeadDays int
}

type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Outbox    outboxPublisher
	Clients   clientLookup
	Labels    labelLookup
	Prices    PriceResolver
	Directory nameLookup
	Policy    TransitionPolicy
	Settings  Settings
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	clients   clientLookup
	labels    labelLookup
	prices    PriceResolver
	directory nameLookup
	policy    TransitionPolicy
	settings  Settings
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("client orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client lookup required")
	}
	if params.Labels == nil {
		return nil, fmt.Errorf("label lookup required")
	}
	if params.Prices == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("directory required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	policy := params.Policy
	if policy == nil {
		policy = PermissivePolicy{}
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		outbox:    params.Outbox,
		clients:   params.Clients,
		labels:    params.Labels,
		prices:    params.Prices,
		directory: params.Directory,
		policy:    policy,
		settings:  params.Settings,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client_id is required")
	}
	client, err := s.clients.Lookup(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, ErrItemsRequired
	}
	if input.DeliveryDate.IsZero() {
		return nil, ErrDeliveryRequired
	}
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	items, err := s.buildItems(ctx, client.ID, input.Items)
	if err != nil {
		return nil, err
	}
	totals, err := ComputeTotals(lineTotals(items), input.Discount, input.DiscountType)
	if err != nil {
		return nil, err
	}

	delivery := DateOf(input.DeliveryDate.Time)
	kind, actorID := input.Actor.Columns()
	order := models.ClientOrder{
		ClientID:            client.ID,
		AssignedRepID:       client.AssignedRepID,
		CreatedByKind:       kind,
		CreatedByID:         actorID,
		Status:              enums.ClientOrderWaiting,
		DeliveryDate:        delivery,
		ProductionStartDate: s.settings.Calendar.ProductionStart(delivery, s.now()),
		Items:               items,
		Note:                strings.TrimSpace(input.Note),
		ShipASAP:            input.ShipASAP,
	}
	applyTotals(&order, totals)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return InsertOrder(ctx, tx, s.repo, s.outbox, s.settings.NumberPrefix, &order, input.Actor)
	}); err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"client_id":    order.ClientID.String(),
	})
	s.logg.Info(logCtx, "client order created")
	dto := mapOrderDTO(order)
	return &dto, nil
}

// InsertOrder assigns the next order number to order, persists it with its
// items and emits the created event inside tx. The recurring generator
// shares it.
func InsertOrder(ctx context.Context, tx *gorm.DB, repo Repository, emitter outboxPublisher, prefix string, order *models.ClientOrder, actor *types.Actor) error {
	seq, number, err := NextOrderNumber(tx, prefix)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}
	order.OrderSeq = seq
	order.OrderNumber = number
	if err := repo.WithTx(tx).Create(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client order")
	}
	return emitter.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventClientOrderCreated,
		AggregateType: enums.AggregateClientOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.ClientOrderCreatedEvent{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			ClientID:      order.ClientID,
			IsRecurring:   order.IsRecurring,
			ParentOrderID: order.ParentOrderID,
		},
	})
}

// buildItems validates every requested line and snapshots label and price
// data. It stops at the first offending line.
func (s *service) buildItems(ctx context.Context, clientID uuid.UUID, inputs []ItemInput) ([]models.ClientOrderItem, error) {
	if len(inputs) == 0 {
		return nil, ErrItemsRequired
	}
	items := make([]models.ClientOrderItem, 0, len(inputs))
	for i, in := range inputs {
		label, err := s.labels.Lookup(ctx, in.LabelID)
		if err != nil {
			return nil, err
		}
		details := map[string]any{"item": i, "label_id": label.ID.String()}
		if label.CurrentStage != enums.LabelStageReadyForProduction {
			details["stage"] = label.CurrentStage
			return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrLabelNotReady,
				fmt.Sprintf("label %q is not ready for production", label.FlavorName)).WithDetails(details)
		}
		if label.ClientID != clientID {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrOwnershipMismatch,
				fmt.Sprintf("label %q does not belong to this client", label.FlavorName)).WithDetails(details)
		}
		if in.Quantity < 1 {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidQuantity,
				"quantity must be at least 1").WithDetails(details)
		}
		price, err := s.prices.ResolveUnitPrice(ctx, label.ProductType)
		if err != nil {
			return nil, err
		}
		if !price.IsPositive() {
			details["product_type"] = label.ProductType
			return nil, pkgerrors.Wrap(pkgerrors.CodePriceNotConfigured, ErrPriceNotConfigured,
				fmt.Sprintf("no active price for product type %q", label.ProductType)).WithDetails(details)
		}
		items = append(items, models.ClientOrderItem{
			LabelID:     label.ID,
			FlavorName:  label.FlavorName,
			ProductType: label.ProductType,
			Quantity:    in.Quantity,
			UnitPrice:   price.Round(2),
			LineTotal:   LineTotal(in.Quantity, price.Round(2)),
		})
	}
	return items, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDetailDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := OrderDetailDTO{
		OrderDTO:       mapOrderDTO(*order),
		CanEdit:        order.Status == enums.ClientOrderWaiting,
		IsInProduction: order.Status.InProduction(),
	}

	client, err := s.clients.Lookup(ctx, order.ClientID)
	switch {
	case err == nil:
		names, err := s.directory.StoreNames(ctx, []uuid.UUID{client.StoreID})
		if err != nil {
			return nil, err
		}
		detail.Client = &ClientSummaryDTO{
			ID:           client.ID,
			StoreID:      client.StoreID,
			StoreName:    names[client.StoreID],
			Status:       client.Status,
			ContactEmail: client.ContactEmail,
		}
	case pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound:
		// Orders outlive deleted clients.
	default:
		return nil, err
	}

	if order.AssignedRepID != nil {
		names, err := s.directory.RepNames(ctx, []uuid.UUID{*order.AssignedRepID})
		if err != nil {
			return nil, err
		}
		detail.RepName = names[*order.AssignedRepID]
	}
	return &detail, nil
}

func (s *service) ListOrders(ctx context.Context, input ListOrdersInput) (pagination.Result[OrderDTO], error) {
	filter, err := buildFilter(input)
	if err != nil {
		return pagination.Result[OrderDTO]{}, err
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Result[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list client orders")
	}
	items := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapOrderDTO(row))
	}
	return pagination.NewResult(items, input.Page, total), nil
}

func buildFilter(input ListOrdersInput) (ListFilter, error) {
	for _, status := range input.Statuses {
		if !status.IsValid() {
			return ListFilter{}, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", status)
		}
	}
	filter := ListFilter{
		Statuses: input.Statuses,
		ClientID: input.ClientID,
		RepID:    input.RepID,
		Search:   input.Search,
		Page:     input.Page,
	}
	if input.DeliveryFrom != nil && !input.DeliveryFrom.IsZero() {
		from := DateOf(input.DeliveryFrom.Time)
		filter.DeliveryFrom = &from
	}
	if input.DeliveryTo != nil && !input.DeliveryTo.IsZero() {
		to := DateOf(input.DeliveryTo.Time)
		filter.DeliveryTo = &to
	}
	if filter.DeliveryFrom != nil && filter.DeliveryTo != nil && filter.DeliveryTo.Before(*filter.DeliveryFrom) {
		return ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery date range is inverted")
	}
	return filter, nil
}

// UpdateOrder edits a waiting order. Item edits re-run pricing with current
// registry prices.
func (s *service) UpdateOrder(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*OrderDTO, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != enums.ClientOrderWaiting {
		return nil, lockedErr(current)
	}

	var newItems []models.ClientOrderItem
	if input.Items != nil {
		if newItems, err = s.buildItems(ctx, current.ClientID, *input.Items); err != nil {
			return nil, err
		}
	}
	if input.DeliveryDate != nil && input.DeliveryDate.IsZero() {
		return nil, ErrDeliveryRequired
	}

	var order *models.ClientOrder
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if order, err = repo.FindByIDForUpdate(ctx, id); err != nil {
			return mapFindErr(err)
		}
		if order.Status != enums.ClientOrderWaiting {
			return lockedErr(order)
		}

		items := order.Items
		if input.Items != nil {
			items = newItems
		}
		discount, discountType := order.Discount, order.DiscountType
		if input.Discount != nil {
			discount = *input.Discount
		}
		if input.DiscountType != nil {
			discountType = *input.DiscountType
		}
		totals, err := ComputeTotals(lineTotals(items), discount, discountType)
		if err != nil {
			return err
		}

		updates := totalsUpdates(totals)
		if input.DeliveryDate != nil {
			delivery := DateOf(input.DeliveryDate.Time)
			updates["delivery_date"] = delivery
			updates["production_start_date"] = s.settings.Calendar.ProductionStart(delivery, s.now())
		}
		if input.Note != nil {
			updates["note"] = strings.TrimSpace(*input.Note)
		}
		if input.ShipASAP != nil {
			updates["ship_asap"] = *input.ShipASAP
		}
		if input.Items != nil {
			if err := repo.ReplaceItems(ctx, id, newItems); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace order items")
			}
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return mapFindErr(err)
		}
		order, err = repo.FindByID(ctx, id)
		if err != nil {
			return mapFindErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := mapOrderDTO(*order)
	return &dto, nil
}

func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapFindErr(err)
		}
		if order.Status.InProduction() {
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrOrderInProduction,
				fmt.Sprintf("order %s is in %s", order.OrderNumber, order.Status))
		}
		if err := repo.Delete(ctx, id); err != nil {
			return mapFindErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, id.String()), "client order deleted")
	return nil
}

// TransitionStatus moves an order to input.Status. Asking for the current
// status is a no-op and emits nothing.
func (s *service) TransitionStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*OrderDTO, error) {
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	var order *models.ClientOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = s.transition(ctx, tx, id, input, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	dto := mapOrderDTO(*order)
	return &dto, nil
}

// PushToProduction starts a waiting order today regardless of its schedule.
func (s *service) PushToProduction(ctx context.Context, id uuid.UUID, actor *types.Actor) (*OrderDTO, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	var order *models.ClientOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = s.transition(ctx, tx, id, StatusInput{Status: enums.ClientOrderStage1, Actor: actor}, func(current *models.ClientOrder, updates map[string]any) error {
			if current.Status != enums.ClientOrderWaiting {
				return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrNotWaiting,
					fmt.Sprintf("order %s is %s", current.OrderNumber, current.Status))
			}
			updates["production_start_date"] = s.settings.Calendar.Today(s.now())
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	dto := mapOrderDTO(*order)
	return &dto, nil
}

// StartScheduledProduction moves a waiting order into stage_1 for the daily
// sweep. It reports false when the order already left waiting.
func (s *service) StartScheduledProduction(ctx context.Context, id uuid.UUID) (bool, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.transition(ctx, tx, id, StatusInput{Status: enums.ClientOrderStage1}, func(current *models.ClientOrder, _ map[string]any) error {
			if current.Status != enums.ClientOrderWaiting {
				return errLeftWaiting
			}
			return nil
		})
		return err
	})
	if errors.Is(err, errLeftWaiting) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) transition(ctx context.Context, tx *gorm.DB, id uuid.UUID, input StatusInput, extra func(*models.ClientOrder, map[string]any) error) (*models.ClientOrder, error) {
	repo := s.repo.WithTx(tx)
	order, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, mapFindErr(err)
	}
	from := order.Status
	updates := map[string]any{}
	if extra != nil {
		if err := extra(order, updates); err != nil {
			return nil, err
		}
	}
	if from == input.Status && len(updates) == 0 {
		return order, nil
	}
	if err := s.policy.Allow(from, input.Status); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updates["status"] = input.Status
	if input.Status == enums.ClientOrderShipped {
		updates["actual_ship_date"] = now
	}
	if input.Status == enums.ClientOrderShipped && input.TrackingNumber != nil {
		if tracking := strings.TrimSpace(*input.TrackingNumber); tracking != "" {
			updates["tracking_number"] = tracking
		}
	}
	if err := repo.Update(ctx, id, updates); err != nil {
		return nil, mapFindErr(err)
	}
	if order, err = repo.FindByID(ctx, id); err != nil {
		return nil, mapFindErr(err)
	}

	err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventClientOrderStatusChanged,
		AggregateType: enums.AggregateClientOrder,
		AggregateID:   order.ID,
		Actor:         input.Actor,
		Data: payloads.ClientOrderStatusChangedEvent{
			OrderID:        order.ID,
			OrderNumber:    order.OrderNumber,
			ClientID:       order.ClientID,
			From:           from,
			To:             order.Status,
			TrackingNumber: order.TrackingNumber,
			ChangedAt:      now,
		},
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"from":     from,
		"to":       order.Status,
	})
	s.logg.Info(logCtx, "client order status changed")
	return order, nil
}

// UpdateDeliveryDate is allowed in any status; the production start follows
// the new date only while the order is still waiting.
func (s *service) UpdateDeliveryDate(ctx context.Context, id uuid.UUID, input DeliveryDateInput) (*OrderDTO, error) {
	if input.DeliveryDate.IsZero() {
		return nil, ErrDeliveryRequired
	}
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	delivery := DateOf(input.DeliveryDate.Time)
	return s.mutate(ctx, id, func(order *models.ClientOrder) (map[string]any, error) {
		updates := map[string]any{"delivery_date": delivery}
		if order.Status == enums.ClientOrderWaiting {
			updates["production_start_date"] = s.settings.Calendar.ProductionStart(delivery, s.now())
		}
		return updates, nil
	})
}

func (s *service) ToggleShipASAP(ctx context.Context, id uuid.UUID, input ShipASAPInput) (*OrderDTO, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(order *models.ClientOrder) (map[string]any, error) {
		value := !order.ShipASAP
		if input.Value != nil {
			value = *input.Value
		}
		return map[string]any{"ship_asap": value}, nil
	})
}

func (s *service) mutate(ctx context.Context, id uuid.UUID, fn func(*models.ClientOrder) (map[string]any, error)) (*OrderDTO, error) {
	var order *models.ClientOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapFindErr(err)
		}
		updates, err := fn(current)
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return mapFindErr(err)
		}
		if order, err = repo.FindByID(ctx, id); err != nil {
			return mapFindErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := mapOrderDTO(*order)
	return &dto, nil
}

func (s *service) DueForProduction(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.repo.DueForProduction(ctx, s.settings.Calendar.Today(s.now()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders due for production")
	}
	return ids, nil
}

// ReminderCandidates lists orders in production that deliver in
// ReminderLeadDays days.
func (s *service) ReminderCandidates(ctx context.Context) ([]uuid.UUID, error) {
	target := s.settings.Calendar.Today(s.now()).AddDate(0, 0, s.reminderLeadDays())
	ids, err := s.repo.ReminderCandidates(ctx, target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reminder candidates")
	}
	return ids, nil
}

func (s *service) reminderLeadDays() int {
	if s.settings.ReminderLeadDays <= 0 {
		return DefaultReminderLeadDays
	}
	return s.settings.ReminderLeadDays
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.ClientOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return order, nil
}

func lockedErr(order *models.ClientOrder) error {
	return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrOrderLocked,
		fmt.Sprintf("order %s is %s and can no longer be edited", order.OrderNumber, order.Status))
}

func lineTotals(items []models.ClientOrderItem) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		out = append(out, item.LineTotal)
	}
	return out
}

func applyTotals(order *models.ClientOrder, totals Totals) {
	order.Subtotal = totals.Subtotal
	order.Discount = totals.Discount
	order.DiscountType = totals.DiscountType
	order.DiscountAmount = totals.DiscountAmount
	order.Total = totals.Total
}

func totalsUpdates(totals Totals) map[string]any {
	return map[string]any{
		"subtotal":        totals.Subtotal,
		"discount":        totals.Discount,
		"discount_type":   totals.DiscountType,
		"discount_amount": totals.DiscountAmount,
		"total":           totals.Total,
	}
}

func validateActor(actor *types.Actor) error {
	if actor == nil {
		return nil
	}
	if err := actor.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}
	return nil
}

func mapFindErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client order")
}
