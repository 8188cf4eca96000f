package clientorders

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shohaib1996/better-edible-backend/internal/clients"
	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/pagination"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

func TestCreateOrderSnapshotsPricesAndTotals(t *testing.T) {
	f := newFixture(t)
	mango := f.readyLabel(t, "Mango")
	berry := f.label(t, f.client.ID, "Berry", "Rosin", enums.LabelStageReadyForProduction)

	order, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		ClientID:     f.client.ID,
		Items:        []ItemInput{{LabelID: mango, Quantity: 3}, {LabelID: berry, Quantity: 2}},
		DeliveryDate: types.NewDate(day(30)),
		Discount:     decimal.NewFromInt(10),
		DiscountType: enums.DiscountPercentage,
		Note:         "  rush artwork  ",
		Actor:        f.actor(),
	})
	require.NoError(t, err)

	require.Equal(t, "PL-00001", order.OrderNumber)
	require.Equal(t, enums.ClientOrderWaiting, order.Status)
	require.Equal(t, "rush artwork", order.Note)
	require.Equal(t, &f.rep.ID, order.AssignedRepID)
	require.Len(t, order.Items, 2)
	require.Equal(t, "Mango", order.Items[0].FlavorName)
	require.Equal(t, "15.75", order.Items[0].LineTotal.StringFixed(2))
	require.Equal(t, "7.33", order.Items[1].UnitPrice.StringFixed(2))
	require.Equal(t, "14.66", order.Items[1].LineTotal.StringFixed(2))
	require.Equal(t, "30.41", order.Subtotal.StringFixed(2))
	require.Equal(t, "3.04", order.DiscountAmount.StringFixed(2))
	require.Equal(t, "27.37", order.Total.StringFixed(2))
	require.NotNil(t, order.CreatedBy)
	require.Equal(t, f.admin.ID, order.CreatedBy.ID)

	require.EqualValues(t, 1, f.count(t, &models.OutboxEvent{}, "event_type = ?", enums.EventClientOrderCreated))
}

func TestCreateOrderClampsProductionStart(t *testing.T) {
	f := newFixture(t)
	label := f.readyLabel(t, "Mango")

	soon := f.createOrder(t, day(5), ItemInput{LabelID: label, Quantity: 1})
	require.Equal(t, types.NewDate(day(0)), soon.ProductionStartDate)

	later := f.createOrder(t, day(30), ItemInput{LabelID: label, Quantity: 1})
	require.Equal(t, types.NewDate(day(16)), later.ProductionStartDate)
	require.Equal(t, types.NewDate(day(30)), later.DeliveryDate)
}

func TestCreateOrderRejectsUnreadyLabelAndPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ready := f.readyLabel(t, "Mango")
	draft := f.label(t, f.client.ID, "Lime", "BIOMAX", enums.LabelStageOLCCApproved)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		ClientID:     f.client.ID,
		Items:        []ItemInput{{LabelID: ready, Quantity: 1}, {LabelID: draft, Quantity: 4}},
		DeliveryDate: types.NewDate(day(20)),
	})
	require.ErrorIs(t, err, ErrLabelNotReady)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	require.Zero(t, f.count(t, &models.ClientOrder{}, ""))
	require.Zero(t, f.count(t, &models.ClientOrderItem{}, ""))
	require.Zero(t, f.count(t, &models.OutboxEvent{}, "event_type = ?", enums.EventClientOrderCreated))
}

func TestCreateOrderRejectsForeignLabel(t *testing.T) {
	f := newFixture(t)
	other := models.Store{ID: uuid.New(), Name: "Blue Door"}
	require.NoError(t, f.conn.Create(&other).Error)
	otherClient := models.PrivateLabelClient{ID: uuid.New(), StoreID: other.ID, Status: enums.PrivateLabelClientActive, ContactEmail: "x@bluedoor.com"}
	require.NoError(t, f.conn.Create(&otherClient).Error)
	foreign := f.label(t, otherClient.ID, "Peach", "BIOMAX", enums.LabelStageReadyForProduction)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		ClientID:     f.client.ID,
		Items:        []ItemInput{{LabelID: foreign, Quantity: 1}},
		DeliveryDate: types.NewDate(day(20)),
	})
	require.ErrorIs(t, err, ErrOwnershipMismatch)
	require.Zero(t, f.count(t, &models.ClientOrder{}, ""))
}

func TestCreateOrderRequiresConfiguredPrice(t *testing.T) {
	f := newFixture(t)
	label := f.label(t, f.client.ID, "Plum", "Gummies", enums.LabelStageReadyForProduction)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		ClientID:     f.client.ID,
		Items:        []ItemInput{{LabelID: label, Quantity: 1}},
		DeliveryDate: types.NewDate(day(20)),
	})
	require.ErrorIs(t, err, ErrPriceNotConfigured)
	require.Equal(t, pkgerrors.CodePriceNotConfigured, pkgerrors.CodeOf(err))
}

func TestCreateOrderValidatesInput(t *testing.T) {
	f := newFixture(t)
	label := f.readyLabel(t, "Mango")
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, CreateOrderInput{ClientID: f.client.ID, DeliveryDate: types.NewDate(day(20))})
	require.ErrorIs(t, err, ErrItemsRequired)

	_, err = f.svc.CreateOrder(ctx, CreateOrderInput{ClientID: f.client.ID, Items: []ItemInput{{LabelID: label, Quantity: 1}}})
	require.ErrorIs(t, err, ErrDeliveryRequired)

	_, err = f.svc.CreateOrder(ctx, CreateOrderInput{ClientID: f.client.ID, Items: []ItemInput{{LabelID: label, Quantity: 0}}, DeliveryDate: types.NewDate(day(20))})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.svc.CreateOrder(ctx, CreateOrderInput{
		ClientID:     f.client.ID,
		Items:        []ItemInput{{LabelID: label, Quantity: 1}},
		DeliveryDate: types.NewDate(day(20)),
		Discount:     decimal.NewFromInt(120),
		DiscountType: enums.DiscountPercentage,
	})
	require.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestCreateOrderChecksClientBeforeItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{ClientID: uuid.New(), DeliveryDate: types.NewDate(day(20))})
	require.ErrorIs(t, err, clients.ErrClientNotFound)
	require.Zero(t, f.count(t, &models.ClientOrder{}, ""))
}

func TestConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	f := newFixture(t)
	label := f.readyLabel(t, "Mango")

	const workers = 8
	numbers := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
				ClientID:     f.client.ID,
				Items:        []ItemInput{{LabelID: label, Quantity: 1}},
				DeliveryDate: types.NewDate(day(20)),
			})
			errs[i] = err
			if err == nil {
				numbers[i] = order.OrderNumber
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Strings(numbers)
	for i, number := range numbers {
		require.Equal(t, FormatOrderNumber(DefaultNumberPrefix, int64(i+1)), number)
	}
}

func TestUpdateOrderRepricesWaitingOrder(t *testing.T) {
	f := newFixture(t)
	mango := f.readyLabel(t, "Mango")
	order := f.createOrder(t, day(30), ItemInput{LabelID: mango, Quantity: 1})

	items := []ItemInput{{LabelID: mango, Quantity: 4}}
	flat := decimal.RequireFromString("5")
	flatType := enums.DiscountFlat
	delivery := types.NewDate(day(40))
	updated, err := f.svc.UpdateOrder(context.Background(), order.ID, UpdateOrderInput{
		Items:        &items,
		Discount:     &flat,
		DiscountType: &flatType,
		DeliveryDate: &delivery,
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	require.Equal(t, 4, updated.Items[0].Quantity)
	require.Equal(t, "21.00", updated.Subtotal.StringFixed(2))
	require.Equal(t, "16.00", updated.Total.StringFixed(2))
	require.Equal(t, types.NewDate(day(26)), updated.ProductionStartDate)
	require.EqualValues(t, 1, f.count(t, &models.ClientOrderItem{}, "order_id = ?", order.ID))
}

func TestUpdateOrderLockedOutsideWaiting(t *testing.T) {
	f := newFixture(t)
	mango := f.readyLabel(t, "Mango")
	order := f.createOrder(t, day(30), ItemInput{LabelID: mango, Quantity: 2})
	_, err := f.svc.TransitionStatus(context.Background(), order.ID, StatusInput{Status: enums.ClientOrderStage1})
	require.NoError(t, err)

	items := []ItemInput{{LabelID: mango, Quantity: 9}}
	_, err = f.svc.UpdateOrder(context.Background(), order.ID, UpdateOrderInput{Items: &items})
	require.ErrorIs(t, err, ErrOrderLocked)

	got, err := f.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Items[0].Quantity)
	require.Equal(t, order.Total.StringFixed(2), got.Total.StringFixed(2))
	require.False(t, got.CanEdit)
	require.True(t, got.IsInProduction)
}

func TestTransitionStatusEmitsAndStampsShipment(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, day(30), ItemInput{LabelID: f.readyLabel(t, "Mango"), Quantity: 1})
	ctx := context.Background()

	same, err := f.svc.TransitionStatus(ctx, order.ID, StatusInput{Status: enums.ClientOrderWaiting})
	require.NoError(t, err)
	require.Equal(t, enums.ClientOrderWaiting, same.Status)
	require.Zero(t, f.count(t, &models.OutboxEvent{}, "event_type = ?", enums.EventClientOrderStatusChanged))

	tracking := " 1Z999 "
	shipped, err := f.svc.TransitionStatus(ctx, order.ID, StatusInput{Status: enums.ClientOrderShipped, TrackingNumber: &tracking, Actor: f.actor()})
	require.NoError(t, err)
	require.Equal(t, enums.ClientOrderShipped, shipped.Status)
	require.NotNil(t, shipped.ActualShipDate)
	require.NotNil(t, shipped.TrackingNumber)
	require.Equal(t, "1Z999", *shipped.TrackingNumber)
	require.EqualValues(t, 1, f.count(t, &models.OutboxEvent{}, "event_type = ?", enums.EventClientOrderStatusChanged))

	_, err = f.svc.TransitionStatus(ctx, order.ID, StatusInput{Status: "lost"})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransitionStatusKeepsTrackingForShipment(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, day(30), ItemInput{LabelID: f.readyLabel(t, "Mango"), Quantity: 1})
	ctx := context.Background()

	tracking := "1Z999"
	staged, err := f.svc.TransitionStatus(ctx, order.ID, StatusInput{Status: enums.ClientOrderStage2, TrackingNumber: &tracking})
	require.NoError(t, err)
	require.Equal(t, enums.ClientOrderStage2, staged.Status)
	require.Nil(t, staged.TrackingNumber)
	require.Nil(t, staged.ActualShipDate)
}

func TestDeleteOrderBlockedInProduction(t *testing.T) {
	f := newFixture(t)
	label := f.readyLabel(t, "Mango")
	ctx := context.Background()

	busy := f.createOrder(t, day(30), ItemInput{LabelID: label, Quantity: 1})
	_, err := f.svc.TransitionStatus(ctx, busy.ID, StatusInput{Status: enums.ClientOrderStage3})
	require.NoError(t, err)
	require.ErrorIs(t, f.svc.DeleteOrder(ctx, busy.ID), ErrOrderInProduction)

	idle := f.createOrder(t, day(30), ItemInput{LabelID: label, Quantity: 1})
	require.NoError(t, f.svc.DeleteOrder(ctx, idle.ID))
	require.Zero(t, f.count(t, &models.ClientOrderItem{}, "order_id = ?", idle.ID))
	_, err = f.svc.GetOrder(ctx, idle.ID)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPushToProductionStartsToday(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, day(60), ItemInput{LabelID: f.readyLabel(t, "Mango"), Quantity: 1})
	ctx := context.Background()

	pushed, err := f.svc.PushToProduction(ctx, order.ID, f.actor())
	require.NoError(t, err)
	require.Equal(t, enums.ClientOrderStage1, pushed.Status)
	require.Equal(t, types.NewDate(day(0)), pushed.ProductionStartDate)

	_, err = f.svc.PushToProduction(ctx, order.ID, f.actor())
	require.ErrorIs(t, err, ErrNotWaiting)
}

func TestUpdateDeliveryDateFollowsStatus(t *testing.T) {
	f := newFixture(t)
	label := f.readyLabel(t, "Mango")
	ctx := context.Background()

	waiting := f.createOrder(t, day(30), ItemInput{LabelID: label, Quantity: 1})
	moved, err := f.svc.UpdateDeliveryDate(ctx, waiting.ID, DeliveryDateInput{DeliveryDate: types.NewDate(day(50))})
	require.NoError(t, err)
	require.Equal(t, types.NewDate(day(36)), moved.ProductionStartDate)

	running := f.createOrder(t, day(30), ItemInput{LabelID: label, Quantity: 1})
	_, err = f.svc.TransitionStatus(ctx, running.ID, StatusInput{Status: enums.ClientOrderStage2})
	require.NoError(t, err)
	moved, err = f.svc.UpdateDeliveryDate(ctx, running.ID, DeliveryDateInput{DeliveryDate: types.NewDate(day(50))})
	require.NoError(t, err)
	require.Equal(t, types.NewDate(day(50)), moved.DeliveryDate)
	require.Equal(t, running.ProductionStartDate, moved.ProductionStartDate)
}

func TestToggleShipASAP(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, day(30), ItemInput{LabelID: f.readyLabel(t, "Mango"), Quantity: 1})
	ctx := context.Background()

	flipped, err := f.svc.ToggleShipASAP(ctx, order.ID, ShipASAPInput{})
	require.NoError(t, err)
	require.True(t, flipped.ShipASAP)

	off := false
	set, err := f.svc.ToggleShipASAP(ctx, order.ID, ShipASAPInput{Value: &off})
	require.NoError(t, err)
	require.False(t, set.ShipASAP)
}

func TestSweepQueries(t *testing.T) {
	f := newFixture(t)
	label := f.readyLabel(t, "Mango")
	ctx := context.Background()

	due := f.createOrder(t, day(10), ItemInput{LabelID: label, Quantity: 1})
	f.createOrder(t, day(40), ItemInput{LabelID: label, Quantity: 1})
	asap := f.createOrder(t, day(3), ItemInput{LabelID: label, Quantity: 1})
	_, err := f.svc.ToggleShipASAP(ctx, asap.ID, ShipASAPInput{})
	require.NoError(t, err)

	ids, err := f.svc.DueForProduction(ctx)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{due.ID}, ids)

	remind := f.createOrder(t, day(DefaultReminderLeadDays), ItemInput{LabelID: label, Quantity: 1})
	_, err = f.svc.TransitionStatus(ctx, remind.ID, StatusInput{Status: enums.ClientOrderStage2})
	require.NoError(t, err)
	ids, err = f.svc.ReminderCandidates(ctx)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{remind.ID}, ids)

	sent, err := f.svc.repo.MarkNotificationSent(ctx, remind.ID, enums.NotifySevenDayReminder)
	require.NoError(t, err)
	require.True(t, sent)
	ids, err = f.svc.ReminderCandidates(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestListOrdersFilters(t *testing.T) {
	f := newFixture(t)
	label := f.readyLabel(t, "Mango")
	ctx := context.Background()

	first := f.createOrder(t, day(20), ItemInput{LabelID: label, Quantity: 1})
	second := f.createOrder(t, day(40), ItemInput{LabelID: label, Quantity: 1})
	_, err := f.svc.TransitionStatus(ctx, second.ID, StatusInput{Status: enums.ClientOrderStage1})
	require.NoError(t, err)

	res, err := f.svc.ListOrders(ctx, ListOrdersInput{Statuses: []enums.ClientOrderStatus{enums.ClientOrderWaiting}})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	require.Equal(t, first.ID, res.Items[0].ID)

	res, err = f.svc.ListOrders(ctx, ListOrdersInput{Search: "green", Page: pagination.Params{Page: 1, Limit: 1}})
	require.NoError(t, err)
	require.EqualValues(t, 2, res.Total)
	require.Len(t, res.Items, 1)

	to := types.NewDate(day(30))
	res, err = f.svc.ListOrders(ctx, ListOrdersInput{DeliveryTo: &to})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)

	res, err = f.svc.ListOrders(ctx, ListOrdersInput{Search: "nobody"})
	require.NoError(t, err)
	require.Zero(t, res.Total)

	_, err = f.svc.ListOrders(ctx, ListOrdersInput{Statuses: []enums.ClientOrderStatus{"lost"}})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestGetOrderEnrichesClientAndRep(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, day(30), ItemInput{LabelID: f.readyLabel(t, "Mango"), Quantity: 1})

	detail, err := f.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Client)
	require.Equal(t, "Green Leaf", detail.Client.StoreName)
	require.Equal(t, "Riley Rep", detail.RepName)
	require.True(t, detail.CanEdit)
	require.False(t, detail.IsInProduction)
}

func TestExportProductionSchedule(t *testing.T) {
	f := newFixture(t)
	label := f.readyLabel(t, "Mango")
	ctx := context.Background()

	late := f.createOrder(t, day(45), ItemInput{LabelID: label, Quantity: 2})
	early := f.createOrder(t, day(20), ItemInput{LabelID: label, Quantity: 1})
	done := f.createOrder(t, day(25), ItemInput{LabelID: label, Quantity: 1})
	_, err := f.svc.TransitionStatus(ctx, done.ID, StatusInput{Status: enums.ClientOrderShipped})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportProductionSchedule(ctx, ListOrdersInput{}, &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Order #", rows[0][0])
	require.Equal(t, early.OrderNumber, rows[1][0])
	require.Equal(t, "Green Leaf", rows[1][1])
	require.Equal(t, late.OrderNumber, rows[2][0])
	require.Equal(t, "Mango (BIOMAX) x2", rows[2][6])
	require.Equal(t, "Riley Rep", rows[2][8])

	buf.Reset()
	require.NoError(t, f.svc.ExportProductionSchedule(ctx, ListOrdersInput{Statuses: []enums.ClientOrderStatus{enums.ClientOrderShipped}}, &buf))
	book, err = excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err = book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, done.OrderNumber, rows[1][0])
}

func TestStartScheduledProductionOnlyMovesWaiting(t *testing.T) {
	f := newFixture(t)
	label := f.readyLabel(t, "Mango")
	ctx := context.Background()

	waiting := f.createOrder(t, day(10), ItemInput{LabelID: label, Quantity: 1})
	started, err := f.svc.StartScheduledProduction(ctx, waiting.ID)
	require.NoError(t, err)
	require.True(t, started)

	got, err := f.svc.GetOrder(ctx, waiting.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ClientOrderStage1, got.Status)
	require.Equal(t, waiting.ProductionStartDate, got.ProductionStartDate)

	started, err = f.svc.StartScheduledProduction(ctx, waiting.ID)
	require.NoError(t, err)
	require.False(t, started)
	require.EqualValues(t, 1, f.count(t, &models.OutboxEvent{}, "event_type = ?", enums.EventClientOrderStatusChanged))
}
