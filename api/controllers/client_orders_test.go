package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	ordersvc "github.com/shohaib1996/better-edible-backend/internal/clientorders"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/pagination"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

type stubOrderService struct {
	ordersvc.Service

	createInput ordersvc.CreateOrderInput
	createErr   error
	listInput   ordersvc.ListOrdersInput
	statusInput ordersvc.StatusInput
	shipInput   ordersvc.ShipASAPInput
	pushActor   *types.Actor
	exported    bool
}

func (s *stubOrderService) CreateOrder(_ context.Context, input ordersvc.CreateOrderInput) (*ordersvc.OrderDTO, error) {
	s.createInput = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &ordersvc.OrderDTO{ID: uuid.New(), OrderNumber: "PL-00001", Status: enums.ClientOrderWaiting}, nil
}

func (s *stubOrderService) ListOrders(_ context.Context, input ordersvc.ListOrdersInput) (pagination.Result[ordersvc.OrderDTO], error) {
	s.listInput = input
	return pagination.NewResult([]ordersvc.OrderDTO{{OrderNumber: "PL-00001"}}, input.Page, 1), nil
}

func (s *stubOrderService) TransitionStatus(_ context.Context, id uuid.UUID, input ordersvc.StatusInput) (*ordersvc.OrderDTO, error) {
	s.statusInput = input
	return &ordersvc.OrderDTO{ID: id, Status: input.Status}, nil
}

func (s *stubOrderService) ToggleShipASAP(_ context.Context, id uuid.UUID, input ordersvc.ShipASAPInput) (*ordersvc.OrderDTO, error) {
	s.shipInput = input
	return &ordersvc.OrderDTO{ID: id, ShipASAP: true}, nil
}

func (s *stubOrderService) PushToProduction(_ context.Context, id uuid.UUID, actor *types.Actor) (*ordersvc.OrderDTO, error) {
	s.pushActor = actor
	return &ordersvc.OrderDTO{ID: id, Status: enums.ClientOrderStage1}, nil
}

func (s *stubOrderService) ExportProductionSchedule(_ context.Context, _ ordersvc.ListOrdersInput, w io.Writer) error {
	s.exported = true
	_, err := w.Write([]byte("PK-fake-xlsx"))
	return err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var env types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error
}

func TestCreateClientOrder(t *testing.T) {
	clientID := uuid.New()
	labelID := uuid.New()
	adminID := uuid.New()

	t.Run("success", func(t *testing.T) {
		stub := &stubOrderService{}
		body := `{"client_id":"` + clientID.String() + `","items":[{"label_id":"` + labelID.String() + `","quantity":3}],` +
			`"delivery_date":"2026-04-01","discount":"10","discount_type":"percentage","actor":{"kind":"admin","id":"` + adminID.String() + `"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/client-orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateClientOrder(stub, logger.Nop()).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, clientID, stub.createInput.ClientID)
		require.Equal(t, []ordersvc.ItemInput{{LabelID: labelID, Quantity: 3}}, stub.createInput.Items)
		require.Equal(t, "2026-04-01", stub.createInput.DeliveryDate.String())
		require.True(t, decimal.NewFromInt(10).Equal(stub.createInput.Discount))
		require.Equal(t, enums.DiscountPercentage, stub.createInput.DiscountType)
		require.Equal(t, adminID, stub.createInput.Actor.ID)
	})

	t.Run("defaults to flat discount", func(t *testing.T) {
		stub := &stubOrderService{}
		body := `{"client_id":"` + clientID.String() + `","items":[{"label_id":"` + labelID.String() + `","quantity":1}],"delivery_date":"2026-04-01"}`
		rec := httptest.NewRecorder()
		CreateClientOrder(stub, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, enums.DiscountFlat, stub.createInput.DiscountType)
		require.Nil(t, stub.createInput.Actor)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		body := `{"client_id":"` + clientID.String() + `","items":[],"delivery_date":"2026-04-01"}`
		rec := httptest.NewRecorder()
		CreateClientOrder(&stubOrderService{}, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, rec).Code)
	})

	t.Run("rejects bad actor kind", func(t *testing.T) {
		body := `{"client_id":"` + clientID.String() + `","items":[{"label_id":"` + labelID.String() + `","quantity":1}],` +
			`"delivery_date":"2026-04-01","actor":{"kind":"store","id":"` + adminID.String() + `"}}`
		rec := httptest.NewRecorder()
		CreateClientOrder(&stubOrderService{}, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing delivery date", func(t *testing.T) {
		body := `{"client_id":"` + clientID.String() + `","items":[{"label_id":"` + labelID.String() + `","quantity":1}]}`
		rec := httptest.NewRecorder()
		CreateClientOrder(&stubOrderService{}, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps label not ready", func(t *testing.T) {
		stub := &stubOrderService{createErr: pkgerrors.Wrap(pkgerrors.CodeStateConflict, ordersvc.ErrLabelNotReady, "label Mango is not ready")}
		body := `{"client_id":"` + clientID.String() + `","items":[{"label_id":"` + labelID.String() + `","quantity":1}],"delivery_date":"2026-04-01"}`
		rec := httptest.NewRecorder()
		CreateClientOrder(stub, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, string(pkgerrors.CodeStateConflict), decodeError(t, rec).Code)
	})
}

func TestListClientOrdersParsesFilters(t *testing.T) {
	stub := &stubOrderService{}
	clientID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/client-orders?status=waiting,stage_1&client_id="+clientID.String()+
		"&delivery_from=2026-03-01&delivery_to=2026-03-31&search=green&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	ListClientOrders(stub, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []enums.ClientOrderStatus{enums.ClientOrderWaiting, enums.ClientOrderStage1}, stub.listInput.Statuses)
	require.Equal(t, clientID, *stub.listInput.ClientID)
	require.Equal(t, "2026-03-01", stub.listInput.DeliveryFrom.String())
	require.Equal(t, "2026-03-31", stub.listInput.DeliveryTo.String())
	require.Equal(t, "green", stub.listInput.Search)
	require.Equal(t, pagination.Params{Page: 2, Limit: 10}, stub.listInput.Page)

	var body struct {
		Data []ordersvc.OrderDTO `json:"data"`
		Meta types.PageMeta      `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	require.Equal(t, int64(1), body.Meta.Total)
}

func TestListClientOrdersRejectsUnknownStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	ListClientOrders(&stubOrderService{}, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?status=lost", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportClientOrdersWritesSpreadsheet(t *testing.T) {
	stub := &stubOrderService{}
	rec := httptest.NewRecorder()
	ExportClientOrders(stub, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?status=shipped", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, stub.exported)
	require.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "production-schedule-")
	require.Equal(t, "PK-fake-xlsx", rec.Body.String())
}

func TestUpdateClientOrderStatus(t *testing.T) {
	stub := &stubOrderService{}
	id := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"shipped","tracking_number":"1Z999"}`)), "id", id.String())
	rec := httptest.NewRecorder()
	UpdateClientOrderStatus(stub, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, enums.ClientOrderShipped, stub.statusInput.Status)
	require.Equal(t, "1Z999", *stub.statusInput.TrackingNumber)

	bad := withURLParam(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"done"}`)), "id", id.String())
	rec = httptest.NewRecorder()
	UpdateClientOrderStatus(stub, logger.Nop()).ServeHTTP(rec, bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleShipASAPAcceptsEmptyBody(t *testing.T) {
	stub := &stubOrderService{}
	id := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/", nil), "id", id.String())
	rec := httptest.NewRecorder()
	ToggleClientOrderShipASAP(stub, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, stub.shipInput.Value)

	req = withURLParam(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"ship_asap":false}`)), "id", id.String())
	rec = httptest.NewRecorder()
	ToggleClientOrderShipASAP(stub, logger.Nop()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.shipInput.Value)
	require.False(t, *stub.shipInput.Value)
}

func TestPushClientOrderToProduction(t *testing.T) {
	stub := &stubOrderService{}
	repID := uuid.New()
	id := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"actor":{"kind":"rep","id":"`+repID.String()+`"}}`)), "id", id.String())
	rec := httptest.NewRecorder()
	PushClientOrderToProduction(stub, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, enums.ActorRep, stub.pushActor.Kind)

	req = withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", "nope")
	rec = httptest.NewRecorder()
	PushClientOrderToProduction(stub, logger.Nop()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientOrderControllersRequireService(t *testing.T) {
	rec := httptest.NewRecorder()
	GetClientOrder(nil, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
