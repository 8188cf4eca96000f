package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/shohaib1996/better-edible-backend/internal/clientorders"
	"github.com/shohaib1996/better-edible-backend/internal/labels"
	"github.com/shohaib1996/better-edible-backend/pkg/config"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/metrics"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

type memoryStore struct {
	data map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string { return scope + ":" + id }

type countingOrders struct {
	clientorders.Service
	creates int
	pushes  int
}

func (c *countingOrders) CreateOrder(context.Context, clientorders.CreateOrderInput) (*clientorders.OrderDTO, error) {
	c.creates++
	return &clientorders.OrderDTO{ID: uuid.New(), OrderNumber: fmt.Sprintf("PL-%05d", c.creates)}, nil
}

func (c *countingOrders) PushToProduction(_ context.Context, id uuid.UUID, _ *types.Actor) (*clientorders.OrderDTO, error) {
	c.pushes++
	return &clientorders.OrderDTO{ID: id, Status: enums.ClientOrderStage1}, nil
}

type recordingLabels struct {
	labels.Service
	publicID string
}

func (r *recordingLabels) DeleteImage(_ context.Context, id uuid.UUID, publicID string) (*labels.LabelDTO, error) {
	r.publicID = publicID
	return &labels.LabelDTO{ID: id}, nil
}

func newTestRouter(t *testing.T, orders clientorders.Service, lbls labels.Service) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics.NewNotificationMetrics(reg).Observe(string(enums.NotifyOrderCreated), metrics.OutcomeSent)
	return NewRouter(Dependencies{
		Config:       &config.Config{App: config.AppConfig{Env: "test"}},
		Logger:       logger.Nop(),
		Idempotency:  &memoryStore{data: map[string]string{}},
		Gatherer:     reg,
		ClientOrders: orders,
		Labels:       lbls,
	})
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, &countingOrders{}, &recordingLabels{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	require.Contains(t, string(body), "notifications_sent_total")
}

func TestRouterReplaysIdempotentOrderCreate(t *testing.T) {
	orders := &countingOrders{}
	router := newTestRouter(t, orders, &recordingLabels{})
	payload := `{"client_id":"` + uuid.NewString() + `","items":[{"label_id":"` + uuid.NewString() + `","quantity":2}],"delivery_date":"2026-05-01"}`

	var bodies []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/client-orders", strings.NewReader(payload))
		req.Header.Set("Idempotency-Key", "order-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		bodies = append(bodies, rec.Body.String())
	}
	require.Equal(t, 1, orders.creates)
	require.Equal(t, bodies[0], bodies[1])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/client-orders", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 2, orders.creates)
}

func TestRouterPushToProductionIsIdempotent(t *testing.T) {
	orders := &countingOrders{}
	router := newTestRouter(t, orders, &recordingLabels{})
	path := "/api/v1/client-orders/" + uuid.NewString() + "/push-to-production"

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Idempotency-Key", "push-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Equal(t, 1, orders.pushes)
}

func TestRouterDeleteLabelImageKeepsSlashes(t *testing.T) {
	lbls := &recordingLabels{}
	router := newTestRouter(t, &countingOrders{}, lbls)
	path := "/api/v1/private-label/labels/" + uuid.NewString() + "/images/private-labels/c1/art.png"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "private-labels/c1/art.png", lbls.publicID)
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t, &countingOrders{}, &recordingLabels{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
