package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db/dbtest"
	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox/payloads"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

func openOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, dbtest.OutboxEventsDDL)
}

func TestEmitWritesEnvelopeInsideTx(t *testing.T) {
	conn := openOutboxDB(t)
	repo := NewRepository(conn)
	svc := NewService(repo, logger.Nop())
	orderID := uuid.New()
	actor := &types.Actor{Kind: enums.ActorAdmin, ID: uuid.New()}

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventClientOrderCreated,
			AggregateType: enums.AggregateClientOrder,
			AggregateID:   orderID,
			Actor:         actor,
			Data:          payloads.ClientOrderCreatedEvent{OrderID: orderID, OrderNumber: "PL-00001"},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, orderID, rows[0].AggregateID)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	require.Equal(t, rows[0].ID.String(), envelope.EventID)
	require.Equal(t, 1, envelope.Version)
	require.Equal(t, actor.ID, envelope.Actor.ID)

	var data payloads.ClientOrderCreatedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.Equal(t, "PL-00001", data.OrderNumber)
}

func TestEmitRolledBackWithTx(t *testing.T) {
	conn := openOutboxDB(t)
	svc := NewService(NewRepository(conn), nil)

	boom := errors.New("boom")
	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventLabelReachedProduction,
			AggregateType: enums.AggregateLabel,
			AggregateID:   uuid.New(),
			Data:          payloads.LabelReachedProductionEvent{},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestEmitRejectsUnknownTypes(t *testing.T) {
	conn := openOutboxDB(t)
	svc := NewService(NewRepository(conn), nil)

	err := svc.Emit(context.Background(), conn, DomainEvent{
		EventType:     enums.OutboxEventType("nope"),
		AggregateType: enums.AggregateClientOrder,
	})
	require.Error(t, err)
	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	conn := openOutboxDB(t)
	repo := NewRepository(conn)

	first := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventClientOrderCreated, AggregateType: enums.AggregateClientOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	second := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventClientOrderStatusChanged, AggregateType: enums.AggregateClientOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	require.NoError(t, repo.Insert(conn, first))
	require.NoError(t, repo.Insert(conn, second))

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, repo.MarkPublishedTx(conn, first.ID))
	require.NoError(t, repo.MarkTerminalTx(conn, second.ID, errors.New("bad payload"), 5))

	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 5)
	require.NoError(t, err)
	require.Empty(t, rows)

	deleted, err := repo.DeletePublishedBefore(conn, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
}

func TestMarkFailedIncrementsAttempts(t *testing.T) {
	conn := openOutboxDB(t)
	repo := NewRepository(conn)
	event := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventClientOrderCreated, AggregateType: enums.AggregateClientOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	require.NoError(t, repo.Insert(conn, event))

	require.NoError(t, repo.MarkFailedTx(conn, event.ID, errors.New("pubsub down")))
	require.NoError(t, repo.MarkFailedTx(conn, event.ID, errors.New("pubsub down")))

	var stored models.OutboxEvent
	require.NoError(t, conn.First(&stored, "id = ?", event.ID).Error)
	require.Equal(t, 2, stored.AttemptCount)
	require.NotNil(t, stored.LastError)
}
