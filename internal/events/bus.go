// Package events carries in-process domain events that must be handled inside
// the transaction that raised them. Side effects that may run later go
// through the outbox instead.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

// LabelReachedProduction is raised when a label enters ready_for_production.
type LabelReachedProduction struct {
	LabelID   uuid.UUID
	ClientID  uuid.UUID
	ReachedAt time.Time
	Actor     *types.Actor
}

// LabelReachedProductionHandler reacts to LabelReachedProduction using tx.
type LabelReachedProductionHandler interface {
	HandleLabelReachedProduction(ctx context.Context, tx *gorm.DB, event LabelReachedProduction) error
}

// HandlerFunc adapts a function to LabelReachedProductionHandler.
type HandlerFunc func(ctx context.Context, tx *gorm.DB, event LabelReachedProduction) error

func (f HandlerFunc) HandleLabelReachedProduction(ctx context.Context, tx *gorm.DB, event LabelReachedProduction) error {
	return f(ctx, tx, event)
}

// Bus fans events out to subscribers synchronously, in subscription order.
// The first handler error aborts the dispatch so the caller can roll back.
type Bus struct {
	mu       sync.RWMutex
	handlers []LabelReachedProductionHandler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SubscribeLabelReachedProduction(h LabelReachedProductionHandler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) PublishLabelReachedProduction(ctx context.Context, tx *gorm.DB, event LabelReachedProduction) error {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	handlers := append([]LabelReachedProductionHandler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.HandleLabelReachedProduction(ctx, tx, event); err != nil {
			return fmt.Errorf("handle label reached production: %w", err)
		}
	}
	return nil
}
