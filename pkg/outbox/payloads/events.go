package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/shohaib1996/better-edible-backend/pkg/enums"
)

// ClientOrderCreatedEvent is emitted when an order is persisted, either by an
// operator or by the recurring generator.
type ClientOrderCreatedEvent struct {
	OrderID       uuid.UUID  `json:"order_id"`
	OrderNumber   string     `json:"order_number"`
	ClientID      uuid.UUID  `json:"client_id"`
	IsRecurring   bool       `json:"is_recurring"`
	ParentOrderID *uuid.UUID `json:"parent_order_id,omitempty"`
}

// ClientOrderStatusChangedEvent is emitted after a status transition commits.
type ClientOrderStatusChangedEvent struct {
	OrderID        uuid.UUID               `json:"order_id"`
	OrderNumber    string                  `json:"order_number"`
	ClientID       uuid.UUID               `json:"client_id"`
	From           enums.ClientOrderStatus `json:"from"`
	To             enums.ClientOrderStatus `json:"to"`
	TrackingNumber *string                 `json:"tracking_number,omitempty"`
	ChangedAt      time.Time               `json:"changed_at"`
}

// LabelReachedProductionEvent is emitted when a label enters the terminal
// ready_for_production stage.
type LabelReachedProductionEvent struct {
	LabelID   uuid.UUID `json:"label_id"`
	ClientID  uuid.UUID `json:"client_id"`
	ReachedAt time.Time `json:"reached_at"`
}
