package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateClientOrder OutboxAggregateType = "client_order"
	AggregateLabel       OutboxAggregateType = "label"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateClientOrder,
	AggregateLabel,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventClientOrderCreated       OutboxEventType = "client_order_created"
	EventClientOrderStatusChanged OutboxEventType = "client_order_status_changed"
	EventLabelReachedProduction   OutboxEventType = "label_reached_production"
)

var validEventTypes = []OutboxEventType{
	EventClientOrderCreated,
	EventClientOrderStatusChanged,
	EventLabelReachedProduction,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
