package registry

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox/payloads"
)

func TestDecoderRegistry(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventLabelReachedProduction, 1, func(payload json.RawMessage) (interface{}, error) {
		var decoded map[string]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})

	output, err := reg.Decode(enums.EventLabelReachedProduction, 1, json.RawMessage(`{"label_id":"x"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outMap, ok := output.(map[string]string); !ok || outMap["label_id"] != "x" {
		t.Fatalf("unexpected output %+v", output)
	}

	if _, err := reg.Decode(enums.EventLabelReachedProduction, 2, nil); err == nil {
		t.Fatalf("expected missing version to fail")
	}
}

func TestClientOrderDecoders(t *testing.T) {
	reg := NewClientOrderDecoders()
	orderID := uuid.New()

	out, err := reg.Decode(enums.EventClientOrderStatusChanged, 1, json.RawMessage(`{"order_id":"`+orderID.String()+`","from":"stage_4","to":"ready_to_ship"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	event, ok := out.(*payloads.ClientOrderStatusChangedEvent)
	if !ok {
		t.Fatalf("unexpected type %T", out)
	}
	if event.OrderID != orderID || event.To != enums.ClientOrderReadyToShip {
		t.Fatalf("unexpected payload %+v", event)
	}
}
