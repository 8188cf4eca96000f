package outbox

import (
	"encoding/json"
	"time"

	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

// PayloadEnvelope is the stable payload structure stored in outbox_events and
// published as the Pub/Sub message body.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *types.Actor    `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
