package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateUnmarshalAcceptsBothLayouts(t *testing.T) {
	type payload struct {
		On Date `json:"on"`
	}
	for _, raw := range []string{`{"on":"2026-01-15"}`, `{"on":"2026-01-15T18:30:00-08:00"}`} {
		var got payload
		if err := json.Unmarshal([]byte(raw), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
		if !got.On.Equal(want) {
			t.Fatalf("%s: expected %v got %v", raw, want, got.On.Time)
		}
	}

	var bad payload
	if err := json.Unmarshal([]byte(`{"on":"15/01/2026"}`), &bad); err == nil {
		t.Fatalf("expected invalid layout to fail")
	}
}

func TestDateMarshal(t *testing.T) {
	out, err := json.Marshal(NewDate(time.Date(2026, 2, 15, 23, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2026-02-15"` {
		t.Fatalf("unexpected output %s", out)
	}
}
