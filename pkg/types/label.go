package types

import (
	"time"

	"github.com/shohaib1996/better-edible-backend/pkg/enums"
)

// StageHistoryEntry is one append-only record of a label stage change.
type StageHistoryEntry struct {
	Stage     enums.LabelStage `json:"stage"`
	ChangedBy *Actor           `json:"changed_by,omitempty"`
	ChangedAt time.Time        `json:"changed_at"`
	Notes     string           `json:"notes,omitempty"`
}

type StageHistory []StageHistoryEntry

// Last returns the most recent entry, if any.
func (h StageHistory) Last() (StageHistoryEntry, bool) {
	if len(h) == 0 {
		return StageHistoryEntry{}, false
	}
	return h[len(h)-1], true
}

// LabelImage is the metadata kept for an uploaded label artwork file.
type LabelImage struct {
	URL        string    `json:"url"`
	SecureURL  string    `json:"secure_url"`
	PublicID   string    `json:"public_id"`
	Format     string    `json:"format"`
	Bytes      int64     `json:"bytes"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type LabelImages []LabelImage

// Without returns the images minus the one with publicID, and whether it was found.
func (imgs LabelImages) Without(publicID string) (LabelImages, bool) {
	out := make(LabelImages, 0, len(imgs))
	found := false
	for _, img := range imgs {
		if img.PublicID == publicID {
			found = true
			continue
		}
		out = append(out, img)
	}
	return out, found
}
