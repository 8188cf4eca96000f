package labels

import (
	"time"

	"github.com/google/uuid"

	"github.com/shohaib1996/better-edible-backend/internal/directory"
	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

type LabelDTO struct {
	ID           uuid.UUID          `json:"id"`
	ClientID     uuid.UUID          `json:"client_id"`
	FlavorName   string             `json:"flavor_name"`
	ProductType  string             `json:"product_type"`
	CurrentStage enums.LabelStage   `json:"current_stage"`
	StageHistory []StageEntryDTO    `json:"stage_history"`
	Images       []types.LabelImage `json:"label_images"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type StageEntryDTO struct {
	Stage     enums.LabelStage    `json:"stage"`
	ChangedBy *directory.ActorRef `json:"changed_by,omitempty"`
	ChangedAt time.Time           `json:"changed_at"`
	Notes     string              `json:"notes,omitempty"`
}

func mapLabelDTO(label models.Label) LabelDTO {
	history := make([]StageEntryDTO, 0, len(label.StageHistory))
	for _, entry := range label.StageHistory {
		dto := StageEntryDTO{Stage: entry.Stage, ChangedAt: entry.ChangedAt, Notes: entry.Notes}
		if entry.ChangedBy != nil {
			dto.ChangedBy = &directory.ActorRef{Kind: entry.ChangedBy.Kind, ID: entry.ChangedBy.ID}
		}
		history = append(history, dto)
	}
	images := label.Images
	if images == nil {
		images = types.LabelImages{}
	}
	return LabelDTO{
		ID:           label.ID,
		ClientID:     label.ClientID,
		FlavorName:   label.FlavorName,
		ProductType:  label.ProductType,
		CurrentStage: label.CurrentStage,
		StageHistory: history,
		Images:       images,
		CreatedAt:    label.CreatedAt,
		UpdatedAt:    label.UpdatedAt,
	}
}
