package clients

import (
	"time"

	"github.com/google/uuid"

	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
)

// ClientDTO is the API view of a private label client.
type ClientDTO struct {
	ID                uuid.UUID                      `json:"id"`
	StoreID           uuid.UUID                      `json:"store_id"`
	StoreName         string                         `json:"store_name,omitempty"`
	Status            enums.PrivateLabelClientStatus `json:"status"`
	ContactEmail      string                         `json:"contact_email"`
	AssignedRepID     *uuid.UUID                     `json:"assigned_rep_id,omitempty"`
	AssignedRepName   string                         `json:"assigned_rep_name,omitempty"`
	RecurringSchedule RecurringScheduleDTO           `json:"recurring_schedule"`
	CreatedAt         time.Time                      `json:"created_at"`
	UpdatedAt         time.Time                      `json:"updated_at"`
}

type RecurringScheduleDTO struct {
	Enabled  bool                     `json:"enabled"`
	Interval *enums.RecurringInterval `json:"interval,omitempty"`
}

func mapClientDTO(client models.PrivateLabelClient, storeNames, repNames map[uuid.UUID]string) ClientDTO {
	dto := ClientDTO{
		ID:            client.ID,
		StoreID:       client.StoreID,
		StoreName:     storeNames[client.StoreID],
		Status:        client.Status,
		ContactEmail:  client.ContactEmail,
		AssignedRepID: client.AssignedRepID,
		RecurringSchedule: RecurringScheduleDTO{
			Enabled:  client.RecurringEnabled,
			Interval: client.RecurringInterval,
		},
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
	if client.AssignedRepID != nil {
		dto.AssignedRepName = repNames[*client.AssignedRepID]
	}
	return dto
}
