package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shohaib1996/better-edible-backend/pkg/enums"
)

// PrivateLabelClient enrolls a store in the private label program.
type PrivateLabelClient struct {
	ID                uuid.UUID                      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID           uuid.UUID                      `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_private_label_clients_store"`
	Status            enums.PrivateLabelClientStatus `gorm:"column:status;type:text;not null"`
	ContactEmail      string                         `gorm:"column:contact_email;not null"`
	AssignedRepID     *uuid.UUID                     `gorm:"column:assigned_rep_id;type:uuid"`
	RecurringEnabled  bool                           `gorm:"column:recurring_enabled;not null"`
	RecurringInterval *enums.RecurringInterval       `gorm:"column:recurring_interval;type:text"`
	CreatedAt         time.Time                      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                      `gorm:"column:updated_at;autoUpdateTime"`
}
