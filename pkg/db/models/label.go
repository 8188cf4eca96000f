package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

// Label is one flavor/product-type design owned by a private label client.
type Label struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID     uuid.UUID          `gorm:"column:client_id;type:uuid;not null;index"`
	FlavorName   string             `gorm:"column:flavor_name;not null"`
	ProductType  string             `gorm:"column:product_type;not null"`
	CurrentStage enums.LabelStage   `gorm:"column:current_stage;type:text;not null"`
	StageHistory types.StageHistory `gorm:"column:stage_history;type:jsonb;serializer:json;not null"`
	Images       types.LabelImages  `gorm:"column:label_images;type:jsonb;serializer:json;not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
