package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shohaib1996/better-edible-backend/pkg/enums"
)

// ClientOrder is a private label production order.
type ClientOrder struct {
	ID                  uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderSeq            int64                   `gorm:"column:order_seq;not null"`
	OrderNumber         string                  `gorm:"column:order_number;not null;uniqueIndex:ux_client_orders_number"`
	ClientID            uuid.UUID               `gorm:"column:client_id;type:uuid;not null;index"`
	AssignedRepID       *uuid.UUID              `gorm:"column:assigned_rep_id;type:uuid"`
	CreatedByKind       *enums.ActorKind        `gorm:"column:created_by_kind;type:text"`
	CreatedByID         *uuid.UUID              `gorm:"column:created_by_id;type:uuid"`
	Status              enums.ClientOrderStatus `gorm:"column:status;type:text;not null"`
	DeliveryDate        time.Time               `gorm:"column:delivery_date;type:date;not null"`
	ProductionStartDate time.Time               `gorm:"column:production_start_date;type:date;not null"`
	ActualShipDate      *time.Time              `gorm:"column:actual_ship_date"`
	Items               []ClientOrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal            decimal.Decimal         `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount            decimal.Decimal         `gorm:"column:discount;type:numeric(12,4);not null"`
	DiscountType        enums.DiscountType      `gorm:"column:discount_type;type:text;not null"`
	DiscountAmount      decimal.Decimal         `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	Total               decimal.Decimal         `gorm:"column:total;type:numeric(12,2);not null"`
	Note                string                  `gorm:"column:note;not null"`
	IsRecurring         bool                    `gorm:"column:is_recurring;not null"`
	ParentOrderID       *uuid.UUID              `gorm:"column:parent_order_id;type:uuid"`
	ShipASAP            bool                    `gorm:"column:ship_asap;not null"`
	TrackingNumber      *string                 `gorm:"column:tracking_number"`
	EmailsSent          EmailsSent              `gorm:"embedded;embeddedPrefix:emails_sent_"`
	CreatedAt           time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// EmailsSent holds the at-most-once notification flags of an order.
type EmailsSent struct {
	OrderCreated      bool `gorm:"column:order_created;not null"`
	ProductionStarted bool `gorm:"column:production_started;not null"`
	SevenDayReminder  bool `gorm:"column:seven_day_reminder;not null"`
	ReadyToShip       bool `gorm:"column:ready_to_ship;not null"`
	Shipped           bool `gorm:"column:shipped;not null"`
}

// ClientOrderItem freezes a label's name and price at the time it was ordered.
type ClientOrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	Position    int             `gorm:"column:position;not null"`
	LabelID     uuid.UUID       `gorm:"column:label_id;type:uuid;not null;index"`
	FlavorName  string          `gorm:"column:flavor_name;not null"`
	ProductType string          `gorm:"column:product_type;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
