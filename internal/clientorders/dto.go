package clientorders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

type OrderItemDTO struct {
	LabelID     uuid.UUID       `json:"label_id"`
	FlavorName  string          `json:"flavor_name"`
	ProductType string          `json:"product_type"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type EmailsSentDTO struct {
	OrderCreated      bool `json:"order_created"`
	ProductionStarted bool `json:"production_started"`
	SevenDayReminder  bool `json:"seven_day_reminder"`
	ReadyToShip       bool `json:"ready_to_ship"`
	Shipped           bool `json:"shipped"`
}

// OrderDTO is the API view of a client order.
type OrderDTO struct {
	ID                  uuid.UUID               `json:"id"`
	OrderNumber         string                  `json:"order_number"`
	ClientID            uuid.UUID               `json:"client_id"`
	AssignedRepID       *uuid.UUID              `json:"assigned_rep_id,omitempty"`
	CreatedBy           *types.Actor            `json:"created_by,omitempty"`
	Status              enums.ClientOrderStatus `json:"status"`
	DeliveryDate        types.Date              `json:"delivery_date"`
	ProductionStartDate types.Date              `json:"production_start_date"`
	ActualShipDate      *time.Time              `json:"actual_ship_date,omitempty"`
	Items               []OrderItemDTO          `json:"items"`
	Subtotal            decimal.Decimal         `json:"subtotal"`
	Discount            decimal.Decimal         `json:"discount"`
	DiscountType        enums.DiscountType      `json:"discount_type"`
	DiscountAmount      decimal.Decimal         `json:"discount_amount"`
	Total               decimal.Decimal         `json:"total"`
	Note                string                  `json:"note"`
	IsRecurring         bool                    `json:"is_recurring"`
	ParentOrderID       *uuid.UUID              `json:"parent_order_id,omitempty"`
	ShipASAP            bool                    `json:"ship_asap"`
	TrackingNumber      *string                 `json:"tracking_number,omitempty"`
	EmailsSent          EmailsSentDTO           `json:"emails_sent"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

// ClientSummaryDTO is the client block embedded in order details.
type ClientSummaryDTO struct {
	ID           uuid.UUID                      `json:"id"`
	StoreID      uuid.UUID                      `json:"store_id"`
	StoreName    string                         `json:"store_name"`
	Status       enums.PrivateLabelClientStatus `json:"status"`
	ContactEmail string                         `json:"contact_email"`
}

// OrderDetailDTO adds the client, rep and edit flags to an order.
type OrderDetailDTO struct {
	OrderDTO
	Client         *ClientSummaryDTO `json:"client,omitempty"`
	RepName        string            `json:"rep_name,omitempty"`
	CanEdit        bool              `json:"can_edit"`
	IsInProduction bool              `json:"is_in_production"`
}

func mapOrderDTO(order models.ClientOrder) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			LabelID:     item.LabelID,
			FlavorName:  item.FlavorName,
			ProductType: item.ProductType,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return OrderDTO{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		ClientID:            order.ClientID,
		AssignedRepID:       order.AssignedRepID,
		CreatedBy:           types.ActorFromColumns(order.CreatedByKind, order.CreatedByID),
		Status:              order.Status,
		DeliveryDate:        types.NewDate(order.DeliveryDate.UTC()),
		ProductionStartDate: types.NewDate(order.ProductionStartDate.UTC()),
		ActualShipDate:      order.ActualShipDate,
		Items:               items,
		Subtotal:            order.Subtotal,
		Discount:            order.Discount,
		DiscountType:        order.DiscountType,
		DiscountAmount:      order.DiscountAmount,
		Total:               order.Total,
		Note:                order.Note,
		IsRecurring:         order.IsRecurring,
		ParentOrderID:       order.ParentOrderID,
		ShipASAP:            order.ShipASAP,
		TrackingNumber:      order.TrackingNumber,
		EmailsSent:          EmailsSentDTO(order.EmailsSent),
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}
