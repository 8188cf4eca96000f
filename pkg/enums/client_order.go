package enums

import "fmt"

// ClientOrderStatus is the fulfillment status of a private label production order.
type ClientOrderStatus string

const (
	ClientOrderWaiting     ClientOrderStatus = "waiting"
	ClientOrderStage1      ClientOrderStatus = "stage_1"
	ClientOrderStage2      ClientOrderStatus = "stage_2"
	ClientOrderStage3      ClientOrderStatus = "stage_3"
	ClientOrderStage4      ClientOrderStatus = "stage_4"
	ClientOrderReadyToShip ClientOrderStatus = "ready_to_ship"
	ClientOrderShipped     ClientOrderStatus = "shipped"
	ClientOrderCancelled   ClientOrderStatus = "cancelled"
)

var validClientOrderStatuses = []ClientOrderStatus{
	ClientOrderWaiting,
	ClientOrderStage1,
	ClientOrderStage2,
	ClientOrderStage3,
	ClientOrderStage4,
	ClientOrderReadyToShip,
	ClientOrderShipped,
	ClientOrderCancelled,
}

// ProductionStatuses are the statuses during which an order is being manufactured.
var ProductionStatuses = []ClientOrderStatus{
	ClientOrderStage1,
	ClientOrderStage2,
	ClientOrderStage3,
	ClientOrderStage4,
}

func (s ClientOrderStatus) String() string {
	return string(s)
}

func (s ClientOrderStatus) IsValid() bool {
	for _, candidate := range validClientOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// InProduction reports whether s is one of stage_1..stage_4.
func (s ClientOrderStatus) InProduction() bool {
	for _, candidate := range ProductionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseClientOrderStatus(value string) (ClientOrderStatus, error) {
	for _, candidate := range validClientOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid client order status %q", value)
}

// DiscountType selects how ClientOrder.Discount is interpreted.
type DiscountType string

const (
	DiscountFlat       DiscountType = "flat"
	DiscountPercentage DiscountType = "percentage"
)

func (d DiscountType) String() string {
	return string(d)
}

func (d DiscountType) IsValid() bool {
	return d == DiscountFlat || d == DiscountPercentage
}

func ParseDiscountType(value string) (DiscountType, error) {
	d := DiscountType(value)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid discount type %q", value)
	}
	return d, nil
}
