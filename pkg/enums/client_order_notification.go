package enums

import "fmt"

// ClientOrderNotification identifies one of the at-most-once order emails.
type ClientOrderNotification string

const (
	NotifyOrderCreated      ClientOrderNotification = "order_created"
	NotifyProductionStarted ClientOrderNotification = "production_started"
	NotifySevenDayReminder  ClientOrderNotification = "seven_day_reminder"
	NotifyReadyToShip       ClientOrderNotification = "ready_to_ship"
	NotifyShipped           ClientOrderNotification = "shipped"
	// NotifyRecurringCreated goes to the rep and carries no order flag.
	NotifyRecurringCreated ClientOrderNotification = "recurring_created"
)

var validClientOrderNotifications = []ClientOrderNotification{
	NotifyOrderCreated,
	NotifyProductionStarted,
	NotifySevenDayReminder,
	NotifyReadyToShip,
	NotifyShipped,
	NotifyRecurringCreated,
}

func (n ClientOrderNotification) String() string {
	return string(n)
}

func (n ClientOrderNotification) IsValid() bool {
	for _, candidate := range validClientOrderNotifications {
		if candidate == n {
			return true
		}
	}
	return false
}

func ParseClientOrderNotification(value string) (ClientOrderNotification, error) {
	for _, candidate := range validClientOrderNotifications {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid client order notification %q", value)
}

// Tracked reports whether the notification has an emails_sent flag.
func (n ClientOrderNotification) Tracked() bool {
	return n.IsValid() && n != NotifyRecurringCreated
}
