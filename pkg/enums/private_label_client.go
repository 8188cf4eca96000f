package enums

import "fmt"

// PrivateLabelClientStatus is the enrollment state of a private label client.
type PrivateLabelClientStatus string

const (
	PrivateLabelClientOnboarding PrivateLabelClientStatus = "onboarding"
	PrivateLabelClientActive     PrivateLabelClientStatus = "active"
)

var validPrivateLabelClientStatuses = []PrivateLabelClientStatus{
	PrivateLabelClientOnboarding,
	PrivateLabelClientActive,
}

func (s PrivateLabelClientStatus) String() string {
	return string(s)
}

func (s PrivateLabelClientStatus) IsValid() bool {
	for _, candidate := range validPrivateLabelClientStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParsePrivateLabelClientStatus(value string) (PrivateLabelClientStatus, error) {
	for _, candidate := range validPrivateLabelClientStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid private label client status %q", value)
}

// RecurringInterval is how often a recurring client reorders.
type RecurringInterval string

const (
	RecurringMonthly   RecurringInterval = "monthly"
	RecurringBimonthly RecurringInterval = "bimonthly"
	RecurringQuarterly RecurringInterval = "quarterly"
)

var validRecurringIntervals = []RecurringInterval{
	RecurringMonthly,
	RecurringBimonthly,
	RecurringQuarterly,
}

func (i RecurringInterval) String() string {
	return string(i)
}

func (i RecurringInterval) IsValid() bool {
	for _, candidate := range validRecurringIntervals {
		if candidate == i {
			return true
		}
	}
	return false
}

// Months returns the number of calendar months the interval spans. Unknown
// or empty intervals fall back to one month.
func (i RecurringInterval) Months() int {
	switch i {
	case RecurringBimonthly:
		return 2
	case RecurringQuarterly:
		return 3
	default:
		return 1
	}
}

func ParseRecurringInterval(value string) (RecurringInterval, error) {
	for _, candidate := range validRecurringIntervals {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recurring interval %q", value)
}
