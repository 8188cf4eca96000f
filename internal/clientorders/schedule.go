package clientorders

import "time"

// DefaultProductionLeadDays is how many days before delivery production starts.
const DefaultProductionLeadDays = 14

// Calendar answers date questions in the business time zone. Calendar dates
// are carried as UTC midnight so they compare cleanly with DATE columns.
type Calendar struct {
	Location *time.Location
	LeadDays int
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Calendar) leadDays() int {
	if c.LeadDays <= 0 {
		return DefaultProductionLeadDays
	}
	return c.LeadDays
}

// Today is the current business date.
func (c Calendar) Today(now time.Time) time.Time {
	return DateOf(now.In(c.location()))
}

// ProductionStart is the clamped start date used on create and edit.
func (c Calendar) ProductionStart(delivery, now time.Time) time.Time {
	return CalculateProductionStart(delivery, c.Today(now), c.leadDays())
}

// ScheduledProductionStart is the unclamped start date used when an order is
// generated for a future cycle.
func (c Calendar) ScheduledProductionStart(delivery time.Time) time.Time {
	return DateOf(delivery).AddDate(0, 0, -c.leadDays())
}

// CalculateProductionStart returns delivery minus leadDays, but never a date
// before today.
func CalculateProductionStart(delivery, today time.Time, leadDays int) time.Time {
	start := DateOf(delivery).AddDate(0, 0, -leadDays)
	today = DateOf(today)
	if start.Before(today) {
		return today
	}
	return start
}

// DateOf drops the clock from t, keeping its calendar date in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
