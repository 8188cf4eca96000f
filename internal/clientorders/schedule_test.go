package clientorders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCalculateProductionStart(t *testing.T) {
	today := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.Equal(t, today, CalculateProductionStart(today.AddDate(0, 0, 5), today, 14))
	require.Equal(t, today.AddDate(0, 0, 16), CalculateProductionStart(today.AddDate(0, 0, 30), today, 14))
	require.Equal(t, today, CalculateProductionStart(today.AddDate(0, 0, 14), today, 14))
}

func TestCalendarTodayUsesLocation(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	cal := Calendar{Location: la}

	// 03:00 UTC on the 11th is still the 10th on the west coast.
	now := time.Date(2026, time.March, 11, 3, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), cal.Today(now))
}

func TestScheduledProductionStartIsNotClamped(t *testing.T) {
	cal := Calendar{}
	delivery := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, time.December, 22, 0, 0, 0, 0, time.UTC), cal.ScheduledProductionStart(delivery))
}

func TestFormatOrderNumber(t *testing.T) {
	require.Equal(t, "PL-00042", FormatOrderNumber("", 42))
	require.Equal(t, "CO-123456", FormatOrderNumber("CO-", 123456))
}
