package clientorders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shohaib1996/better-edible-backend/pkg/enums"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name     string
		lines    []string
		discount string
		kind     enums.DiscountType
		amount   string
		total    string
	}{
		{"no discount", []string{"10.00", "5.50"}, "0", "", "0.00", "15.50"},
		{"flat", []string{"100.00"}, "12.5", enums.DiscountFlat, "12.50", "87.50"},
		{"ten percent", []string{"60.00", "40.00"}, "10", enums.DiscountPercentage, "10.00", "90.00"},
		{"flat over subtotal", []string{"50.00"}, "75", enums.DiscountFlat, "75.00", "0.00"},
		{"percentage rounds", []string{"33.33"}, "15", enums.DiscountPercentage, "5.00", "28.33"},
		{"full percentage", []string{"19.99"}, "100", enums.DiscountPercentage, "19.99", "0.00"},
		{"fractional percentage", []string{"1000.00"}, "12.345", enums.DiscountPercentage, "123.45", "876.55"},
		{"flat rounds to cents", []string{"10.00"}, "1.005", enums.DiscountFlat, "1.01", "8.99"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := make([]decimal.Decimal, 0, len(tc.lines))
			for _, l := range tc.lines {
				lines = append(lines, dec(l))
			}
			totals, err := ComputeTotals(lines, dec(tc.discount), tc.kind)
			require.NoError(t, err)
			require.Equal(t, tc.amount, totals.DiscountAmount.StringFixed(2))
			require.Equal(t, tc.total, totals.Total.StringFixed(2))
		})
	}
}

func TestComputeTotalsDefaultsToFlat(t *testing.T) {
	totals, err := ComputeTotals([]decimal.Decimal{dec("10")}, dec("1"), "")
	require.NoError(t, err)
	require.Equal(t, enums.DiscountFlat, totals.DiscountType)
}

func TestComputeTotalsRejectsBadDiscounts(t *testing.T) {
	lines := []decimal.Decimal{dec("10")}
	_, err := ComputeTotals(lines, dec("-1"), enums.DiscountFlat)
	require.ErrorIs(t, err, ErrInvalidDiscount)
	_, err = ComputeTotals(lines, dec("100.01"), enums.DiscountPercentage)
	require.ErrorIs(t, err, ErrInvalidDiscount)
	_, err = ComputeTotals(lines, dec("1"), "bogus")
	require.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestLineTotalRoundsToCents(t *testing.T) {
	require.Equal(t, "22.00", LineTotal(3, dec("7.333")).StringFixed(2))
	require.Equal(t, "0.01", LineTotal(1, dec("0.005")).StringFixed(2))
}

func TestComputeTotalsKeepsFractionalPercentage(t *testing.T) {
	totals, err := ComputeTotals([]decimal.Decimal{dec("1000.00")}, dec("12.345"), enums.DiscountPercentage)
	require.NoError(t, err)
	require.Equal(t, "12.3450", totals.Discount.StringFixed(4))
	require.Equal(t, "123.45", totals.DiscountAmount.StringFixed(2))

	again, err := ComputeTotals([]decimal.Decimal{dec("1000.00")}, totals.Discount, totals.DiscountType)
	require.NoError(t, err)
	require.True(t, again.DiscountAmount.Equal(totals.DiscountAmount))
}
