package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNormalizer_Conversions(t *testing.T) {
	n := NewNormalizer(dec("4.5"))

	assert.True(t, dec("45").Equal(n.ToSecondary(dec("10"))))
	assert.True(t, dec("10").Equal(n.ToPrimary(dec("45"))))
	assert.True(t, decimal.Zero.Equal(n.ToSecondary(decimal.Zero)))
}

func TestNormalizer_RoundTrip(t *testing.T) {
	n := NewNormalizer(dec("4.65"))
	for _, s := range []string{"0", "4.50", "2000.00", "0.01", "12345.67"} {
		got := n.ToPrimary(n.ToSecondary(dec(s))).Round(2)
		assert.True(t, dec(s).Equal(got), "round trip of %s gave %s", s, got)
	}
}

func TestNewNormalizer_InvalidRateFallsBack(t *testing.T) {
	assert.True(t, DefaultRate.Equal(NewNormalizer(decimal.Zero).Rate))
	assert.True(t, DefaultRate.Equal(NewNormalizer(dec("-2")).Rate))
	assert.True(t, dec("46.5").Equal(Normalizer{}.ToSecondary(dec("10"))))
}

func TestNormalizer_Convert(t *testing.T) {
	n := NewNormalizer(dec("5"))
	assert.True(t, dec("50").Equal(n.Convert(dec("10"), "gbp", "AED")))
	assert.True(t, dec("2").Equal(n.Convert(dec("10"), "AED", "GBP")))
	assert.True(t, dec("10").Equal(n.Convert(dec("10"), "GBP", "GBP")))
}

func TestParseLooseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"4.50", "4.50"},
		{"£1,234.56", "1234.56"},
		{"-12.00", "-12"},
		{"AED 18.37", "18.37"},
		{"  2000.00 ", "2000"},
		{"n/a", "0"},
		{"1.2.3", "0"},
		{"--", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseLooseAmount(tt.in)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "£4.50", Format(dec("4.5"), GBP))
	assert.Equal(t, "-£4.50", Format(dec("-4.5"), GBP))
	assert.Equal(t, "AED 20.93", Format(dec("20.925"), AED))
	assert.Equal(t, "3.00", Format(dec("3"), ""))
}
