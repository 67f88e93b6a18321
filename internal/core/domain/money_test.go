package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrellis/ledgercore/internal/core/domain"
)

func TestNewMoney_RoundsHalfUpToCurrencyScale(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency domain.Currency
		want     string
	}{
		{"half boundary rounds up", "10.005", "USD", "10.01"},
		{"below half rounds down", "10.004", "USD", "10.00"},
		{"classic 2.675 case", "2.675", "USD", "2.68"},
		{"zero-decimal currency", "100.5", "JPY", "101"},
		{"three-decimal currency", "1.0005", "KWD", "1.001"},
		{"already at scale unchanged", "42.42", "USD", "42.42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := domain.ParseMoney(tt.amount, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.StringFixed())
		})
	}
}

func TestNewMoney_RejectsInvalidCurrency(t *testing.T) {
	_, err := domain.ParseMoney("10.00", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)

	_, err = domain.ParseMoney("10.00", "USDX")
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestNewMoney_RejectsOverflow(t *testing.T) {
	_, err := domain.ParseMoney("1000000000000000", "USD") // 10^15
	assert.ErrorIs(t, err, domain.ErrOverflow)

	m, err := domain.ParseMoney("999999999999999.99", "USD")
	require.NoError(t, err)
	_, err = m.Add(m)
	assert.ErrorIs(t, err, domain.ErrOverflow)
}

func TestMoney_ArithmeticRequiresMatchingCurrency(t *testing.T) {
	usd, _ := domain.ParseMoney("10.00", "USD")
	eur, _ := domain.ParseMoney("10.00", "EUR")

	_, err := usd.Add(eur)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)

	_, err = usd.Sub(eur)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)

	_, err = usd.Cmp(eur)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestMoney_Percent(t *testing.T) {
	base, _ := domain.ParseMoney("285.00", "USD")
	tax, err := base.Percent(domain.MustPercent("10"))
	require.NoError(t, err)
	assert.Equal(t, "28.50", tax.StringFixed())

	// Rounding applies once, at the currency scale.
	odd, _ := domain.ParseMoney("10.01", "USD")
	d, err := odd.Percent(domain.MustPercent("5"))
	require.NoError(t, err)
	assert.Equal(t, "0.50", d.StringFixed()) // 0.5005 -> 0.50
}

func TestMoney_Allocate(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency domain.Currency
		parts    int
		want     []string
	}{
		{"100 into 3, last absorbs remainder", "100.00", "USD", 3, []string{"33.33", "33.33", "33.34"}},
		{"even split", "100.00", "USD", 4, []string{"25.00", "25.00", "25.00", "25.00"}},
		{"zero-decimal currency", "10", "JPY", 3, []string{"3", "3", "4"}},
		{"single part", "99.99", "USD", 1, []string{"99.99"}},
		{"three-decimal currency", "1.000", "KWD", 7, []string{"0.142", "0.142", "0.142", "0.142", "0.142", "0.142", "0.148"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := domain.ParseMoney(tt.amount, tt.currency)
			require.NoError(t, err)
			parts, err := m.Allocate(tt.parts)
			require.NoError(t, err)
			require.Len(t, parts, tt.parts)

			sum := domain.ZeroMoney(tt.currency)
			for i, p := range parts {
				assert.Equal(t, tt.want[i], p.StringFixed(), "part %d", i)
				sum, err = sum.Add(p)
				require.NoError(t, err)
			}
			assert.True(t, sum.Equal(m), "parts must sum exactly to the total")
		})
	}
}

func TestMoney_AllocateRejectsNonPositiveParts(t *testing.T) {
	m, _ := domain.ParseMoney("10.00", "USD")
	_, err := m.Allocate(0)
	assert.Error(t, err)
	_, err = m.Allocate(-3)
	assert.Error(t, err)
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m, _ := domain.ParseMoney("1234.56", "USD")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.56","currency":"USD"}`, string(data))

	var decoded domain.Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equal(decoded))
}

func TestNewPercent_Bounds(t *testing.T) {
	_, err := domain.NewPercent(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidPercent)

	_, err = domain.NewPercent(decimal.RequireFromString("100.01"))
	assert.ErrorIs(t, err, domain.ErrInvalidPercent)

	p, err := domain.NewPercent(decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "100", p.Value().String())

	zero, err := domain.NewPercent(decimal.Zero)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}
