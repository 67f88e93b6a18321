package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents an ISO 4217 currency code.
type Currency string

// Exponent returns the number of minor-unit decimal places for the currency.
// The registry covers the common non-two-digit currencies; everything else
// defaults to two. The currencies table is the authoritative source at the
// edges; this map keeps pure domain arithmetic self-contained.
var currencyExponents = map[Currency]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
	"TND": 3,
}

// Exponent returns the minor-unit scale for the currency (default 2).
func (c Currency) Exponent() int32 {
	if exp, ok := currencyExponents[c]; ok {
		return exp
	}
	return 2
}

var (
	// ErrCurrencyMismatch is returned when arithmetic is attempted between
	// amounts of different currencies without explicit conversion.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrOverflow is returned when an operation produces an amount outside
	// the representable magnitude.
	ErrOverflow = errors.New("amount magnitude overflow")

	// ErrInvalidCurrency is returned by Money constructors for an empty or
	// malformed currency code.
	ErrInvalidCurrency = errors.New("invalid currency code")
)

// maxMagnitude bounds the absolute value of any Money amount (10^15).
var maxMagnitude = decimal.New(1, 15)

// Money is an immutable monetary amount: a fixed-precision decimal plus a
// currency code. All arithmetic between two Money values requires matching
// currencies; multiply/percentage operations round half-up to the currency's
// minor-unit scale, applied once per derived value.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a Money after validating the currency and magnitude.
// The amount is rounded to the currency's scale.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	rounded := roundHalfUp(amount, currency.Exponent())
	if err := checkMagnitude(rounded); err != nil {
		return Money{}, err
	}
	return Money{amount: rounded, currency: currency}, nil
}

// ParseMoney creates a Money from a decimal string representation.
func ParseMoney(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string %q: %w", amount, err)
	}
	return NewMoney(d, currency)
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the underlying decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() Currency { return m.currency }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsNegative reports whether the amount is negative.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// IsPositive reports whether the amount is positive.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// Equal reports whether both amount and currency match.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Cmp compares two Money values of the same currency, returning -1, 0 or 1.
func (m Money) Cmp(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return m.amount.Cmp(other.amount), nil
}

// Add returns m + other. Fails on currency mismatch or overflow.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	sum := m.amount.Add(other.amount)
	if err := checkMagnitude(sum); err != nil {
		return Money{}, err
	}
	return Money{amount: sum, currency: m.currency}, nil
}

// Sub returns m - other. Fails on currency mismatch or overflow.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	diff := m.amount.Sub(other.amount)
	if err := checkMagnitude(diff); err != nil {
		return Money{}, err
	}
	return Money{amount: diff, currency: m.currency}, nil
}

// Mul returns m * factor, rounded half-up to the currency's scale.
func (m Money) Mul(factor decimal.Decimal) (Money, error) {
	product := roundHalfUp(m.amount.Mul(factor), m.currency.Exponent())
	if err := checkMagnitude(product); err != nil {
		return Money{}, err
	}
	return Money{amount: product, currency: m.currency}, nil
}

// Percent returns (m * p / 100), rounded half-up to the currency's scale.
// This is the single rounding rule applied everywhere a percentage is taken
// of an amount (discount, tax, margin).
func (m Money) Percent(p Percent) (Money, error) {
	raw := m.amount.Mul(p.Value()).Div(decimal.NewFromInt(100))
	rounded := roundHalfUp(raw, m.currency.Exponent())
	if err := checkMagnitude(rounded); err != nil {
		return Money{}, err
	}
	return Money{amount: rounded, currency: m.currency}, nil
}

// Allocate splits m into n parts that sum exactly to m. Each part is the
// truncated even share; the last part absorbs the rounding remainder, so the
// redistribution is deterministic.
func (m Money) Allocate(n int) ([]Money, error) {
	if n <= 0 {
		return nil, errors.New("allocation parts must be positive")
	}
	if n == 1 {
		return []Money{m}, nil
	}
	exp := m.currency.Exponent()
	base := m.amount.Div(decimal.NewFromInt(int64(n))).Truncate(exp)
	parts := make([]Money, n)
	for i := 0; i < n-1; i++ {
		parts[i] = Money{amount: base, currency: m.currency}
	}
	last := m.amount.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
	parts[n-1] = Money{amount: last, currency: m.currency}
	return parts, nil
}

// Neg returns the amount with its sign reversed.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// StringFixed renders the amount with the currency's full minor-unit scale.
func (m Money) StringFixed() string {
	return m.amount.StringFixed(m.currency.Exponent())
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.StringFixed(), m.currency)
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON renders the amount as a string to avoid float precision loss.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.StringFixed(), Currency: m.currency})
}

// UnmarshalJSON parses {"amount":"123.45","currency":"USD"} with full
// constructor validation.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseMoney(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// roundHalfUp rounds at the half boundary away from zero to exp decimal
// places. Amounts produced by the calculator are non-negative, where this is
// exactly round-half-up.
func roundHalfUp(d decimal.Decimal, exp int32) decimal.Decimal {
	return d.Round(exp)
}

func checkMagnitude(d decimal.Decimal) error {
	if d.Abs().Cmp(maxMagnitude) >= 0 {
		return fmt.Errorf("%w: %s", ErrOverflow, d.String())
	}
	return nil
}

// Percent is a percentage value constrained to [0, 100]. Constructing one
// outside that range fails, so downstream calculations never see an invalid
// rate.
type Percent struct {
	value decimal.Decimal
}

// ErrInvalidPercent is returned for percentages outside [0, 100].
var ErrInvalidPercent = errors.New("percentage out of range")

var hundred = decimal.NewFromInt(100)

// NewPercent validates and wraps a percentage value.
func NewPercent(value decimal.Decimal) (Percent, error) {
	if value.IsNegative() || value.GreaterThan(hundred) {
		return Percent{}, fmt.Errorf("%w: %s", ErrInvalidPercent, value.String())
	}
	return Percent{value: value}, nil
}

// MustPercent is a convenience for statically known-valid percentages.
func MustPercent(value string) Percent {
	p, err := NewPercent(decimal.RequireFromString(value))
	if err != nil {
		panic(err)
	}
	return p
}

// ZeroPercent is the zero rate.
func ZeroPercent() Percent { return Percent{value: decimal.Zero} }

// Value returns the underlying decimal percentage.
func (p Percent) Value() decimal.Decimal { return p.value }

// IsZero reports whether the rate is zero.
func (p Percent) IsZero() bool { return p.value.IsZero() }

func (p Percent) String() string { return p.value.String() + "%" }
