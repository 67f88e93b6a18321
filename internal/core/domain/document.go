package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DocumentLine is a line item on a quotation, sales order, invoice or
// supplier invoice. The four derived fields are always recomputed from the
// four inputs by CalculateLine; they are never edited independently.
type DocumentLine struct {
	LineID      string          `json:"lineID"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   Money           `json:"unitPrice"`
	Discount    Percent         `json:"discountPercent"`
	Tax         Percent         `json:"taxPercent"`
	Cost        *Money          `json:"cost,omitempty"` // Optional unit cost, enables the margin check
	// IsHeader marks a grouping/header line. Header lines are the only
	// lines permitted a zero quantity and are excluded from document totals
	// regardless of their numeric fields. Preserved from the source system
	// as documented behavior; flagged for product clarification whether the
	// exclusion is a grouping feature or a validation side effect.
	IsHeader bool `json:"isHeader"`

	// Derived fields, each rounded once per the Money rounding rule.
	Subtotal       Money `json:"subtotal"`
	DiscountAmount Money `json:"discountAmount"`
	TaxAmount      Money `json:"taxAmount"`
	TotalAmount    Money `json:"totalAmount"`
}

// DocumentTotals aggregates line-level derived fields across a document.
// Each field is the sum of the per-line rounded values (sum-of-rounded, not
// round-of-sum), the same policy for quotations, orders and invoices so that
// converting one document type to another preserves totals exactly.
type DocumentTotals struct {
	Subtotal       Money `json:"subtotal"`
	DiscountAmount Money `json:"discountAmount"`
	TaxAmount      Money `json:"taxAmount"`
	TotalAmount    Money `json:"totalAmount"`
}

// ErrZeroQuantity is returned for a non-header line without a positive
// quantity.
var ErrZeroQuantity = errors.New("quantity must be positive on non-header lines")

// ErrNegativeUnitPrice is returned for a negative unit price.
var ErrNegativeUnitPrice = errors.New("unit price must not be negative")

// CalculateLine recomputes the four derived fields from the line's inputs:
//
//	subtotal       = quantity * unitPrice
//	discountAmount = subtotal * discount%
//	taxableAmount  = subtotal - discountAmount
//	taxAmount      = taxableAmount * tax%
//	totalAmount    = taxableAmount + taxAmount
//
// Rounding happens once per derived field; the tax is computed from the
// rounded taxable amount, not from an unrounded intermediate.
func CalculateLine(line DocumentLine) (DocumentLine, error) {
	if line.UnitPrice.IsNegative() {
		return line, fmt.Errorf("%w: %s", ErrNegativeUnitPrice, line.UnitPrice)
	}
	if line.IsHeader {
		// Header lines carry no amounts of their own.
		zero := ZeroMoney(line.UnitPrice.Currency())
		line.Subtotal = zero
		line.DiscountAmount = zero
		line.TaxAmount = zero
		line.TotalAmount = zero
		return line, nil
	}
	if !line.Quantity.IsPositive() {
		return line, fmt.Errorf("%w: got %s", ErrZeroQuantity, line.Quantity)
	}

	subtotal, err := line.UnitPrice.Mul(line.Quantity)
	if err != nil {
		return line, err
	}
	discount, err := subtotal.Percent(line.Discount)
	if err != nil {
		return line, err
	}
	taxable, err := subtotal.Sub(discount)
	if err != nil {
		return line, err
	}
	tax, err := taxable.Percent(line.Tax)
	if err != nil {
		return line, err
	}
	total, err := taxable.Add(tax)
	if err != nil {
		return line, err
	}

	line.Subtotal = subtotal
	line.DiscountAmount = discount
	line.TaxAmount = tax
	line.TotalAmount = total
	return line, nil
}

// CalculateDocument recomputes every line and aggregates the document
// totals. All lines must share the document currency; header lines pass
// through with zeroed derived fields and do not contribute to totals.
func CalculateDocument(currency Currency, lines []DocumentLine) ([]DocumentLine, DocumentTotals, error) {
	totals := DocumentTotals{
		Subtotal:       ZeroMoney(currency),
		DiscountAmount: ZeroMoney(currency),
		TaxAmount:      ZeroMoney(currency),
		TotalAmount:    ZeroMoney(currency),
	}
	out := make([]DocumentLine, len(lines))
	for i, line := range lines {
		if line.UnitPrice.Currency() != currency {
			return nil, totals, fmt.Errorf("%w: line %d is %s, document is %s",
				ErrCurrencyMismatch, i, line.UnitPrice.Currency(), currency)
		}
		calced, err := CalculateLine(line)
		if err != nil {
			return nil, totals, fmt.Errorf("line %d: %w", i, err)
		}
		out[i] = calced
		if calced.IsHeader {
			continue
		}
		if totals.Subtotal, err = totals.Subtotal.Add(calced.Subtotal); err != nil {
			return nil, totals, err
		}
		if totals.DiscountAmount, err = totals.DiscountAmount.Add(calced.DiscountAmount); err != nil {
			return nil, totals, err
		}
		if totals.TaxAmount, err = totals.TaxAmount.Add(calced.TaxAmount); err != nil {
			return nil, totals, err
		}
		if totals.TotalAmount, err = totals.TotalAmount.Add(calced.TotalAmount); err != nil {
			return nil, totals, err
		}
	}
	return out, totals, nil
}

// TaxableAmount returns subtotal - discountAmount for the document, the base
// on which revenue is recognized when the document posts to the ledger.
func (t DocumentTotals) TaxableAmount() (Money, error) {
	return t.Subtotal.Sub(t.DiscountAmount)
}

// MarginWarning flags a line priced below the configured minimum margin.
// It is advisory business policy, never a calculation failure.
type MarginWarning struct {
	LineID        string          `json:"lineID"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	Threshold     decimal.Decimal `json:"threshold"`
}

// MarginPercent computes (unitPrice - cost) / unitPrice * 100 for a line, or
// false when cost is absent or the unit price is zero.
func (l DocumentLine) MarginPercent() (decimal.Decimal, bool) {
	if l.Cost == nil || l.UnitPrice.IsZero() {
		return decimal.Zero, false
	}
	gross := l.UnitPrice.Amount().Sub(l.Cost.Amount())
	return gross.Div(l.UnitPrice.Amount()).Mul(hundred), true
}
