package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account categories.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// BalanceSide identifies which trial-balance column an account type
// naturally increases on.
type BalanceSide string

const (
	DebitSide  BalanceSide = "DEBIT"
	CreditSide BalanceSide = "CREDIT"
)

// NaturalSide returns the natural balance side for the account type:
// assets and expenses are debit-natural, the rest are credit-natural.
// The convention is uniform; there are no per-account overrides.
func (t AccountType) NaturalSide() BalanceSide {
	switch t {
	case Asset, Expense:
		return DebitSide
	default:
		return CreditSide
	}
}

// ErrInvalidAccountCode is returned by ValidateAccountCode for codes that do
// not match the chart-of-accounts code format.
var ErrInvalidAccountCode = errors.New("invalid account code")

// Account codes: digits/uppercase letters with optional dash or dot
// separators, e.g. "1000", "1100-01", "AR.TRADE". Immutable once any journal
// line references them.
var accountCodePattern = regexp.MustCompile(`^[0-9A-Z][0-9A-Z.-]{0,31}$`)

// ValidateAccountCode rejects malformed account codes at construction time.
func ValidateAccountCode(code string) error {
	if !accountCodePattern.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountCode, code)
	}
	return nil
}

// Account represents a node in the chart of accounts. The registry owns
// accounts; journal lines reference them by code only. The parent relation
// forms a tree (an account may not be its own ancestor), used for reporting
// rollups like "Total Assets".
type Account struct {
	AccountID         string      `json:"accountID"`         // Primary Key (UUID)
	AccountCode       string      `json:"accountCode"`       // Unique, immutable once referenced by a posted line
	Name              string      `json:"name"`              // User-defined name
	AccountType       AccountType `json:"accountType"`       // ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE
	CurrencyCode      Currency    `json:"currencyCode"`      // FK -> currencies.currency_code
	ParentAccountCode string      `json:"parentAccountCode"` // Optional, self-referencing by code
	Description       string      `json:"description"`
	IsActive          bool        `json:"isActive"` // Accounts with posted activity are deactivated, never deleted
	AuditFields
}
