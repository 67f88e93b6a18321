package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is the signed balance of one account over posted entries.
// The sign convention follows the account type's natural side: a
// debit-natural account reports debits - credits, a credit-natural account
// reports credits - debits, so a healthy account of any type reads positive.
type AccountBalance struct {
	AccountCode string          `json:"accountCode"`
	AccountType AccountType     `json:"accountType"`
	Currency    Currency        `json:"currency"`
	AsOf        *time.Time      `json:"asOf,omitempty"` // Nil means all posted activity
	Debits      decimal.Decimal `json:"debits"`
	Credits     decimal.Decimal `json:"credits"`
	Balance     Money           `json:"balance"` // Signed per NaturalSide
}

// TrialBalanceRow is one account's line on the trial balance. Exactly one of
// Debit/Credit is nonzero (or both zero for a flat account): a negative
// natural balance is presented as a positive amount in the opposite column.
type TrialBalanceRow struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceReport lists every account with posted activity and the two
// column totals. For a ledger built only from balanced entries the totals are
// equal; IsBalanced false signals data corruption, never a normal state.
type TrialBalanceReport struct {
	AsOf         time.Time         `json:"asOf"`
	Currency     Currency          `json:"currency"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
	IsBalanced   bool              `json:"isBalanced"`
}

// AccountActivity is a posted line joined with its entry header, for account
// statement listings.
type AccountActivity struct {
	EntryID     string          `json:"entryID"`
	EntryNumber string          `json:"entryNumber"`
	EntryDate   time.Time       `json:"entryDate"`
	Description string          `json:"description"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}
