package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSums carries the raw debit and credit totals for one account over
// posted entries. Sign conventions are applied by the services, not here.
type BalanceSums struct {
	AccountCode string
	Debits      decimal.Decimal
	Credits     decimal.Decimal
}

// ReportingReader defines aggregate read operations over posted journal lines
type ReportingReader interface {
	// SumPostedLinesByAccount returns debit/credit sums for one account over
	// posted entries with entry_date <= asOf (all posted entries when asOf is
	// nil).
	SumPostedLinesByAccount(ctx context.Context, accountCode string, asOf *time.Time) (BalanceSums, error)

	// SumPostedLinesByAccounts returns debit/credit sums for the given
	// accounts in one query, keyed by account code. Accounts without posted
	// activity are absent from the result.
	SumPostedLinesByAccounts(ctx context.Context, accountCodes []string, asOf *time.Time) (map[string]BalanceSums, error)

	// SumPostedLinesByCurrency returns debit/credit sums up to asOf for every
	// active account denominated in the given currency. Accounts without
	// posted activity appear with zero sums.
	SumPostedLinesByCurrency(ctx context.Context, currencyCode string, asOf time.Time) ([]BalanceSums, error)
}
