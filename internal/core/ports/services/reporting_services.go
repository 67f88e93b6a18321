package services

import (
	"context"
	"time"

	"github.com/fintrellis/ledgercore/internal/core/domain"
)

// BalanceSvcFacade defines balance queries over posted journal lines
type BalanceSvcFacade interface {
	// GetAccountBalance computes the signed balance of one account from its
	// posted lines, optionally as of a date.
	GetAccountBalance(ctx context.Context, accountCode string, asOf *time.Time) (*domain.AccountBalance, error)

	// GetRollupBalance computes the signed balance of an account plus all of
	// its descendants in the chart-of-accounts tree.
	GetRollupBalance(ctx context.Context, accountCode string, asOf *time.Time) (*domain.AccountBalance, error)
}

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// TrialBalance generates a trial balance report as of a specific date,
	// covering every active account in the given currency. An empty currency
	// falls back to the configured base currency.
	TrialBalance(ctx context.Context, asOf time.Time, currency domain.Currency) (*domain.TrialBalanceReport, error)
}
