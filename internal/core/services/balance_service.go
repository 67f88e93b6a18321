package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/middleware"
	"github.com/fintrellis/ledgercore/internal/utils/accounting"
)

// balanceService derives account balances from posted journal lines. There
// is no stored running balance anywhere; every figure is an aggregation over
// the posted lines, so balances can never drift out of sync with the ledger.
type balanceService struct {
	accountRepo   portsrepo.AccountReader
	reportingRepo portsrepo.ReportingReader
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(accountRepo portsrepo.AccountReader, reportingRepo portsrepo.ReportingReader) portssvc.BalanceSvcFacade {
	return &balanceService{
		accountRepo:   accountRepo,
		reportingRepo: reportingRepo,
	}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// GetAccountBalance computes the signed balance of one account from its
// posted lines.
func (s *balanceService) GetAccountBalance(ctx context.Context, accountCode string, asOf *time.Time) (*domain.AccountBalance, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	sums, err := s.reportingRepo.SumPostedLinesByAccount(ctx, accountCode, asOf)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to sum posted lines", slog.String("account_code", accountCode), slog.String("error", err.Error()))
		return nil, err
	}

	signed := accounting.SignedBalance(account.AccountType, sums.Debits, sums.Credits)
	balance, err := domain.NewMoney(signed, account.CurrencyCode)
	if err != nil {
		return nil, err
	}
	return &domain.AccountBalance{
		AccountCode: accountCode,
		AccountType: account.AccountType,
		Currency:    account.CurrencyCode,
		AsOf:        asOf,
		Debits:      sums.Debits,
		Credits:     sums.Credits,
		Balance:     balance,
	}, nil
}

// GetRollupBalance computes the signed balance of an account plus all of its
// descendants. Each descendant is signed by its own account type before
// summing, so a mixed subtree still reads correctly.
func (s *balanceService) GetRollupBalance(ctx context.Context, accountCode string, asOf *time.Time) (*domain.AccountBalance, error) {
	root, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	codes, accounts, err := s.collectSubtree(ctx, root)
	if err != nil {
		return nil, err
	}

	sumsByCode, err := s.reportingRepo.SumPostedLinesByAccounts(ctx, codes, asOf)
	if err != nil {
		return nil, err
	}

	debits := decimal.Zero
	credits := decimal.Zero
	signed := decimal.Zero
	for _, code := range codes {
		sums, ok := sumsByCode[code]
		if !ok {
			continue
		}
		debits = debits.Add(sums.Debits)
		credits = credits.Add(sums.Credits)
		signed = signed.Add(accounting.SignedBalance(accounts[code].AccountType, sums.Debits, sums.Credits))
	}

	balance, err := domain.NewMoney(signed, root.CurrencyCode)
	if err != nil {
		return nil, err
	}
	return &domain.AccountBalance{
		AccountCode: accountCode,
		AccountType: root.AccountType,
		Currency:    root.CurrencyCode,
		AsOf:        asOf,
		Debits:      debits,
		Credits:     credits,
		Balance:     balance,
	}, nil
}

// collectSubtree walks the hierarchy breadth-first from root, returning the
// codes in stable order plus an account lookup.
func (s *balanceService) collectSubtree(ctx context.Context, root *domain.Account) ([]string, map[string]domain.Account, error) {
	codes := []string{root.AccountCode}
	accounts := map[string]domain.Account{root.AccountCode: *root}

	queue := []string{root.AccountCode}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		children, err := s.accountRepo.ListChildAccounts(ctx, current)
		if err != nil {
			return nil, nil, err
		}
		for _, child := range children {
			if _, seen := accounts[child.AccountCode]; seen {
				continue
			}
			accounts[child.AccountCode] = child
			codes = append(codes, child.AccountCode)
			queue = append(queue, child.AccountCode)
		}
	}
	return codes, accounts, nil
}

// reportingService generates financial reports over the posted ledger.
type reportingService struct {
	accountRepo   portsrepo.AccountReader
	reportingRepo portsrepo.ReportingReader
	baseCurrency  domain.Currency
	guard         *PostingGuard
}

// NewReportingService creates a new ReportingService. The guard trips when a
// generated trial balance fails to balance, halting further postings until
// an operator intervenes.
func NewReportingService(accountRepo portsrepo.AccountReader, reportingRepo portsrepo.ReportingReader, baseCurrency domain.Currency, guard *PostingGuard) portssvc.ReportingService {
	return &reportingService{
		accountRepo:   accountRepo,
		reportingRepo: reportingRepo,
		baseCurrency:  baseCurrency,
		guard:         guard,
	}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance generates a trial balance report as of a specific date for
// every active account in one currency; mixing minor units of different
// currencies in one column total would be meaningless. A negative natural
// balance is shown as a positive amount in the opposite column, which keeps
// the column totals equal to the raw posted sums.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time, currency domain.Currency) (*domain.TrialBalanceReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if currency == "" {
		currency = s.baseCurrency
	}
	sums, err := s.reportingRepo.SumPostedLinesByCurrency(ctx, string(currency), asOf)
	if err != nil {
		logger.Error("Failed to aggregate posted lines for trial balance", slog.String("currency", string(currency)), slog.String("error", err.Error()))
		return nil, err
	}

	codes := make([]string, len(sums))
	for i, sum := range sums {
		codes[i] = sum.AccountCode
	}
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.TrialBalanceRow, 0, len(sums))
	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	for _, sum := range sums {
		account, ok := accounts[sum.AccountCode]
		if !ok {
			return nil, fmt.Errorf("posted lines reference unknown account %s", sum.AccountCode)
		}
		signed := accounting.SignedBalance(account.AccountType, sum.Debits, sum.Credits)
		debit, credit := accounting.TrialBalanceColumns(account.AccountType, signed)
		rows = append(rows, domain.TrialBalanceRow{
			AccountCode: account.AccountCode,
			AccountName: account.Name,
			AccountType: account.AccountType,
			Debit:       debit,
			Credit:      credit,
		})
		totalDebits = totalDebits.Add(debit)
		totalCredits = totalCredits.Add(credit)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountCode < rows[j].AccountCode })

	isBalanced := totalDebits.Equal(totalCredits)
	if !isBalanced {
		// Every posting is balanced before it commits, so an unbalanced
		// trial balance means corrupted data. Halt postings; report the
		// verdict rather than masking it.
		s.guard.Trip(fmt.Sprintf("%s trial balance off by %s as of %s", currency, totalDebits.Sub(totalCredits), asOf.Format(time.RFC3339)))
		logger.Error("Trial balance does not balance",
			slog.String("total_debits", totalDebits.String()),
			slog.String("total_credits", totalCredits.String()),
		)
	}

	return &domain.TrialBalanceReport{
		AsOf:         asOf,
		Currency:     currency,
		Rows:         rows,
		TotalDebits:  totalDebits,
		TotalCredits: totalCredits,
		IsBalanced:   isBalanced,
	}, nil
}
