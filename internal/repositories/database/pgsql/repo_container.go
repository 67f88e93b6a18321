package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	currencyRepo := newPgxCurrencyRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)
	reportingRepo := newPgxReportingRepository(dbPool)
	customerRepo := newPgxCustomerRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:   accountRepo,
		CurrencyRepo:  currencyRepo,
		JournalRepo:   journalRepo,
		ReportingRepo: reportingRepo,
		CustomerRepo:  customerRepo,
		AuditRepo:     auditRepo,
	}
}
