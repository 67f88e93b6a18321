package services

import (
	"log/slog"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies. The shared posting guard ties the reporting
// service's integrity verdict to the journal service's posting path.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, logger *slog.Logger) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	guard := NewPostingGuard()
	recorder := NewAsyncAuditRecorder(repos.AuditRepo, logger, cfg.AuditBufferSize)
	container.Recorder = recorder
	container.Audit = NewAuditService(repos.AuditRepo)

	// Currency first since accounts and journals validate against it
	container.Currency = NewCurrencyService(repos.CurrencyRepo)

	container.Account = NewAccountService(repos.AccountRepo, container.Currency, recorder)
	container.Journal = NewJournalService(repos.JournalRepo, repos.AccountRepo, container.Currency, guard, recorder)
	container.Balance = NewBalanceService(repos.AccountRepo, repos.ReportingRepo)
	container.Reporting = NewReportingService(repos.AccountRepo, repos.ReportingRepo, domain.Currency(cfg.BaseCurrency), guard)
	container.Credit = NewCreditService(repos.CustomerRepo, container.Balance, recorder)
	container.Document = NewDocumentService(container.Journal, container.Credit, cfg.MinMarginPercent)

	return container
}
