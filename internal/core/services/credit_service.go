package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/dto"
	"github.com/fintrellis/ledgercore/internal/middleware"
)

var (
	ErrBelowUsedCredit  = errors.New("credit limit cannot be set below used credit")
	ErrNegativeLimit    = errors.New("credit limit cannot be negative")
	ErrCreditLimitBlown = errors.New("amount exceeds available credit")
)

// creditService provides customer credit control. Used credit is always the
// posted balance of the customer's receivable account at query time; the
// snapshot can be stale by the time a caller acts on it, so hard enforcement
// re-derives it where it matters.
type creditService struct {
	customerRepo portsrepo.CustomerRepositoryFacade
	balanceSvc   portssvc.BalanceSvcFacade
	recorder     portssvc.AuditRecorder
}

// NewCreditService creates a new CreditService.
func NewCreditService(customerRepo portsrepo.CustomerRepositoryFacade, balanceSvc portssvc.BalanceSvcFacade, recorder portssvc.AuditRecorder) portssvc.CreditSvcFacade {
	return &creditService{
		customerRepo: customerRepo,
		balanceSvc:   balanceSvc,
		recorder:     recorder,
	}
}

var _ portssvc.CreditSvcFacade = (*creditService)(nil)

// CreateCustomer registers a customer with a receivable account linkage.
func (s *creditService) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest, creatorUserID string) (*domain.Customer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.CreditLimit.IsNegative() {
		return nil, ErrNegativeLimit
	}
	limit, err := domain.NewMoney(req.CreditLimit, domain.Currency(req.CurrencyCode))
	if err != nil {
		return nil, err
	}
	// The receivable account must exist before credit can be tracked on it.
	if _, err := s.balanceSvc.GetAccountBalance(ctx, req.AccountCode, nil); err != nil {
		return nil, fmt.Errorf("receivable account %s: %w", req.AccountCode, err)
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		CustomerID:  uuid.NewString(),
		Name:        req.Name,
		AccountCode: req.AccountCode,
		CreditLimit: limit,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.customerRepo.SaveCustomer(ctx, customer); err != nil {
		logger.Error("Failed to save customer", slog.String("customer_name", req.Name), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Customer created", slog.String("customer_id", customer.CustomerID), slog.String("account_code", customer.AccountCode))
	return &customer, nil
}

// GetCustomerByID retrieves a customer.
func (s *creditService) GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	return s.customerRepo.FindCustomerByID(ctx, customerID)
}

// GetCreditStatus derives the customer's credit snapshot from the posted
// balance of their receivable account.
func (s *creditService) GetCreditStatus(ctx context.Context, customerID string) (*domain.CreditStatus, error) {
	customer, err := s.customerRepo.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.creditStatusFor(ctx, customer)
}

func (s *creditService) creditStatusFor(ctx context.Context, customer *domain.Customer) (*domain.CreditStatus, error) {
	balance, err := s.balanceSvc.GetAccountBalance(ctx, customer.AccountCode, nil)
	if err != nil {
		return nil, err
	}

	used := balance.Balance
	available, err := customer.CreditLimit.Sub(used)
	if err != nil {
		return nil, err
	}
	return &domain.CreditStatus{
		CustomerID:      customer.CustomerID,
		CreditLimit:     customer.CreditLimit,
		UsedCredit:      used,
		AvailableCredit: available,
	}, nil
}

// CheckCredit reports whether an additional amount fits within the
// customer's limit. Advisory only.
func (s *creditService) CheckCredit(ctx context.Context, customerID string, amount domain.Money) (bool, *domain.CreditStatus, error) {
	status, err := s.GetCreditStatus(ctx, customerID)
	if err != nil {
		return false, nil, err
	}
	cmp, err := amount.Cmp(status.AvailableCredit)
	if err != nil {
		return false, nil, err
	}
	return cmp <= 0, status, nil
}

// UpdateCreditLimit sets a new credit limit. A limit below the customer's
// currently used credit is rejected: the limit never silently strands an
// already-extended balance.
func (s *creditService) UpdateCreditLimit(ctx context.Context, customerID string, req dto.UpdateCreditLimitRequest, userID string) (*domain.Customer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.CreditLimit.IsNegative() {
		return nil, ErrNegativeLimit
	}
	customer, err := s.customerRepo.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	newLimit, err := domain.NewMoney(req.CreditLimit, customer.CreditLimit.Currency())
	if err != nil {
		return nil, err
	}
	status, err := s.creditStatusFor(ctx, customer)
	if err != nil {
		return nil, err
	}
	cmp, err := newLimit.Cmp(status.UsedCredit)
	if err != nil {
		return nil, err
	}
	if cmp < 0 {
		return nil, fmt.Errorf("%w: used %s, requested limit %s", ErrBelowUsedCredit, status.UsedCredit, newLimit)
	}

	now := time.Now().UTC()
	oldLimit := customer.CreditLimit
	customer.CreditLimit = newLimit
	customer.LastUpdatedAt = now
	customer.LastUpdatedBy = userID
	if err := s.customerRepo.UpdateCreditLimit(ctx, *customer); err != nil {
		logger.Error("Failed to update credit limit", slog.String("customer_id", customerID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Credit limit updated", slog.String("customer_id", customerID), slog.String("new_limit", newLimit.String()))
	s.recorder.Record(ctx, domain.AuditEvent{
		EventID:    uuid.NewString(),
		EntityType: "customer",
		EntityID:   customerID,
		Action:     domain.AuditUpdate,
		Detail:     fmt.Sprintf("credit limit changed from %s to %s", oldLimit, newLimit),
		ActorID:    userID,
		OccurredAt: now,
	})
	return customer, nil
}
