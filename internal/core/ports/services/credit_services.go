package services

import (
	"context"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	"github.com/fintrellis/ledgercore/internal/dto"
)

// CreditReaderSvc defines read operations for customer credit control
type CreditReaderSvc interface {
	// GetCustomerByID retrieves a customer.
	GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)

	// GetCreditStatus derives the customer's credit snapshot from the posted
	// balance of their receivable account.
	GetCreditStatus(ctx context.Context, customerID string) (*domain.CreditStatus, error)

	// CheckCredit reports whether an additional amount would fit within the
	// customer's limit. The answer is advisory; it can be stale by the time
	// the caller posts.
	CheckCredit(ctx context.Context, customerID string, amount domain.Money) (bool, *domain.CreditStatus, error)
}

// CreditWriterSvc defines write operations for customer credit control
type CreditWriterSvc interface {
	// CreateCustomer registers a customer with a receivable account linkage.
	CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest, creatorUserID string) (*domain.Customer, error)

	// UpdateCreditLimit sets a new credit limit, rejecting limits below the
	// customer's currently used credit.
	UpdateCreditLimit(ctx context.Context, customerID string, req dto.UpdateCreditLimitRequest, userID string) (*domain.Customer, error)
}

// CreditSvcFacade combines all credit-related service interfaces
type CreditSvcFacade interface {
	CreditReaderSvc
	CreditWriterSvc
}
