package services

import (
	"context"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	"github.com/fintrellis/ledgercore/internal/dto"
)

// AccountReaderSvc defines read operations for chart-of-accounts data
type AccountReaderSvc interface {
	// GetAccountByCode retrieves an account by its unique code.
	GetAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error)

	// ListAccounts retrieves all accounts.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// ListChildAccounts retrieves the direct children of an account.
	ListChildAccounts(ctx context.Context, accountCode string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for chart-of-accounts data
type AccountWriterSvc interface {
	// CreateAccount registers a new account with a unique code.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// UpdateAccount updates an account's mutable fields (name, description).
	UpdateAccount(ctx context.Context, accountCode string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// SetParentAccount re-parents an account, rejecting cycles. A nil parent
	// detaches the account to the root level.
	SetParentAccount(ctx context.Context, accountCode string, parentAccountCode *string, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account inactive; its history stays intact.
	DeactivateAccount(ctx context.Context, accountCode string, userID string) error

	// DeleteAccount removes an account that has no posted activity and no
	// children.
	DeleteAccount(ctx context.Context, accountCode string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
