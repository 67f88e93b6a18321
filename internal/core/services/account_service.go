package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fintrellis/ledgercore/internal/apperrors"
	"github.com/fintrellis/ledgercore/internal/core/domain"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/dto"
	"github.com/fintrellis/ledgercore/internal/middleware"
)

var (
	ErrDuplicateCode      = errors.New("account code already exists")
	ErrParentNotFound     = errors.New("parent account not found")
	ErrCycleDetected      = errors.New("parent assignment would create a cycle")
	ErrAccountInUse       = errors.New("account has posted activity")
	ErrAccountHasChildren = errors.New("account has child accounts")
	ErrInvalidAccountType = errors.New("invalid account type")
)

// accountService provides chart-of-accounts operations.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	currencySvc portssvc.CurrencyReaderSvc
	recorder    portssvc.AuditRecorder
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, currencySvc portssvc.CurrencyReaderSvc, recorder portssvc.AuditRecorder) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		currencySvc: currencySvc,
		recorder:    recorder,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new account with a unique code.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := domain.ValidateAccountCode(req.AccountCode); err != nil {
		return nil, err
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountType, req.AccountType)
	}
	if _, err := s.currencySvc.GetCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		return nil, fmt.Errorf("unknown currency %s: %w", req.CurrencyCode, err)
	}

	if existing, err := s.accountRepo.FindAccountByCode(ctx, req.AccountCode); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, req.AccountCode)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	parentCode := ""
	if req.ParentAccountCode != nil && *req.ParentAccountCode != "" {
		parent, err := s.accountRepo.FindAccountByCode(ctx, *req.ParentAccountCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrParentNotFound, *req.ParentAccountCode)
			}
			return nil, err
		}
		parentCode = parent.AccountCode
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:         uuid.NewString(),
		AccountCode:       req.AccountCode,
		Name:              req.Name,
		AccountType:       req.AccountType,
		CurrencyCode:      domain.Currency(req.CurrencyCode),
		ParentAccountCode: parentCode,
		Description:       req.Description,
		IsActive:          true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost the race to another writer with the same code.
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, req.AccountCode)
		}
		logger.Error("Failed to save account", slog.String("account_code", req.AccountCode), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Account created", slog.String("account_code", account.AccountCode), slog.String("account_type", string(account.AccountType)))
	s.recorder.Record(ctx, domain.AuditEvent{
		EventID:    uuid.NewString(),
		EntityType: "account",
		EntityID:   account.AccountCode,
		Action:     domain.AuditCreate,
		Detail:     fmt.Sprintf("account %s (%s) created", account.AccountCode, account.AccountType),
		ActorID:    creatorUserID,
		OccurredAt: now,
	})
	return &account, nil
}

// GetAccountByCode retrieves an account by its unique code.
func (s *accountService) GetAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByCode(ctx, accountCode)
}

// ListAccounts retrieves all accounts.
func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx)
}

// ListChildAccounts retrieves the direct children of an account.
func (s *accountService) ListChildAccounts(ctx context.Context, accountCode string) ([]domain.Account, error) {
	if _, err := s.accountRepo.FindAccountByCode(ctx, accountCode); err != nil {
		return nil, err
	}
	return s.accountRepo.ListChildAccounts(ctx, accountCode)
}

// UpdateAccount updates an account's mutable fields.
func (s *accountService) UpdateAccount(ctx context.Context, accountCode string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, err
	}
	return account, nil
}

// SetParentAccount re-parents an account. The parent chain is walked up to
// the root first; if the account itself appears anywhere on it the
// assignment is rejected, so the hierarchy stays a tree.
func (s *accountService) SetParentAccount(ctx context.Context, accountCode string, parentAccountCode *string, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	newParent := ""
	if parentAccountCode != nil && *parentAccountCode != "" {
		if *parentAccountCode == accountCode {
			return nil, fmt.Errorf("%w: %s cannot be its own parent", ErrCycleDetected, accountCode)
		}
		if _, err := s.accountRepo.FindAccountByCode(ctx, *parentAccountCode); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrParentNotFound, *parentAccountCode)
			}
			return nil, err
		}
		if err := s.checkNoCycle(ctx, accountCode, *parentAccountCode); err != nil {
			return nil, err
		}
		newParent = *parentAccountCode
	}

	account.ParentAccountCode = newParent
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to re-parent account", slog.String("account_code", accountCode), slog.String("error", err.Error()))
		return nil, err
	}
	logger.Info("Account re-parented", slog.String("account_code", accountCode), slog.String("parent_account_code", newParent))
	return account, nil
}

// checkNoCycle walks the ancestor chain from candidateParent to the root and
// fails if accountCode appears on it.
func (s *accountService) checkNoCycle(ctx context.Context, accountCode, candidateParent string) error {
	const maxDepth = 64 // hierarchy depth sanity bound
	current := candidateParent
	for depth := 0; current != "" && depth < maxDepth; depth++ {
		if current == accountCode {
			return fmt.Errorf("%w: %s is an ancestor of %s", ErrCycleDetected, accountCode, candidateParent)
		}
		parent, err := s.accountRepo.FindAccountByCode(ctx, current)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		}
		current = parent.ParentAccountCode
	}
	return nil
}

// DeactivateAccount marks an account inactive; its history stays intact and
// it no longer accepts new journal lines.
func (s *accountService) DeactivateAccount(ctx context.Context, accountCode string, userID string) error {
	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return nil
	}
	account.IsActive = false
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID
	return s.accountRepo.UpdateAccount(ctx, *account)
}

// DeleteAccount removes an account that has no posted activity and no
// children. Accounts with history can only be deactivated.
func (s *accountService) DeleteAccount(ctx context.Context, accountCode string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByCode(ctx, accountCode); err != nil {
		return err
	}
	inUse, err := s.accountRepo.HasPostedLines(ctx, accountCode)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: %s", ErrAccountInUse, accountCode)
	}
	children, err := s.accountRepo.ListChildAccounts(ctx, accountCode)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: %s has %d children", ErrAccountHasChildren, accountCode, len(children))
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountCode); err != nil {
		logger.Error("Failed to delete account", slog.String("account_code", accountCode), slog.String("error", err.Error()))
		return err
	}
	logger.Info("Account deleted", slog.String("account_code", accountCode), slog.String("user_id", userID))
	return nil
}
