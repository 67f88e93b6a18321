package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrellis/ledgercore/internal/core/domain"
)

// CreateAccountRequest defines the data needed to register a new account.
type CreateAccountRequest struct {
	AccountCode       string             `json:"accountCode" binding:"required,max=32"`
	Name              string             `json:"name" binding:"required"`
	AccountType       domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	CurrencyCode      string             `json:"currencyCode" binding:"required,len=3"`
	ParentAccountCode *string            `json:"parentAccountCode"`
	Description       string             `json:"description"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Pointers distinguish zero-value updates from fields not provided.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// SetParentRequest defines the payload for re-parenting an account. A nil
// parent detaches the account to root level.
type SetParentRequest struct {
	ParentAccountCode *string `json:"parentAccountCode"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID         string             `json:"accountID"`
	AccountCode       string             `json:"accountCode"`
	Name              string             `json:"name"`
	AccountType       domain.AccountType `json:"accountType"`
	CurrencyCode      string             `json:"currencyCode"`
	ParentAccountCode string             `json:"parentAccountCode,omitempty"`
	Description       string             `json:"description"`
	IsActive          bool               `json:"isActive"`
	CreatedAt         time.Time          `json:"createdAt"`
	CreatedBy         string             `json:"createdBy"`
	LastUpdatedAt     time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy     string             `json:"lastUpdatedBy"`
}

// BalanceResponse defines the data returned for an account balance query.
type BalanceResponse struct {
	AccountCode string             `json:"accountCode"`
	AccountType domain.AccountType `json:"accountType"`
	Currency    string             `json:"currency"`
	AsOf        *time.Time         `json:"asOf,omitempty"`
	Debits      decimal.Decimal    `json:"debits"`
	Credits     decimal.Decimal    `json:"credits"`
	Balance     decimal.Decimal    `json:"balance"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:         acc.AccountID,
		AccountCode:       acc.AccountCode,
		Name:              acc.Name,
		AccountType:       acc.AccountType,
		CurrencyCode:      string(acc.CurrencyCode),
		ParentAccountCode: acc.ParentAccountCode,
		Description:       acc.Description,
		IsActive:          acc.IsActive,
		CreatedAt:         acc.CreatedAt,
		CreatedBy:         acc.CreatedBy,
		LastUpdatedAt:     acc.LastUpdatedAt,
		LastUpdatedBy:     acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to response DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ToBalanceResponse converts a domain.AccountBalance to BalanceResponse DTO.
func ToBalanceResponse(b *domain.AccountBalance) BalanceResponse {
	return BalanceResponse{
		AccountCode: b.AccountCode,
		AccountType: b.AccountType,
		Currency:    string(b.Currency),
		AsOf:        b.AsOf,
		Debits:      b.Debits,
		Credits:     b.Credits,
		Balance:     b.Balance.Amount(),
	}
}
