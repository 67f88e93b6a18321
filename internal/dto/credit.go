package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrellis/ledgercore/internal/core/domain"
)

// CreateCustomerRequest defines the data needed to register a customer for
// credit control.
type CreateCustomerRequest struct {
	Name         string          `json:"name" binding:"required"`
	AccountCode  string          `json:"accountCode" binding:"required,max=32"`
	CreditLimit  decimal.Decimal `json:"creditLimit"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
}

// UpdateCreditLimitRequest defines the payload for changing a credit limit.
type UpdateCreditLimitRequest struct {
	CreditLimit decimal.Decimal `json:"creditLimit" binding:"required"`
}

// CustomerResponse defines the data returned for a customer.
type CustomerResponse struct {
	CustomerID    string          `json:"customerID"`
	Name          string          `json:"name"`
	AccountCode   string          `json:"accountCode"`
	CreditLimit   decimal.Decimal `json:"creditLimit"`
	CurrencyCode  string          `json:"currencyCode"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// CreditStatusResponse defines the point-in-time credit snapshot returned to
// callers. The snapshot can be stale by the time the caller acts on it.
type CreditStatusResponse struct {
	CustomerID      string          `json:"customerID"`
	CurrencyCode    string          `json:"currencyCode"`
	CreditLimit     decimal.Decimal `json:"creditLimit"`
	UsedCredit      decimal.Decimal `json:"usedCredit"`
	AvailableCredit decimal.Decimal `json:"availableCredit"`
	IsWithinLimit   bool            `json:"isWithinLimit"`
}

// ToCustomerResponse converts a domain.Customer to CustomerResponse DTO.
func ToCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID:    c.CustomerID,
		Name:          c.Name,
		AccountCode:   c.AccountCode,
		CreditLimit:   c.CreditLimit.Amount(),
		CurrencyCode:  string(c.CreditLimit.Currency()),
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		LastUpdatedAt: c.LastUpdatedAt,
	}
}

// ToCreditStatusResponse converts a domain.CreditStatus to its DTO.
func ToCreditStatusResponse(s *domain.CreditStatus) CreditStatusResponse {
	return CreditStatusResponse{
		CustomerID:      s.CustomerID,
		CurrencyCode:    string(s.CreditLimit.Currency()),
		CreditLimit:     s.CreditLimit.Amount(),
		UsedCredit:      s.UsedCredit.Amount(),
		AvailableCredit: s.AvailableCredit.Amount(),
		IsWithinLimit:   !s.OverLimit(),
	}
}
