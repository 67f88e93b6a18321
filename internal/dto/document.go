package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrellis/ledgercore/internal/core/domain"
)

// DocumentLineRequest defines one line of a document to be priced. Amounts
// arrive as plain decimals and are bound to the document currency.
type DocumentLineRequest struct {
	LineID          string           `json:"lineID"`
	Description     string           `json:"description"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unitPrice"`
	DiscountPercent decimal.Decimal  `json:"discountPercent"`
	TaxPercent      decimal.Decimal  `json:"taxPercent"`
	Cost            *decimal.Decimal `json:"cost"`
	IsHeader        bool             `json:"isHeader"`
}

// CalculateDocumentRequest defines the payload for recomputing a document.
type CalculateDocumentRequest struct {
	CurrencyCode string                `json:"currencyCode" binding:"required,len=3"`
	Lines        []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// PostInvoiceRequest defines the payload for posting an invoice to the
// ledger. Totals are recomputed server-side; the caller only supplies the
// pricing inputs and the three target accounts.
type PostInvoiceRequest struct {
	CustomerID         string                `json:"customerID" binding:"required"`
	InvoiceReference   string                `json:"invoiceReference" binding:"required"`
	InvoiceDate        time.Time             `json:"invoiceDate" binding:"required"`
	CurrencyCode       string                `json:"currencyCode" binding:"required,len=3"`
	ReceivableAccount  string                `json:"receivableAccount" binding:"required"`
	RevenueAccount     string                `json:"revenueAccount" binding:"required"`
	TaxPayableAccount  string                `json:"taxPayableAccount" binding:"required"`
	Lines              []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
	EnforceCreditLimit bool                  `json:"enforceCreditLimit"`
}

// SplitInstallmentsRequest defines the payload for splitting a total into
// equal installments.
type SplitInstallmentsRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Parts        int             `json:"parts" binding:"required,min=1,max=120"`
}

// DocumentLineResponse defines one priced line in the calculator response.
type DocumentLineResponse struct {
	LineID          string          `json:"lineID"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
	IsHeader        bool            `json:"isHeader"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
}

// MarginWarningResponse flags a line priced below the minimum margin.
type MarginWarningResponse struct {
	LineID        string          `json:"lineID"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	Threshold     decimal.Decimal `json:"threshold"`
}

// DocumentTotalsResponse defines the aggregated document totals.
type DocumentTotalsResponse struct {
	CurrencyCode   string          `json:"currencyCode"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

// CalculateDocumentResponse defines the full calculator result.
type CalculateDocumentResponse struct {
	Lines    []DocumentLineResponse  `json:"lines"`
	Totals   DocumentTotalsResponse  `json:"totals"`
	Warnings []MarginWarningResponse `json:"warnings,omitempty"`
}

// SplitInstallmentsResponse defines the list of installment amounts.
type SplitInstallmentsResponse struct {
	CurrencyCode string            `json:"currencyCode"`
	Parts        []decimal.Decimal `json:"parts"`
}

// ToDocumentLineResponse converts a priced domain line to its DTO.
func ToDocumentLineResponse(l *domain.DocumentLine) DocumentLineResponse {
	return DocumentLineResponse{
		LineID:          l.LineID,
		Description:     l.Description,
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice.Amount(),
		DiscountPercent: l.Discount.Value(),
		TaxPercent:      l.Tax.Value(),
		IsHeader:        l.IsHeader,
		Subtotal:        l.Subtotal.Amount(),
		DiscountAmount:  l.DiscountAmount.Amount(),
		TaxAmount:       l.TaxAmount.Amount(),
		TotalAmount:     l.TotalAmount.Amount(),
	}
}

// ToCalculateDocumentResponse converts the calculator result to its DTO.
func ToCalculateDocumentResponse(lines []domain.DocumentLine, totals domain.DocumentTotals, warnings []domain.MarginWarning) CalculateDocumentResponse {
	lineRes := make([]DocumentLineResponse, len(lines))
	for i, l := range lines {
		lineRes[i] = ToDocumentLineResponse(&l)
	}
	warnRes := make([]MarginWarningResponse, len(warnings))
	for i, w := range warnings {
		warnRes[i] = MarginWarningResponse{
			LineID:        w.LineID,
			MarginPercent: w.MarginPercent,
			Threshold:     w.Threshold,
		}
	}
	return CalculateDocumentResponse{
		Lines: lineRes,
		Totals: DocumentTotalsResponse{
			CurrencyCode:   string(totals.Subtotal.Currency()),
			Subtotal:       totals.Subtotal.Amount(),
			DiscountAmount: totals.DiscountAmount.Amount(),
			TaxAmount:      totals.TaxAmount.Amount(),
			TotalAmount:    totals.TotalAmount.Amount(),
		},
		Warnings: warnRes,
	}
}
