package services

import (
	"context"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	"github.com/fintrellis/ledgercore/internal/dto"
)

// DocumentCalculatorSvc defines pure document-costing operations
type DocumentCalculatorSvc interface {
	// CalculateDocument recomputes line amounts and document totals and
	// collects margin warnings for lines priced below the configured minimum.
	CalculateDocument(ctx context.Context, req dto.CalculateDocumentRequest) ([]domain.DocumentLine, domain.DocumentTotals, []domain.MarginWarning, error)

	// SplitInstallments splits a total into n parts that sum exactly to the
	// total.
	SplitInstallments(ctx context.Context, total domain.Money, parts int) ([]domain.Money, error)
}

// DocumentPosterSvc turns priced documents into ledger entries
type DocumentPosterSvc interface {
	// PostInvoice recomputes the invoice totals and posts the corresponding
	// journal entry: debit receivable for the total, credit revenue for the
	// taxable amount, credit tax payable for the tax.
	PostInvoice(ctx context.Context, req dto.PostInvoiceRequest, userID string) (*domain.JournalEntry, error)
}

// DocumentSvcFacade combines all document-related service interfaces
type DocumentSvcFacade interface {
	DocumentCalculatorSvc
	DocumentPosterSvc
}
