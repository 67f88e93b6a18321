package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/dto"
	"github.com/fintrellis/ledgercore/internal/middleware"
)

// documentService prices document lines and turns priced invoices into
// ledger entries.
type documentService struct {
	journalSvc portssvc.JournalSvcFacade
	creditSvc  portssvc.CreditSvcFacade
	minMargin  decimal.Decimal
}

// NewDocumentService creates a new DocumentService. minMargin is the
// percentage below which a line draws a margin warning.
func NewDocumentService(journalSvc portssvc.JournalSvcFacade, creditSvc portssvc.CreditSvcFacade, minMargin decimal.Decimal) portssvc.DocumentSvcFacade {
	return &documentService{
		journalSvc: journalSvc,
		creditSvc:  creditSvc,
		minMargin:  minMargin,
	}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

func toDomainLines(currency domain.Currency, reqLines []dto.DocumentLineRequest) ([]domain.DocumentLine, error) {
	lines := make([]domain.DocumentLine, len(reqLines))
	for i, lr := range reqLines {
		unitPrice, err := domain.NewMoney(lr.UnitPrice, currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		discount, err := domain.NewPercent(lr.DiscountPercent)
		if err != nil {
			return nil, fmt.Errorf("line %d discount: %w", i, err)
		}
		tax, err := domain.NewPercent(lr.TaxPercent)
		if err != nil {
			return nil, fmt.Errorf("line %d tax: %w", i, err)
		}
		var cost *domain.Money
		if lr.Cost != nil {
			c, err := domain.NewMoney(*lr.Cost, currency)
			if err != nil {
				return nil, fmt.Errorf("line %d cost: %w", i, err)
			}
			cost = &c
		}
		lines[i] = domain.DocumentLine{
			LineID:      lr.LineID,
			Description: lr.Description,
			Quantity:    lr.Quantity,
			UnitPrice:   unitPrice,
			Discount:    discount,
			Tax:         tax,
			Cost:        cost,
			IsHeader:    lr.IsHeader,
		}
	}
	return lines, nil
}

// CalculateDocument recomputes line amounts and document totals and collects
// margin warnings for lines priced below the minimum.
func (s *documentService) CalculateDocument(ctx context.Context, req dto.CalculateDocumentRequest) ([]domain.DocumentLine, domain.DocumentTotals, []domain.MarginWarning, error) {
	currency := domain.Currency(req.CurrencyCode)
	lines, err := toDomainLines(currency, req.Lines)
	if err != nil {
		return nil, domain.DocumentTotals{}, nil, err
	}

	calced, totals, err := domain.CalculateDocument(currency, lines)
	if err != nil {
		return nil, domain.DocumentTotals{}, nil, err
	}

	var warnings []domain.MarginWarning
	for _, line := range calced {
		if line.IsHeader {
			continue
		}
		margin, ok := line.MarginPercent()
		if ok && margin.LessThan(s.minMargin) {
			warnings = append(warnings, domain.MarginWarning{
				LineID:        line.LineID,
				MarginPercent: margin,
				Threshold:     s.minMargin,
			})
		}
	}
	return calced, totals, warnings, nil
}

// SplitInstallments splits a total into n parts that sum exactly to the
// total. Earlier parts carry the truncated share, the last part absorbs the
// remainder.
func (s *documentService) SplitInstallments(ctx context.Context, total domain.Money, parts int) ([]domain.Money, error) {
	return total.Allocate(parts)
}

// PostInvoice recomputes the invoice totals and posts the corresponding
// journal entry in one flow: debit receivable for the grand total, credit
// revenue for the taxable amount, credit tax payable for the tax. The entry
// balances by construction since total = taxable + tax.
func (s *documentService) PostInvoice(ctx context.Context, req dto.PostInvoiceRequest, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	_, totals, warnings, err := s.CalculateDocument(ctx, dto.CalculateDocumentRequest{
		CurrencyCode: req.CurrencyCode,
		Lines:        req.Lines,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn("Invoice line below minimum margin",
			slog.String("line_id", w.LineID),
			slog.String("margin_percent", w.MarginPercent.String()),
		)
	}

	if req.EnforceCreditLimit {
		ok, status, err := s.creditSvc.CheckCredit(ctx, req.CustomerID, totals.TotalAmount)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: total %s, available %s", ErrCreditLimitBlown, totals.TotalAmount, status.AvailableCredit)
		}
	}

	taxable, err := totals.TaxableAmount()
	if err != nil {
		return nil, err
	}

	entryLines := []dto.CreateJournalLineRequest{
		{
			AccountCode: req.ReceivableAccount,
			Debit:       totals.TotalAmount.Amount(),
			Memo:        fmt.Sprintf("Invoice %s", req.InvoiceReference),
		},
		{
			AccountCode: req.RevenueAccount,
			Credit:      taxable.Amount(),
			Memo:        fmt.Sprintf("Invoice %s revenue", req.InvoiceReference),
		},
	}
	if !totals.TaxAmount.IsZero() {
		entryLines = append(entryLines, dto.CreateJournalLineRequest{
			AccountCode: req.TaxPayableAccount,
			Credit:      totals.TaxAmount.Amount(),
			Memo:        fmt.Sprintf("Invoice %s tax", req.InvoiceReference),
		})
	}

	draft, err := s.journalSvc.CreateEntry(ctx, dto.CreateJournalEntryRequest{
		EntryDate:    req.InvoiceDate,
		Description:  fmt.Sprintf("Invoice %s", req.InvoiceReference),
		Reference:    req.InvoiceReference,
		CurrencyCode: req.CurrencyCode,
		Lines:        entryLines,
	}, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice entry: %w", err)
	}

	posted, err := s.journalSvc.PostEntry(ctx, draft.EntryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to post invoice entry: %w", err)
	}

	logger.Info("Invoice posted to ledger",
		slog.String("invoice_reference", req.InvoiceReference),
		slog.String("entry_id", posted.EntryID),
		slog.String("total", totals.TotalAmount.String()),
	)
	return posted, nil
}
