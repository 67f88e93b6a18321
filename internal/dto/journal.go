package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrellis/ledgercore/internal/core/domain"
)

// CreateJournalLineRequest defines one line of a new journal entry. Exactly
// one of debit/credit must be nonzero; the service enforces the pairing.
type CreateJournalLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}

// CreateJournalEntryRequest defines the data needed to create a draft entry.
type CreateJournalEntryRequest struct {
	EntryDate    time.Time                  `json:"entryDate" binding:"required"`
	Description  string                     `json:"description" binding:"required"`
	Reference    string                     `json:"reference"`
	CurrencyCode string                     `json:"currencyCode" binding:"required,len=3"`
	Lines        []CreateJournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
	Position    int             `json:"position"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID          string                `json:"entryID"`
	EntryNumber      string                `json:"entryNumber"`
	EntryDate        time.Time             `json:"entryDate"`
	Description      string                `json:"description"`
	Reference        string                `json:"reference,omitempty"`
	CurrencyCode     string                `json:"currencyCode"`
	Status           domain.EntryStatus    `json:"status"`
	OriginalEntryID  *string               `json:"originalEntryID,omitempty"`
	ReversingEntryID *string               `json:"reversingEntryID,omitempty"`
	PostedAt         *time.Time            `json:"postedAt,omitempty"`
	PostedBy         string                `json:"postedBy,omitempty"`
	Lines            []JournalLineResponse `json:"lines"`
	CreatedAt        time.Time             `json:"createdAt"`
	CreatedBy        string                `json:"createdBy"`
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse defines the paginated response for listing entries.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ListActivityParams defines query parameters for listing account activity.
type ListActivityParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// AccountActivityResponse defines one posted line joined with its entry header.
type AccountActivityResponse struct {
	EntryID     string          `json:"entryID"`
	EntryNumber string          `json:"entryNumber"`
	EntryDate   time.Time       `json:"entryDate"`
	Description string          `json:"description"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}

// ListActivityResponse defines the paginated response for account activity.
type ListActivityResponse struct {
	Activity  []AccountActivityResponse `json:"activity"`
	NextToken *string                   `json:"nextToken,omitempty"`
}

// ToJournalLineResponse converts a domain.JournalLine to JournalLineResponse DTO.
func ToJournalLineResponse(l *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:      l.LineID,
		AccountCode: l.AccountCode,
		Debit:       l.Debit,
		Credit:      l.Credit,
		Memo:        l.Memo,
		Position:    l.Position,
	}
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = ToJournalLineResponse(&l)
	}
	return JournalEntryResponse{
		EntryID:          e.EntryID,
		EntryNumber:      e.EntryNumber,
		EntryDate:        e.EntryDate,
		Description:      e.Description,
		Reference:        e.Reference,
		CurrencyCode:     string(e.CurrencyCode),
		Status:           e.Status,
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		PostedAt:         e.PostedAt,
		PostedBy:         e.PostedBy,
		Lines:            lines,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
	}
}

// ToListEntriesResponse converts a page of domain entries to the list DTO.
func ToListEntriesResponse(entries []domain.JournalEntry, nextToken *string) *ListEntriesResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = ToJournalEntryResponse(&e)
	}
	return &ListEntriesResponse{Entries: res, NextToken: nextToken}
}

// ToAccountActivityResponse converts a domain.AccountActivity to its DTO.
func ToAccountActivityResponse(a *domain.AccountActivity) AccountActivityResponse {
	return AccountActivityResponse{
		EntryID:     a.EntryID,
		EntryNumber: a.EntryNumber,
		EntryDate:   a.EntryDate,
		Description: a.Description,
		AccountCode: a.AccountCode,
		Debit:       a.Debit,
		Credit:      a.Credit,
		Memo:        a.Memo,
	}
}

// ToListActivityResponse converts a page of account activity to the list DTO.
func ToListActivityResponse(activity []domain.AccountActivity, nextToken *string) *ListActivityResponse {
	res := make([]AccountActivityResponse, len(activity))
	for i, a := range activity {
		res[i] = ToAccountActivityResponse(&a)
	}
	return &ListActivityResponse{Activity: res, NextToken: nextToken}
}
