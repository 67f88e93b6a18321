package services

import (
	"context"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	"github.com/fintrellis/ledgercore/internal/dto"
)

// JournalReaderSvc defines read operations for journal entry data
type JournalReaderSvc interface {
	// GetEntryByID retrieves a specific entry with its lines by ID.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetEntryByReference retrieves an entry by its caller-supplied reference.
	GetEntryByReference(ctx context.Context, reference string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// JournalWriterSvc defines write operations for journal entry data
type JournalWriterSvc interface {
	// CreateEntry validates and persists a new draft entry with its lines.
	CreateEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// PostEntry transitions a draft entry to POSTED after revalidation.
	PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// VoidEntry transitions a draft entry to VOID.
	VoidEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// ReverseEntry creates and posts a reversing entry for a posted entry,
	// linking the two.
	ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)
}

// ActivityReaderSvc defines read operations for per-account posted activity
type ActivityReaderSvc interface {
	// ListActivityByAccount retrieves posted lines for one account, newest
	// first.
	ListActivityByAccount(ctx context.Context, accountCode string, params dto.ListActivityParams) (*dto.ListActivityResponse, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	ActivityReaderSvc
}
