package repositories

import (
	"context"
	"time"

	"github.com/fintrellis/ledgercore/internal/core/domain"
)

// JournalReader defines read operations for journal entry data
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines by unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryByReference retrieves an entry with its lines by its
	// caller-supplied reference key.
	FindEntryByReference(ctx context.Context, reference string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries using token-based
	// pagination. It returns the entries, a token for the next page, and an
	// error.
	ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal entry data
type JournalWriter interface {
	// SaveEntry persists a draft entry and its lines in one transaction and
	// assigns the next sequential entry number.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) (entryNumber string, err error)

	// PostEntry flips a draft entry to POSTED inside one transaction. The
	// entry row is locked, revalidate runs against the locked state, and the
	// status update commits only if revalidate returns nil. Balances expose
	// the entry atomically because they aggregate posted entries only.
	PostEntry(ctx context.Context, entryID string, postedBy string, postedAt time.Time, revalidate func(entry domain.JournalEntry, lines []domain.JournalLine) error) error

	// VoidEntry flips a draft entry to VOID.
	VoidEntry(ctx context.Context, entryID string, updatedBy string, updatedAt time.Time) error

	// SaveReversalEntry persists a reversing entry and links it to the
	// original in one transaction: the new entry is saved POSTED and the
	// original's reversing_entry_id is set.
	SaveReversalEntry(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, originalEntryID string) (entryNumber string, err error)
}

// LineReader defines read operations for journal line data
type LineReader interface {
	// FindLinesByEntryID retrieves all lines of a single entry in position order.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// ListActivityByAccount retrieves posted lines for an account joined with
	// their entry headers, newest first, with token-based pagination.
	ListActivityByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.AccountActivity, *string, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	LineReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
