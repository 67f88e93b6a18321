package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
//
// DRAFT -> POSTED is the normal flow; DRAFT -> VOID abandons an entry that
// never affected balances. A POSTED entry is immutable and can only be
// neutralized by posting a reversing entry, preserving an append-only audit
// trail. There is no POSTED -> VOID transition.
type EntryStatus string

const (
	Draft  EntryStatus = "DRAFT"
	Posted EntryStatus = "POSTED"
	Void   EntryStatus = "VOID"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple journal lines. The entry owns its lines as a value list; accounts
// are referenced by code, never owned.
type JournalEntry struct {
	EntryID          string      `json:"entryID"`     // Primary Key (UUID)
	EntryNumber      string      `json:"entryNumber"` // Sequential human-readable number, e.g. JE-000042
	EntryDate        time.Time   `json:"entryDate"`   // Date the event occurred
	Description      string      `json:"description"`
	Reference        string      `json:"reference"` // Caller-supplied idempotency/reference key
	CurrencyCode     Currency    `json:"currencyCode"`
	Status           EntryStatus `json:"status"`
	OriginalEntryID  *string     `json:"originalEntryID,omitempty"`  // Set on a reversing entry
	ReversingEntryID *string     `json:"reversingEntryID,omitempty"` // Set on the reversed original
	PostedAt         *time.Time  `json:"postedAt,omitempty"`
	PostedBy         string      `json:"postedBy,omitempty"`

	Lines []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is a single debit or credit against one account within an
// entry. Exactly one of Debit/Credit is nonzero; both are non-negative.
type JournalLine struct {
	LineID      string          `json:"lineID"`      // Primary Key (UUID)
	EntryID     string          `json:"entryID"`     // FK -> journal_entries.entry_id
	AccountCode string          `json:"accountCode"` // FK -> accounts.account_code
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
	Position    int             `json:"position"` // Order within the entry
	AuditFields
}

// ErrMalformedJournalLine is returned for a line where the debit/credit pair
// is not exactly-one-nonzero, or either side is negative.
var ErrMalformedJournalLine = errors.New("malformed journal line")

// Validate enforces the line shape invariant.
func (l JournalLine) Validate() error {
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return fmt.Errorf("%w: negative amount on account %s", ErrMalformedJournalLine, l.AccountCode)
	}
	debitSet := !l.Debit.IsZero()
	creditSet := !l.Credit.IsZero()
	if debitSet == creditSet {
		return fmt.Errorf("%w: exactly one of debit/credit must be nonzero on account %s", ErrMalformedJournalLine, l.AccountCode)
	}
	return nil
}

// IsDebit reports whether the line carries a debit amount.
func (l JournalLine) IsDebit() bool { return !l.Debit.IsZero() }

// Imbalance returns sum(debit) - sum(credit) across the entry's lines.
// A postable entry has an imbalance of exactly zero.
func (e *JournalEntry) Imbalance() decimal.Decimal {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, l := range e.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits.Sub(credits)
}
