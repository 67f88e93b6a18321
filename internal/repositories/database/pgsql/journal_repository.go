package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrellis/ledgercore/internal/apperrors"
	"github.com/fintrellis/ledgercore/internal/core/domain"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
	"github.com/fintrellis/ledgercore/internal/utils/pagination"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entry data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

const entryColumns = `
	entry_id, entry_number, entry_date, description, COALESCE(reference, ''),
	currency_code, status, original_entry_id, reversing_entry_id,
	posted_at, COALESCE(posted_by, ''),
	created_at, created_by, last_updated_at, last_updated_by
`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(
		&e.EntryID,
		&e.EntryNumber,
		&e.EntryDate,
		&e.Description,
		&e.Reference,
		&e.CurrencyCode,
		&e.Status,
		&e.OriginalEntryID,
		&e.ReversingEntryID,
		&e.PostedAt,
		&e.PostedBy,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	return e, err
}

// nextEntryNumber draws the next sequential entry number inside tx. Numbers
// are gap-free only as far as the sequence goes; a rolled-back save burns
// its number, which auditors accept as long as the order is monotonic.
func nextEntryNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	var n int64
	if err := tx.QueryRow(ctx, `SELECT nextval('journal_entry_number_seq');`).Scan(&n); err != nil {
		return "", apperrors.NewAppError(500, "failed to draw entry number", err)
	}
	return fmt.Sprintf("JE-%06d", n), nil
}

func insertLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine) error {
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (
			line_id, entry_id, account_code, debit, credit, memo, position,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	for _, l := range lines {
		batch.Queue(lineQuery,
			l.LineID, l.EntryID, l.AccountCode, l.Debit, l.Credit, l.Memo, l.Position,
			l.CreatedAt, l.CreatedBy, l.LastUpdatedAt, l.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range lines {
		if _, err := results.Exec(); err != nil {
			return apperrors.NewAppError(500, "failed to insert journal line", err)
		}
	}
	return nil
}

// SaveEntry persists a draft entry and its lines in one transaction and
// assigns the next sequential entry number.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer r.Rollback(ctx, tx)

	entryNumber, err := nextEntryNumber(ctx, tx)
	if err != nil {
		return "", err
	}

	entryQuery := `
		INSERT INTO journal_entries (
			entry_id, entry_number, entry_date, description, reference,
			currency_code, status, original_entry_id, reversing_entry_id,
			posted_at, posted_by,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID, entryNumber, entry.EntryDate, entry.Description, entry.Reference,
		entry.CurrencyCode, entry.Status, entry.OriginalEntryID, entry.ReversingEntryID,
		entry.PostedAt, entry.PostedBy,
		entry.CreatedAt, entry.CreatedBy, entry.LastUpdatedAt, entry.LastUpdatedBy,
	)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to insert journal entry "+entry.EntryID, err)
	}

	if err := insertLines(ctx, tx, lines); err != nil {
		return "", err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return entryNumber, nil
}

// PostEntry flips a draft entry to POSTED inside one transaction. The entry
// row is locked, revalidate runs against the locked state, and the status
// update commits only if revalidate returns nil.
func (r *PgxJournalRepository) PostEntry(ctx context.Context, entryID string, postedBy string, postedAt time.Time, revalidate func(entry domain.JournalEntry, lines []domain.JournalLine) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`
	entry, err := scanEntry(tx.QueryRow(ctx, lockQuery, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
		}
		return apperrors.NewAppError(500, "failed to lock journal entry "+entryID, err)
	}

	lines, err := queryLines(ctx, tx, entryID)
	if err != nil {
		return err
	}
	if revalidate != nil {
		if err := revalidate(entry, lines); err != nil {
			return err
		}
	}

	updateQuery := `
		UPDATE journal_entries
		SET status = $2, posted_at = $3, posted_by = $4, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, entryID, domain.Posted, postedAt, postedBy); err != nil {
		return apperrors.NewAppError(500, "failed to post journal entry "+entryID, err)
	}
	return r.Commit(ctx, tx)
}

// VoidEntry flips a draft entry to VOID. The status guard in the predicate
// makes the transition race-safe without an explicit lock.
func (r *PgxJournalRepository) VoidEntry(ctx context.Context, entryID string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1 AND status = $5;
	`
	tag, err := r.Pool.Exec(ctx, query, entryID, domain.Void, updatedAt, updatedBy, domain.Draft)
	if err != nil {
		return apperrors.NewAppError(500, "failed to void journal entry "+entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not a draft", apperrors.ErrConflict, entryID)
	}
	return nil
}

// SaveReversalEntry persists a posted reversing entry and links it to the
// original in one transaction.
func (r *PgxJournalRepository) SaveReversalEntry(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, originalEntryID string) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer r.Rollback(ctx, tx)

	// Lock the original; a concurrent reversal must not link twice.
	var status domain.EntryStatus
	var reversingID *string
	lockQuery := `SELECT status, reversing_entry_id FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, lockQuery, originalEntryID).Scan(&status, &reversingID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, originalEntryID)
		}
		return "", apperrors.NewAppError(500, "failed to lock original entry "+originalEntryID, err)
	}
	if status != domain.Posted {
		return "", fmt.Errorf("%w: entry %s is %s", apperrors.ErrConflict, originalEntryID, status)
	}
	if reversingID != nil {
		return "", fmt.Errorf("%w: entry %s already reversed", apperrors.ErrConflict, originalEntryID)
	}

	entryNumber, err := nextEntryNumber(ctx, tx)
	if err != nil {
		return "", err
	}

	entryQuery := `
		INSERT INTO journal_entries (
			entry_id, entry_number, entry_date, description, reference,
			currency_code, status, original_entry_id, reversing_entry_id,
			posted_at, posted_by,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, entryQuery,
		reversal.EntryID, entryNumber, reversal.EntryDate, reversal.Description, reversal.Reference,
		reversal.CurrencyCode, reversal.Status, reversal.OriginalEntryID, reversal.ReversingEntryID,
		reversal.PostedAt, reversal.PostedBy,
		reversal.CreatedAt, reversal.CreatedBy, reversal.LastUpdatedAt, reversal.LastUpdatedBy,
	)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to insert reversal entry "+reversal.EntryID, err)
	}
	if err := insertLines(ctx, tx, lines); err != nil {
		return "", err
	}

	linkQuery := `
		UPDATE journal_entries
		SET reversing_entry_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1;
	`
	if _, err := tx.Exec(ctx, linkQuery, originalEntryID, reversal.EntryID, reversal.CreatedAt, reversal.CreatedBy); err != nil {
		return "", apperrors.NewAppError(500, "failed to link reversal to entry "+originalEntryID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return entryNumber, nil
}

// FindEntryByID retrieves an entry with its lines by unique identifier.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, apperrors.NewAppError(500, "failed to query journal entry "+entryID, err)
	}

	lines, err := r.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return &entry, nil
}

// FindEntryByReference retrieves an entry with its lines by reference key.
func (r *PgxJournalRepository) FindEntryByReference(ctx context.Context, reference string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE reference = $1;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: reference %s", apperrors.ErrNotFound, reference)
		}
		return nil, apperrors.NewAppError(500, "failed to query journal entry by reference", err)
	}

	lines, err := r.FindLinesByEntryID(ctx, entry.EntryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return &entry, nil
}

// ListEntries retrieves a page of entry headers, newest first, using keyset
// pagination on (created_at, entry_id).
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := []any{limit + 1}
	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if nextToken != nil && *nextToken != "" {
		createdAt, entryID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` WHERE (created_at, entry_id) < ($2, $3)`
		args = append(args, createdAt, entryID)
	}
	query += ` ORDER BY created_at DESC, entry_id DESC LIMIT $1;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list journal entries", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading journal entry rows", err)
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.EntryID)
		token = &t
	}
	return entries, token, nil
}

const lineColumns = `
	line_id, entry_id, account_code, debit, credit, memo, position,
	created_at, created_by, last_updated_at, last_updated_by
`

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryLines(ctx context.Context, q rowQuerier, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 ORDER BY position;`
	rows, err := q.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		var l domain.JournalLine
		err := rows.Scan(
			&l.LineID, &l.EntryID, &l.AccountCode, &l.Debit, &l.Credit, &l.Memo, &l.Position,
			&l.CreatedAt, &l.CreatedBy, &l.LastUpdatedAt, &l.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal line row", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// FindLinesByEntryID retrieves all lines of a single entry in position order.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	return queryLines(ctx, r.Pool, entryID)
}

// ListActivityByAccount retrieves posted lines for an account joined with
// their entry headers, newest first.
func (r *PgxJournalRepository) ListActivityByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.AccountActivity, *string, error) {
	args := []any{accountCode, limit + 1}
	query := `
		SELECT e.entry_id, e.entry_number, e.entry_date, e.description,
		       l.account_code, l.debit, l.credit, l.memo,
		       l.created_at, l.line_id
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_code = $1 AND e.status = 'POSTED'
	`
	if nextToken != nil && *nextToken != "" {
		createdAt, lineID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (l.created_at, l.line_id) < ($3, $4)`
		args = append(args, createdAt, lineID)
	}
	query += ` ORDER BY l.created_at DESC, l.line_id DESC LIMIT $2;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list activity for "+accountCode, err)
	}
	defer rows.Close()

	type pageKey struct {
		createdAt time.Time
		lineID    string
	}
	var activity []domain.AccountActivity
	var keys []pageKey
	for rows.Next() {
		var a domain.AccountActivity
		var key pageKey
		err := rows.Scan(
			&a.EntryID, &a.EntryNumber, &a.EntryDate, &a.Description,
			&a.AccountCode, &a.Debit, &a.Credit, &a.Memo,
			&key.createdAt, &key.lineID,
		)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan activity row", err)
		}
		activity = append(activity, a)
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading activity rows", err)
	}

	var token *string
	if len(activity) > limit {
		activity = activity[:limit]
		last := keys[limit-1]
		t := pagination.EncodeToken(last.createdAt, last.lineID)
		token = &t
	}
	return activity, token, nil
}
