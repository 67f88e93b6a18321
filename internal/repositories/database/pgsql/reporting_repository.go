package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fintrellis/ledgercore/internal/apperrors"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for balance aggregates.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingReader {
	return &PgxReportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReportingReader = (*PgxReportingRepository)(nil)

// SumPostedLinesByAccount returns debit/credit sums for one account over
// posted entries with entry_date <= asOf.
func (r *PgxReportingRepository) SumPostedLinesByAccount(ctx context.Context, accountCode string, asOf *time.Time) (portsrepo.BalanceSums, error) {
	query := `
		SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_code = $1
		  AND e.status = 'POSTED'
		  AND ($2::timestamptz IS NULL OR e.entry_date <= $2);
	`
	sums := portsrepo.BalanceSums{AccountCode: accountCode}
	err := r.Pool.QueryRow(ctx, query, accountCode, asOf).Scan(&sums.Debits, &sums.Credits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			sums.Debits = decimal.Zero
			sums.Credits = decimal.Zero
			return sums, nil
		}
		return sums, apperrors.NewAppError(500, "failed to sum posted lines for "+accountCode, err)
	}
	return sums, nil
}

// SumPostedLinesByAccounts returns debit/credit sums for the given accounts
// in one query, keyed by account code.
func (r *PgxReportingRepository) SumPostedLinesByAccounts(ctx context.Context, accountCodes []string, asOf *time.Time) (map[string]portsrepo.BalanceSums, error) {
	if len(accountCodes) == 0 {
		return map[string]portsrepo.BalanceSums{}, nil
	}
	query := `
		SELECT l.account_code, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_code = ANY($1)
		  AND e.status = 'POSTED'
		  AND ($2::timestamptz IS NULL OR e.entry_date <= $2)
		GROUP BY l.account_code;
	`
	rows, err := r.Pool.Query(ctx, query, accountCodes, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sum posted lines by accounts", err)
	}
	defer rows.Close()

	result := make(map[string]portsrepo.BalanceSums, len(accountCodes))
	for rows.Next() {
		var sums portsrepo.BalanceSums
		if err := rows.Scan(&sums.AccountCode, &sums.Debits, &sums.Credits); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan balance sums row", err)
		}
		result[sums.AccountCode] = sums
	}
	return result, rows.Err()
}

// SumPostedLinesByCurrency returns debit/credit sums up to asOf for every
// active account in the given currency. The left join keeps zero-balance
// accounts in the result so the trial balance lists the full chart.
func (r *PgxReportingRepository) SumPostedLinesByCurrency(ctx context.Context, currencyCode string, asOf time.Time) ([]portsrepo.BalanceSums, error) {
	query := `
		SELECT a.account_code, COALESCE(SUM(x.debit), 0), COALESCE(SUM(x.credit), 0)
		FROM accounts a
		LEFT JOIN (
			SELECT l.account_code, l.debit, l.credit
			FROM journal_lines l
			JOIN journal_entries e ON e.entry_id = l.entry_id
			WHERE e.status = 'POSTED' AND e.entry_date <= $2
		) x ON x.account_code = a.account_code
		WHERE a.is_active AND a.currency_code = $1
		GROUP BY a.account_code
		ORDER BY a.account_code;
	`
	rows, err := r.Pool.Query(ctx, query, currencyCode, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sum posted lines for "+currencyCode, err)
	}
	defer rows.Close()

	var result []portsrepo.BalanceSums
	for rows.Next() {
		var sums portsrepo.BalanceSums
		if err := rows.Scan(&sums.AccountCode, &sums.Debits, &sums.Credits); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan balance sums row", err)
		}
		result = append(result, sums)
	}
	return result, rows.Err()
}
