package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fintrellis/ledgercore/internal/apperrors"
	"github.com/fintrellis/ledgercore/internal/core/domain"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/dto"
	"github.com/fintrellis/ledgercore/internal/middleware"
)

var (
	ErrEntryUnbalanced    = errors.New("journal lines do not balance")
	ErrEntryMinLines      = errors.New("journal entry must have at least two lines")
	ErrEntryMinAccounts   = errors.New("journal entry must affect at least two different accounts")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrCurrencyMismatch   = errors.New("account currency does not match entry currency")
	ErrNotDraft           = errors.New("entry is not in draft status")
	ErrAlreadyPosted      = errors.New("entry is already posted")
	ErrNotPosted          = errors.New("entry must be posted to be reversed")
	ErrAlreadyReversed    = errors.New("entry has already been reversed")
	ErrDescriptionMissing = errors.New("entry description is required")
)

// journalService provides journal entry lifecycle operations.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
	currencySvc portssvc.CurrencyReaderSvc
	guard       *PostingGuard
	recorder    portssvc.AuditRecorder
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountReader, currencySvc portssvc.CurrencyReaderSvc, guard *PostingGuard, recorder portssvc.AuditRecorder) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		currencySvc: currencySvc,
		guard:       guard,
		recorder:    recorder,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validateLineShape enforces per-line validity and the two-account minimum.
// Callers run the checks in a fixed order: line count, account existence,
// line shape, then balance, so a request with several defects always reports
// the same one.
func (s *journalService) validateLineShape(lines []domain.JournalLine) error {
	accounts := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return err
		}
		accounts[line.AccountCode] = struct{}{}
	}
	if len(accounts) < 2 {
		return ErrEntryMinAccounts
	}
	return nil
}

// validateAccounts ensures every referenced account exists, is active, and
// carries the entry currency.
func (s *journalService) validateAccounts(ctx context.Context, lines []domain.JournalLine, entryCurrency domain.Currency) error {
	codes := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountCode]; ok {
			continue
		}
		seen[line.AccountCode] = struct{}{}
		codes = append(codes, line.AccountCode)
	}

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, code := range codes {
		acc, ok := accounts[code]
		if !ok {
			return fmt.Errorf("%w: %s", ErrAccountNotFound, code)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: %s", ErrAccountInactive, code)
		}
		if acc.CurrencyCode != entryCurrency {
			return fmt.Errorf("%w: account %s is %s, entry is %s", ErrCurrencyMismatch, code, acc.CurrencyCode, entryCurrency)
		}
	}
	return nil
}

func validateBalance(entry *domain.JournalEntry) error {
	if imbalance := entry.Imbalance(); !imbalance.IsZero() {
		return fmt.Errorf("%w: off by %s", ErrEntryUnbalanced, imbalance.String())
	}
	return nil
}

// CreateEntry validates and persists a new draft entry with its lines.
func (s *journalService) CreateEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Description == "" {
		return nil, ErrDescriptionMissing
	}
	if _, err := s.currencySvc.GetCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		return nil, fmt.Errorf("unknown currency %s: %w", req.CurrencyCode, err)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()
	lines := make([]domain.JournalLine, len(req.Lines))
	for i, lr := range req.Lines {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountCode: lr.AccountCode,
			Debit:       lr.Debit,
			Credit:      lr.Credit,
			Memo:        lr.Memo,
			Position:    i + 1,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
	}

	entry := domain.JournalEntry{
		EntryID:      entryID,
		EntryDate:    req.EntryDate,
		Description:  req.Description,
		Reference:    req.Reference,
		CurrencyCode: domain.Currency(req.CurrencyCode),
		Status:       domain.Draft,
		Lines:        lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if len(lines) < 2 {
		return nil, ErrEntryMinLines
	}
	if err := s.validateAccounts(ctx, lines, entry.CurrencyCode); err != nil {
		return nil, err
	}
	if err := s.validateLineShape(lines); err != nil {
		return nil, err
	}
	if err := validateBalance(&entry); err != nil {
		return nil, err
	}

	entryNumber, err := s.journalRepo.SaveEntry(ctx, entry, lines)
	if err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}
	entry.EntryNumber = entryNumber

	logger.Info("Journal entry created", slog.String("entry_id", entry.EntryID), slog.String("entry_number", entryNumber))
	s.recorder.Record(ctx, domain.AuditEvent{
		EventID:    uuid.NewString(),
		EntityType: "journal_entry",
		EntityID:   entry.EntryID,
		Action:     domain.AuditCreate,
		Detail:     fmt.Sprintf("entry %s created with %d lines", entryNumber, len(lines)),
		ActorID:    creatorUserID,
		OccurredAt: now,
	})
	return &entry, nil
}

// PostEntry transitions a draft entry to POSTED. The repository locks the
// entry row, the closure revalidates against the locked state, and the
// status flip commits atomically, so the entry becomes visible to balance
// queries all at once or not at all.
func (s *journalService) PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.guard.Check(); err != nil {
		logger.Error("Posting refused by integrity guard", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now().UTC()
	err := s.journalRepo.PostEntry(ctx, entryID, userID, now, func(entry domain.JournalEntry, lines []domain.JournalLine) error {
		switch entry.Status {
		case domain.Posted:
			return fmt.Errorf("%w: %s", ErrAlreadyPosted, entryID)
		case domain.Void:
			return fmt.Errorf("%w: entry %s is void", ErrNotDraft, entryID)
		}
		entry.Lines = lines
		if len(lines) < 2 {
			return ErrEntryMinLines
		}
		if err := s.validateAccounts(ctx, lines, entry.CurrencyCode); err != nil {
			return err
		}
		if err := s.validateLineShape(lines); err != nil {
			return err
		}
		return validateBalance(&entry)
	})
	if err != nil {
		logger.Warn("Failed to post journal entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("entry posted but reload failed: %w", err)
	}

	logger.Info("Journal entry posted", slog.String("entry_id", entryID), slog.String("entry_number", entry.EntryNumber))
	s.recorder.Record(ctx, domain.AuditEvent{
		EventID:    uuid.NewString(),
		EntityType: "journal_entry",
		EntityID:   entryID,
		Action:     domain.AuditPost,
		Detail:     fmt.Sprintf("entry %s posted", entry.EntryNumber),
		ActorID:    userID,
		OccurredAt: now,
	})
	return entry, nil
}

// VoidEntry transitions a draft entry to VOID. Posted entries cannot be
// voided; they must be reversed.
func (s *journalService) VoidEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		if entry.Status == domain.Posted {
			return nil, fmt.Errorf("%w: posted entries must be reversed, not voided", ErrNotDraft)
		}
		return nil, fmt.Errorf("%w: entry %s is %s", ErrNotDraft, entryID, entry.Status)
	}

	now := time.Now().UTC()
	if err := s.journalRepo.VoidEntry(ctx, entryID, userID, now); err != nil {
		logger.Error("Failed to void journal entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}
	entry.Status = domain.Void
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID

	logger.Info("Journal entry voided", slog.String("entry_id", entryID))
	s.recorder.Record(ctx, domain.AuditEvent{
		EventID:    uuid.NewString(),
		EntityType: "journal_entry",
		EntityID:   entryID,
		Action:     domain.AuditVoid,
		Detail:     fmt.Sprintf("entry %s voided", entry.EntryNumber),
		ActorID:    userID,
		OccurredAt: now,
	})
	return entry, nil
}

// ReverseEntry creates and posts a mirror-image entry for a posted entry and
// links the pair. The original stays POSTED; the reversal neutralizes its
// effect on balances while preserving the audit trail.
func (s *journalService) ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.guard.Check(); err != nil {
		return nil, err
	}

	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: entry %s is %s", ErrNotPosted, entryID, original.Status)
	}
	if original.ReversingEntryID != nil {
		return nil, fmt.Errorf("%w: entry %s reversed by %s", ErrAlreadyReversed, entryID, *original.ReversingEntryID)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()
	lines := make([]domain.JournalLine, len(original.Lines))
	for i, l := range original.Lines {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     reversalID,
			AccountCode: l.AccountCode,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Memo:        l.Memo,
			Position:    l.Position,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		EntryDate:       now,
		Description:     fmt.Sprintf("Reversal of %s: %s", original.EntryNumber, original.Description),
		CurrencyCode:    original.CurrencyCode,
		Status:          domain.Posted,
		OriginalEntryID: &original.EntryID,
		PostedAt:        &now,
		PostedBy:        userID,
		Lines:           lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := validateBalance(&reversal); err != nil {
		// A posted original that no longer balances is corrupted data.
		s.guard.Trip(fmt.Sprintf("posted entry %s does not balance", original.EntryID))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrIntegrity, err)
	}

	entryNumber, err := s.journalRepo.SaveReversalEntry(ctx, reversal, lines, original.EntryID)
	if err != nil {
		logger.Error("Failed to save reversal entry", slog.String("original_entry_id", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save reversal entry: %w", err)
	}
	reversal.EntryNumber = entryNumber

	logger.Info("Journal entry reversed", slog.String("original_entry_id", entryID), slog.String("reversal_entry_id", reversalID))
	s.recorder.Record(ctx, domain.AuditEvent{
		EventID:    uuid.NewString(),
		EntityType: "journal_entry",
		EntityID:   entryID,
		Action:     domain.AuditUpdate,
		Detail:     fmt.Sprintf("entry reversed by %s", entryNumber),
		ActorID:    userID,
		OccurredAt: now,
	})
	return &reversal, nil
}

// GetEntryByID retrieves a specific entry with its lines by ID.
func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		middleware.GetLoggerFromCtx(ctx).Error("Failed to find journal entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}
	return entry, nil
}

// GetEntryByReference retrieves an entry by its caller-supplied reference.
func (s *journalService) GetEntryByReference(ctx context.Context, reference string) (*domain.JournalEntry, error) {
	return s.journalRepo.FindEntryByReference(ctx, reference)
}

// ListEntries retrieves a paginated list of entries.
func (s *journalService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	entries, nextToken, err := s.journalRepo.ListEntries(ctx, limit, params.NextToken)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list journal entries", slog.String("error", err.Error()))
		return nil, err
	}
	return dto.ToListEntriesResponse(entries, nextToken), nil
}

// ListActivityByAccount retrieves posted lines for one account, newest first.
func (s *journalService) ListActivityByAccount(ctx context.Context, accountCode string, params dto.ListActivityParams) (*dto.ListActivityResponse, error) {
	if _, err := s.accountRepo.FindAccountByCode(ctx, accountCode); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	activity, nextToken, err := s.journalRepo.ListActivityByAccount(ctx, accountCode, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return dto.ToListActivityResponse(activity, nextToken), nil
}
