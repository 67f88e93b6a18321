package services_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
	"github.com/fintrellis/ledgercore/internal/core/services"
)

// capturingAuditWriter records saved events; safe for the recorder's worker
// goroutine.
type capturingAuditWriter struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

var _ portsrepo.AuditWriter = (*capturingAuditWriter)(nil)

func (w *capturingAuditWriter) SaveAuditEvent(_ context.Context, event domain.AuditEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, event)
	return nil
}

func (w *capturingAuditWriter) saved() []domain.AuditEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.AuditEvent, len(w.events))
	copy(out, w.events)
	return out
}

type MockAuditReader struct {
	mock.Mock
}

var _ portsrepo.AuditReader = (*MockAuditReader)(nil)

func (m *MockAuditReader) ListAuditEventsByEntity(ctx context.Context, entityType, entityID string, limit int) ([]domain.AuditEvent, error) {
	args := m.Called(ctx, entityType, entityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEvent), args.Error(1)
}

func auditEvent(entityID string) domain.AuditEvent {
	return domain.AuditEvent{
		EventID:    uuid.NewString(),
		EntityType: "journal_entry",
		EntityID:   entityID,
		Action:     domain.AuditCreate,
		ActorID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
	}
}

func TestAsyncAuditRecorder_CloseDrainsQueue(t *testing.T) {
	writer := &capturingAuditWriter{}
	recorder := services.NewAsyncAuditRecorder(writer, slog.Default(), 16)

	ctx := context.Background()
	first := auditEvent("JE-000001")
	second := auditEvent("JE-000002")
	third := auditEvent("JE-000003")
	recorder.Record(ctx, first)
	recorder.Record(ctx, second)
	recorder.Record(ctx, third)

	recorder.Close()

	saved := writer.saved()
	require.Len(t, saved, 3, "every queued event must be persisted before Close returns")
	assert.Equal(t, first.EventID, saved[0].EventID)
	assert.Equal(t, third.EventID, saved[2].EventID)
}

func TestAsyncAuditRecorder_CloseIsIdempotent(t *testing.T) {
	writer := &capturingAuditWriter{}
	recorder := services.NewAsyncAuditRecorder(writer, slog.Default(), 0) // falls back to the default buffer

	recorder.Record(context.Background(), auditEvent("JE-000004"))
	recorder.Close()
	assert.NotPanics(t, func() { recorder.Close() })
	assert.Len(t, writer.saved(), 1)
}

func TestAuditService_ListDefaultsLimit(t *testing.T) {
	mockReader := new(MockAuditReader)
	svc := services.NewAuditService(mockReader)

	events := []domain.AuditEvent{auditEvent("1000")}
	mockReader.On("ListAuditEventsByEntity", mock.Anything, "account", "1000", 50).Return(events, nil).Once()

	got, err := svc.ListAuditEventsByEntity(context.Background(), "account", "1000", 0)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	mockReader.AssertExpectations(t)
}
