package services

import (
	"fmt"
	"sync/atomic"

	"github.com/fintrellis/ledgercore/internal/apperrors"
)

// PostingGuard is a process-local circuit breaker for ledger writes. When a
// balance invariant is found violated (a trial balance that does not
// balance), the guard trips and every subsequent posting is refused until an
// operator investigates and restarts the process. The corrupted data is
// never auto-corrected.
type PostingGuard struct {
	halted atomic.Bool
	reason atomic.Value // string
}

// NewPostingGuard returns an armed, untripped guard.
func NewPostingGuard() *PostingGuard {
	return &PostingGuard{}
}

// Trip halts all postings with the given reason. Once tripped the guard
// stays tripped for the life of the process.
func (g *PostingGuard) Trip(reason string) {
	g.reason.Store(reason)
	g.halted.Store(true)
}

// Halted reports whether the guard has tripped.
func (g *PostingGuard) Halted() bool {
	return g.halted.Load()
}

// Check returns nil when postings are allowed, or the integrity error that
// tripped the guard.
func (g *PostingGuard) Check() error {
	if !g.halted.Load() {
		return nil
	}
	reason, _ := g.reason.Load().(string)
	return fmt.Errorf("%w: postings halted: %s", apperrors.ErrIntegrity, reason)
}
