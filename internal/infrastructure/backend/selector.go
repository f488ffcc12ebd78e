package backend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// Selector runs a CommandPlan through the ordered tier chain.
//
// Only availability errors advance to the next tier. A logical error returns
// immediately: falling through on one would silently retry a request that is
// already known to be invalid. Every attempt is recorded on the final result.
//
// Exactly one mutating plan may execute system-wide at a time; the underlying
// package manager cannot accept concurrent mutations. Read-only plans never
// take the lock.
type Selector struct {
	tiers []ports.Backend
	log   ports.Logger

	execMu   sync.Mutex
	mutating atomic.Bool
}

// NewSelector builds a selector over the given tier chain, tried in order.
func NewSelector(log ports.Logger, tiers ...ports.Backend) *Selector {
	return &Selector{tiers: tiers, log: log}
}

// MutationInFlight implements ports.ExecutionSelector.
func (s *Selector) MutationInFlight() bool {
	return s.mutating.Load()
}

// Execute implements ports.ExecutionSelector.
func (s *Selector) Execute(ctx context.Context, plan domain.CommandPlan) (domain.ExecutionResult, error) {
	if len(s.tiers) == 0 {
		return domain.ExecutionResult{}, &domain.UnavailableError{Reason: "no execution tiers configured"}
	}

	if plan.Operation.Mutating() && !plan.DryRun {
		s.execMu.Lock()
		s.mutating.Store(true)
		defer func() {
			s.mutating.Store(false)
			s.execMu.Unlock()
		}()
	}

	var attempts []domain.TierAttempt
	for _, tier := range s.tiers {
		// Cancellation checkpoint: between tiers only, never mid-mutation.
		// The result reports exactly what was attempted so far, so an
		// interrupted plan is never recorded as applied.
		if err := ctx.Err(); err != nil {
			return domain.ExecutionResult{Attempts: attempts, FinishedAt: time.Now()}, err
		}

		start := time.Now()
		result, err := tier.Run(ctx, plan)
		elapsed := time.Since(start)

		attempt := domain.TierAttempt{Tier: tier.ID(), Duration: elapsed, Output: result.Output}
		if err != nil {
			attempt.Err = err.Error()
		}
		attempts = append(attempts, attempt)

		if err == nil {
			result.Attempts = attempts
			if result.Duration == 0 {
				result.Duration = elapsed
			}
			return result, nil
		}

		var unavailable *domain.UnavailableError
		if errors.As(err, &unavailable) {
			if s.log != nil {
				s.log.Debug("tier unavailable, falling through", map[string]interface{}{
					"tier":   string(tier.ID()),
					"reason": unavailable.Reason,
				})
			}
			continue
		}

		// Logical error or cancellation; surface immediately.
		result.Tier = tier.ID()
		result.Attempts = attempts
		if result.FinishedAt.IsZero() {
			result.FinishedAt = time.Now()
		}
		return result, err
	}

	return domain.ExecutionResult{Attempts: attempts, FinishedAt: time.Now()},
		&domain.UnavailableError{Reason: "all execution tiers unavailable"}
}

var _ ports.ExecutionSelector = (*Selector)(nil)
