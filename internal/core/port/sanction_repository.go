package port

import (
	"context"
	"time"

	"github.com/lexaid/moderation-service/internal/core/domain"
)

// SanctionFilter narrows listing of sanction states for admin views.
type SanctionFilter struct {
	Status domain.AccountStatus
	Limit  int
	Offset int
}

// SanctionRepository exposes persistence behavior for user sanction state.
// ApplyDecision is the optimistic-concurrency write path: it updates the row
// only when the stored version matches expectedVersion and appends the audit
// entry in the same transaction, returning repository.ErrVersionConflict on a
// lost race.
type SanctionRepository interface {
	Create(ctx context.Context, state domain.SanctionState) error
	GetByUserID(ctx context.Context, userID string) (*domain.SanctionState, error)
	List(ctx context.Context, filter SanctionFilter) ([]domain.SanctionState, error)
	ApplyDecision(ctx context.Context, decision domain.Decision, expectedVersion int64) (*domain.SanctionState, error)
	ListExpiredSuspensions(ctx context.Context, reference time.Time, limit int) ([]domain.SanctionState, error)
}
