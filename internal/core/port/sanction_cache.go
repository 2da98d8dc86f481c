package port

import (
	"context"
	"time"

	"github.com/lexaid/moderation-service/internal/core/domain"
)

// SanctionCache provides fast lookups of sanction state for enforcement paths.
// Misses are reported as repository.ErrNotFound.
type SanctionCache interface {
	GetSanctionState(ctx context.Context, userID string) (*domain.SanctionState, error)
	SetSanctionState(ctx context.Context, state domain.SanctionState, ttl time.Duration) error
	DeleteSanctionState(ctx context.Context, userID string) error
}

// GlossaryCache caches rendered glossary terms keyed by slug.
type GlossaryCache interface {
	GetTerm(ctx context.Context, slug string) (*domain.GlossaryTerm, error)
	SetTerm(ctx context.Context, term domain.GlossaryTerm, ttl time.Duration) error
	DeleteTerm(ctx context.Context, slug string) error
}
