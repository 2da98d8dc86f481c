package port

import (
	"context"

	"github.com/lexaid/moderation-service/internal/core/domain"
)

// AuditFilter paginates audit log reads for a single user.
type AuditFilter struct {
	Limit  int
	Offset int
}

// AuditRepository exposes reads over the moderation audit log. Writes are
// transition-bound and go through SanctionRepository.ApplyDecision.
type AuditRepository interface {
	ListByUser(ctx context.Context, userID string, filter AuditFilter) ([]domain.AuditEntry, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}
