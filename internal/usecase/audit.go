package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

// AuditPage bundles one page of audit entries with the total count for the user.
type AuditPage struct {
	Entries []domain.AuditEntry
	Total   int
	Limit   int
	Offset  int
}

// AuditService reads the append-only moderation history.
type AuditService struct {
	audit port.AuditRepository
}

// NewAuditService constructs an AuditService.
func NewAuditService(audit port.AuditRepository) *AuditService {
	return &AuditService{audit: audit}
}

// ListByUser returns a page of audit entries for a user, newest first.
func (s *AuditService) ListByUser(ctx context.Context, userID string, limit, offset int) (AuditPage, error) {
	var page AuditPage

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return page, ErrUserIDRequired
	}

	if limit <= 0 {
		limit = defaultAuditPageSize
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.audit.ListByUser(ctx, userID, port.AuditFilter{Limit: limit, Offset: offset})
	if err != nil {
		return page, fmt.Errorf("list audit entries: %w", err)
	}

	total, err := s.audit.CountByUser(ctx, userID)
	if err != nil {
		return page, fmt.Errorf("count audit entries: %w", err)
	}

	page.Entries = entries
	page.Total = total
	page.Limit = limit
	page.Offset = offset
	return page, nil
}
