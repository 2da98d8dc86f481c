package port

import (
	"context"

	"github.com/lexaid/moderation-service/internal/core/domain"
)

// GlossaryFilter narrows glossary term listings.
type GlossaryFilter struct {
	Category string
	Limit    int
	Offset   int
}

// GlossaryRepository exposes persistence behavior for glossary terms.
type GlossaryRepository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.GlossaryTerm, error)
	List(ctx context.Context, filter GlossaryFilter) ([]domain.GlossaryTerm, error)
	Upsert(ctx context.Context, term domain.GlossaryTerm) error
}
