package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
	"github.com/lexaid/moderation-service/internal/repository"
)

const (
	defaultGlossaryPageSize = 100
	maxGlossaryPageSize     = 500
)

var (
	// ErrSlugRequired indicates the glossary slug was empty.
	ErrSlugRequired = errors.New("slug is required")
	// ErrTermRequired indicates the term or its definition was empty.
	ErrTermRequired = errors.New("term and definition are required")
)

// UpsertTermInput captures an admin-submitted glossary entry.
type UpsertTermInput struct {
	Slug       string
	Term       string
	Definition string
	Category   string
}

// GlossaryService serves the legal glossary browsed by end users, with a
// read-through cache on single-term lookups.
type GlossaryService struct {
	terms    port.GlossaryRepository
	cache    port.GlossaryCache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewGlossaryService constructs a GlossaryService.
func NewGlossaryService(terms port.GlossaryRepository, cache port.GlossaryCache, cacheTTL time.Duration) *GlossaryService {
	return &GlossaryService{
		terms:    terms,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
}

// WithLogger attaches a logger used for observability in the service.
func (s *GlossaryService) WithLogger(logger *zap.Logger) *GlossaryService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithNow overrides the clock, primarily for deterministic testing.
func (s *GlossaryService) WithNow(now func() time.Time) *GlossaryService {
	if now != nil {
		s.now = now
	}
	return s
}

// GetTerm returns a single glossary term by slug, reading through the cache.
func (s *GlossaryService) GetTerm(ctx context.Context, slug string) (*domain.GlossaryTerm, error) {
	slug = normalizeSlug(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}

	if s.cache != nil {
		if cached, err := s.cache.GetTerm(ctx, slug); err == nil {
			return cached, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("glossary cache read failed", zap.Error(err))
		}
	}

	term, err := s.terms.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("load glossary term: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetTerm(ctx, *term, s.cacheTTL); err != nil {
			s.logger.Warn("glossary cache write failed", zap.Error(err))
		}
	}

	return term, nil
}

// ListTerms returns glossary terms, optionally filtered by category.
func (s *GlossaryService) ListTerms(ctx context.Context, category string, limit, offset int) ([]domain.GlossaryTerm, error) {
	if limit <= 0 {
		limit = defaultGlossaryPageSize
	}
	if limit > maxGlossaryPageSize {
		limit = maxGlossaryPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return s.terms.List(ctx, port.GlossaryFilter{
		Category: strings.TrimSpace(category),
		Limit:    limit,
		Offset:   offset,
	})
}

// UpsertTerm creates or replaces a glossary entry and evicts the cached copy.
func (s *GlossaryService) UpsertTerm(ctx context.Context, input UpsertTermInput) (*domain.GlossaryTerm, error) {
	slug := normalizeSlug(input.Slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}

	termText := strings.TrimSpace(input.Term)
	definition := strings.TrimSpace(input.Definition)
	if termText == "" || definition == "" {
		return nil, ErrTermRequired
	}

	term := domain.GlossaryTerm{
		ID:         uuid.NewString(),
		Slug:       slug,
		Term:       termText,
		Definition: definition,
		Category:   strings.TrimSpace(input.Category),
		UpdatedAt:  s.now().UTC(),
	}

	if err := s.terms.Upsert(ctx, term); err != nil {
		return nil, fmt.Errorf("upsert glossary term: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteTerm(ctx, slug); err != nil {
			s.logger.Warn("glossary cache invalidation failed",
				zap.String("slug", slug),
				zap.Error(err),
			)
		}
	}

	return &term, nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
