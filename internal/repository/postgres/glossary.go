package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
	"github.com/lexaid/moderation-service/internal/repository"
)

// GlossaryRepository implements port.GlossaryRepository using PostgreSQL.
type GlossaryRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewGlossaryRepository wires a PostgreSQL-backed glossary repository.
func NewGlossaryRepository(pool *pgxpool.Pool) *GlossaryRepository {
	return &GlossaryRepository{
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetBySlug retrieves a single glossary term by its URL slug.
func (r *GlossaryRepository) GetBySlug(ctx context.Context, slug string) (*domain.GlossaryTerm, error) {
	stmt, args, err := r.builder.Select("id", "slug", "term", "definition", "category", "updated_at").
		From("moderation.glossary_terms").
		Where(squirrel.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select term sql: %w", err)
	}

	var term domain.GlossaryTerm
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&term.ID,
		&term.Slug,
		&term.Term,
		&term.Definition,
		&term.Category,
		&term.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan term: %w", err)
	}

	return &term, nil
}

// List returns glossary terms ordered alphabetically, with optional category filtering.
func (r *GlossaryRepository) List(ctx context.Context, filter port.GlossaryFilter) ([]domain.GlossaryTerm, error) {
	query := r.builder.Select("id", "slug", "term", "definition", "category", "updated_at").
		From("moderation.glossary_terms").
		OrderBy("term ASC")

	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list terms sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	defer rows.Close()

	terms := make([]domain.GlossaryTerm, 0)
	for rows.Next() {
		var term domain.GlossaryTerm
		if err := rows.Scan(&term.ID, &term.Slug, &term.Term, &term.Definition, &term.Category, &term.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate terms: %w", err)
	}

	return terms, nil
}

// Upsert inserts or replaces a glossary term keyed by slug.
func (r *GlossaryRepository) Upsert(ctx context.Context, term domain.GlossaryTerm) error {
	stmt, args, err := r.builder.Insert("moderation.glossary_terms").
		Columns("id", "slug", "term", "definition", "category", "updated_at").
		Values(term.ID, term.Slug, term.Term, term.Definition, term.Category, term.UpdatedAt).
		Suffix("ON CONFLICT (slug) DO UPDATE SET term = EXCLUDED.term, definition = EXCLUDED.definition, category = EXCLUDED.category, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert term sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert term: %w", err)
	}

	return nil
}

var _ port.GlossaryRepository = (*GlossaryRepository)(nil)
