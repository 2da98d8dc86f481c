package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
)

var auditColumns = []string{
	"id",
	"user_id",
	"action",
	"actor",
	"reason",
	"previous_status",
	"new_status",
	"strike_count",
	"suspension_count",
	"created_at",
}

// AuditRepository implements port.AuditRepository using PostgreSQL.
type AuditRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAuditRepository wires a PostgreSQL-backed audit log repository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByUser returns audit entries for a user, newest first.
func (r *AuditRepository) ListByUser(ctx context.Context, userID string, filter port.AuditFilter) ([]domain.AuditEntry, error) {
	query := r.builder.Select(auditColumns...).
		From("moderation.audit_log").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Actor,
			&entry.Reason,
			&entry.PreviousStatus,
			&entry.NewStatus,
			&entry.StrikeCount,
			&entry.SuspensionCount,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, nil
}

// CountByUser returns the total number of audit entries for a user.
func (r *AuditRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("moderation.audit_log").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count audit sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan audit count: %w", err)
	}

	return int(count), nil
}

var _ port.AuditRepository = (*AuditRepository)(nil)
