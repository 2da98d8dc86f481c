package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
	"github.com/lexaid/moderation-service/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txBeginner is satisfied by *pgxpool.Pool and pgxmock pools in tests.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

var sanctionColumns = []string{
	"user_id",
	"strike_count",
	"suspension_count",
	"status",
	"suspension_ends_at",
	"last_violation_at",
	"banned_at",
	"banned_reason",
	"version",
	"updated_at",
}

// SanctionRepository implements port.SanctionRepository using PostgreSQL.
type SanctionRepository struct {
	exec    pgExecutor
	begin   txBeginner
	builder squirrel.StatementBuilderType
}

// NewSanctionRepository wires a PostgreSQL-backed sanction repository.
func NewSanctionRepository(pool *pgxpool.Pool) *SanctionRepository {
	return &SanctionRepository{
		exec:    pool,
		begin:   pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// newSanctionRepositoryWithExecutor supports tests with mock executors.
func newSanctionRepositoryWithExecutor(exec pgExecutor, begin txBeginner) *SanctionRepository {
	return &SanctionRepository{
		exec:    exec,
		begin:   begin,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the default sanction row for a newly registered user.
func (r *SanctionRepository) Create(ctx context.Context, state domain.SanctionState) error {
	stmt, args, err := r.builder.Insert("moderation.user_sanctions").
		Columns(sanctionColumns...).
		Values(
			state.UserID,
			state.StrikeCount,
			state.SuspensionCount,
			state.Status,
			state.SuspensionEndsAt,
			state.LastViolationAt,
			state.BannedAt,
			state.BannedReason,
			state.Version,
			state.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert sanction sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert sanction: %w", err)
	}

	return nil
}

// GetByUserID retrieves the sanction state for a user.
func (r *SanctionRepository) GetByUserID(ctx context.Context, userID string) (*domain.SanctionState, error) {
	stmt, args, err := r.builder.Select(sanctionColumns...).
		From("moderation.user_sanctions").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select sanction sql: %w", err)
	}

	state, err := scanSanction(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan sanction: %w", err)
	}

	return state, nil
}

// List returns sanction states with optional status filtering and pagination.
func (r *SanctionRepository) List(ctx context.Context, filter port.SanctionFilter) ([]domain.SanctionState, error) {
	query := r.builder.Select(sanctionColumns...).
		From("moderation.user_sanctions").
		OrderBy("updated_at DESC")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sanctions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query sanctions: %w", err)
	}
	defer rows.Close()

	return collectSanctions(rows)
}

// ApplyDecision persists an evaluated transition: the state update (guarded by
// the version column) and the audit entry commit or roll back together.
func (r *SanctionRepository) ApplyDecision(ctx context.Context, decision domain.Decision, expectedVersion int64) (*domain.SanctionState, error) {
	next := decision.State
	next.Version = expectedVersion + 1

	updateStmt, updateArgs, err := r.builder.Update("moderation.user_sanctions").
		Set("strike_count", next.StrikeCount).
		Set("suspension_count", next.SuspensionCount).
		Set("status", next.Status).
		Set("suspension_ends_at", next.SuspensionEndsAt).
		Set("last_violation_at", next.LastViolationAt).
		Set("banned_at", next.BannedAt).
		Set("banned_reason", next.BannedReason).
		Set("version", next.Version).
		Set("updated_at", next.UpdatedAt).
		Where(squirrel.Eq{"user_id": next.UserID}).
		Where(squirrel.Eq{"version": expectedVersion}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update sanction sql: %w", err)
	}

	audit := decision.Audit
	auditStmt, auditArgs, err := r.builder.Insert("moderation.audit_log").
		Columns("id", "user_id", "action", "actor", "reason", "previous_status", "new_status", "strike_count", "suspension_count", "created_at").
		Values(
			audit.ID,
			audit.UserID,
			audit.Action,
			audit.Actor,
			audit.Reason,
			audit.PreviousStatus,
			audit.NewStatus,
			audit.StrikeCount,
			audit.SuspensionCount,
			audit.CreatedAt,
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert audit sql: %w", err)
	}

	tx, err := r.begin.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, updateStmt, updateArgs...)
	if err != nil {
		return nil, fmt.Errorf("update sanction: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, repository.ErrVersionConflict
	}

	if _, err := tx.Exec(ctx, auditStmt, auditArgs...); err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &next, nil
}

// ListExpiredSuspensions returns suspended users whose window elapsed before
// the reference time, oldest first.
func (r *SanctionRepository) ListExpiredSuspensions(ctx context.Context, reference time.Time, limit int) ([]domain.SanctionState, error) {
	query := r.builder.Select(sanctionColumns...).
		From("moderation.user_sanctions").
		Where(squirrel.Eq{"status": domain.AccountStatusSuspended}).
		Where(squirrel.LtOrEq{"suspension_ends_at": reference}).
		OrderBy("suspension_ends_at ASC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build expired suspensions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query expired suspensions: %w", err)
	}
	defer rows.Close()

	return collectSanctions(rows)
}

func scanSanction(row pgx.Row) (*domain.SanctionState, error) {
	var state domain.SanctionState
	if err := row.Scan(
		&state.UserID,
		&state.StrikeCount,
		&state.SuspensionCount,
		&state.Status,
		&state.SuspensionEndsAt,
		&state.LastViolationAt,
		&state.BannedAt,
		&state.BannedReason,
		&state.Version,
		&state.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &state, nil
}

func collectSanctions(rows pgx.Rows) ([]domain.SanctionState, error) {
	states := make([]domain.SanctionState, 0)
	for rows.Next() {
		state, err := scanSanction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sanction: %w", err)
		}
		states = append(states, *state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sanctions: %w", err)
	}

	return states, nil
}

var _ port.SanctionRepository = (*SanctionRepository)(nil)
