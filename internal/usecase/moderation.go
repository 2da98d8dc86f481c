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

// applyRetryLimit bounds re-evaluation after optimistic concurrency conflicts.
const applyRetryLimit = 3

const (
	defaultSanctionPageSize = 50
	maxSanctionPageSize     = 200
)

var (
	// ErrActorRequired indicates the action did not identify who performed it.
	ErrActorRequired = errors.New("actor is required")
	// ErrUserIDRequired indicates the target user was not identified.
	ErrUserIDRequired = errors.New("user id is required")
	// ErrConcurrentUpdate indicates retries were exhausted on version conflicts.
	ErrConcurrentUpdate = errors.New("concurrent sanction update, retries exhausted")
	// ErrInvalidStatusFilter indicates an unrecognized account status filter.
	ErrInvalidStatusFilter = errors.New("invalid status filter")
)

// ModerationMetrics captures telemetry hooks for applied moderation actions.
type ModerationMetrics interface {
	IncAction(kind domain.ActionKind, outcome domain.Outcome)
	IncRejected(kind domain.ActionKind)
	IncVersionConflict()
}

// ApplyResult is returned to handlers after a moderation action lands.
type ApplyResult struct {
	Outcome domain.Outcome
	State   domain.SanctionState
}

// ModerationService orchestrates moderation actions: it loads sanction state,
// runs the escalation policy, persists the decision atomically, and emits
// events and cache invalidations after commit.
type ModerationService struct {
	sanctions port.SanctionRepository
	cache     port.SanctionCache
	events    port.EventPublisher
	policy    domain.Policy
	cacheTTL  time.Duration
	metrics   ModerationMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewModerationService constructs a ModerationService with the default clock.
func NewModerationService(
	sanctions port.SanctionRepository,
	cache port.SanctionCache,
	events port.EventPublisher,
	policy domain.Policy,
	cacheTTL time.Duration,
) *ModerationService {
	return &ModerationService{
		sanctions: sanctions,
		cache:     cache,
		events:    events,
		policy:    policy,
		cacheTTL:  cacheTTL,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
}

// WithLogger attaches a logger used for observability in the service.
func (s *ModerationService) WithLogger(logger *zap.Logger) *ModerationService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithNow overrides the clock, primarily for deterministic testing.
func (s *ModerationService) WithNow(now func() time.Time) *ModerationService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithMetrics wires telemetry observers for moderation actions.
func (s *ModerationService) WithMetrics(metrics ModerationMetrics) *ModerationService {
	s.metrics = metrics
	return s
}

// GetSanction returns the current sanction state for a user, reading through
// the cache. A stale cache entry is tolerable here; writes invalidate it.
func (s *ModerationService) GetSanction(ctx context.Context, userID string) (*domain.SanctionState, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	if s.cache != nil {
		if cached, err := s.cache.GetSanctionState(ctx, userID); err == nil {
			return cached, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("sanction cache read failed", zap.Error(err))
		}
	}

	state, err := s.sanctions.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load sanction state: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetSanctionState(ctx, *state, s.cacheTTL); err != nil {
			s.logger.Warn("sanction cache write failed", zap.Error(err))
		}
	}

	return state, nil
}

// ListSanctions returns sanction states for admin views, bypassing the cache.
func (s *ModerationService) ListSanctions(ctx context.Context, filter port.SanctionFilter) ([]domain.SanctionState, error) {
	switch filter.Status {
	case "", domain.AccountStatusActive, domain.AccountStatusSuspended, domain.AccountStatusBanned:
	default:
		return nil, ErrInvalidStatusFilter
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultSanctionPageSize
	}
	if filter.Limit > maxSanctionPageSize {
		filter.Limit = maxSanctionPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	states, err := s.sanctions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sanction states: %w", err)
	}

	return states, nil
}

// AddStrike records a strike against a user, escalating per policy.
func (s *ModerationService) AddStrike(ctx context.Context, userID, actor, reason string) (ApplyResult, error) {
	return s.apply(ctx, userID, domain.ActionAddStrike, actor, reason)
}

// RemoveStrike revokes a previously issued strike.
func (s *ModerationService) RemoveStrike(ctx context.Context, userID, actor, reason string) (ApplyResult, error) {
	return s.apply(ctx, userID, domain.ActionRemoveStrike, actor, reason)
}

// Suspend places an active user on a temporary suspension.
func (s *ModerationService) Suspend(ctx context.Context, userID, actor, reason string) (ApplyResult, error) {
	return s.apply(ctx, userID, domain.ActionSuspend, actor, reason)
}

// Ban permanently bans a user.
func (s *ModerationService) Ban(ctx context.Context, userID, actor, reason string) (ApplyResult, error) {
	return s.apply(ctx, userID, domain.ActionBan, actor, reason)
}

// LiftSuspension restores a suspended user to active.
func (s *ModerationService) LiftSuspension(ctx context.Context, userID, actor, reason string) (ApplyResult, error) {
	return s.apply(ctx, userID, domain.ActionLiftSuspension, actor, reason)
}

// LiftBan reverses a ban after successful appeal.
func (s *ModerationService) LiftBan(ctx context.Context, userID, actor, reason string) (ApplyResult, error) {
	return s.apply(ctx, userID, domain.ActionLiftBan, actor, reason)
}

func (s *ModerationService) apply(ctx context.Context, userID string, kind domain.ActionKind, actor, reason string) (ApplyResult, error) {
	var result ApplyResult

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return result, ErrUserIDRequired
	}

	actor = strings.TrimSpace(actor)
	if actor == "" {
		return result, ErrActorRequired
	}

	action := domain.ModerationAction{
		Kind:   kind,
		Actor:  actor,
		Reason: reason,
		At:     s.now().UTC(),
	}

	var (
		decision domain.Decision
		updated  *domain.SanctionState
	)

	for attempt := 0; attempt < applyRetryLimit; attempt++ {
		state, err := s.sanctions.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) && kind == domain.ActionAddStrike {
				// First strike against a user we have never sanctioned:
				// lazily create the baseline row and retry the load.
				fresh := domain.NewSanctionState(userID, action.At)
				if createErr := s.sanctions.Create(ctx, fresh); createErr != nil && !errors.Is(createErr, repository.ErrDuplicate) {
					return result, fmt.Errorf("create sanction state: %w", createErr)
				}
				continue
			}
			return result, fmt.Errorf("load sanction state: %w", err)
		}

		decision, err = s.policy.Apply(*state, action)
		if err != nil {
			if s.metrics != nil {
				s.metrics.IncRejected(kind)
			}
			return result, err
		}
		decision.Audit.ID = uuid.NewString()

		updated, err = s.sanctions.ApplyDecision(ctx, decision, state.Version)
		if err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				if s.metrics != nil {
					s.metrics.IncVersionConflict()
				}
				s.logger.Debug("sanction version conflict, retrying",
					zap.String("user_id", userID),
					zap.Int("attempt", attempt+1),
				)
				continue
			}
			return result, fmt.Errorf("apply moderation decision: %w", err)
		}

		break
	}

	if updated == nil {
		return result, ErrConcurrentUpdate
	}

	if s.metrics != nil {
		s.metrics.IncAction(kind, decision.Outcome)
	}

	s.afterCommit(ctx, actor, decision, *updated)

	result.Outcome = decision.Outcome
	result.State = *updated
	return result, nil
}

// afterCommit runs the post-persistence side effects. Failures here are logged
// and never surfaced: the moderation decision is already durable.
func (s *ModerationService) afterCommit(ctx context.Context, actor string, decision domain.Decision, state domain.SanctionState) {
	if s.cache != nil {
		if err := s.cache.DeleteSanctionState(ctx, state.UserID); err != nil {
			s.logger.Warn("sanction cache invalidation failed",
				zap.String("user_id", state.UserID),
				zap.Error(err),
			)
		}
	}

	if s.events == nil {
		return
	}

	if err := s.publishOutcome(ctx, actor, decision, state); err != nil {
		s.logger.Error("moderation event publish failed",
			zap.String("user_id", state.UserID),
			zap.String("outcome", string(decision.Outcome)),
			zap.Error(err),
		)
	}
}

func (s *ModerationService) publishOutcome(ctx context.Context, actor string, decision domain.Decision, state domain.SanctionState) error {
	audit := decision.Audit
	automatic := decision.Audit.Action == domain.ActionAddStrike

	switch decision.Outcome {
	case domain.OutcomeStrikeRecorded:
		return s.events.PublishStrikeRecorded(ctx, domain.StrikeRecordedEvent{
			UserID:      state.UserID,
			Actor:       actor,
			Reason:      audit.Reason,
			StrikeCount: state.StrikeCount,
			RecordedAt:  audit.CreatedAt,
		})

	case domain.OutcomeSuspended:
		var endsAt time.Time
		if state.SuspensionEndsAt != nil {
			endsAt = *state.SuspensionEndsAt
		}
		return s.events.PublishUserSuspended(ctx, domain.UserSuspendedEvent{
			UserID:           state.UserID,
			Actor:            actor,
			Reason:           audit.Reason,
			SuspensionCount:  state.SuspensionCount,
			SuspensionEndsAt: endsAt,
			Automatic:        automatic,
			SuspendedAt:      audit.CreatedAt,
		})

	case domain.OutcomeBanned:
		return s.events.PublishUserBanned(ctx, domain.UserBannedEvent{
			UserID:          state.UserID,
			Actor:           actor,
			Reason:          audit.Reason,
			SuspensionCount: state.SuspensionCount,
			Automatic:       automatic,
			BannedAt:        audit.CreatedAt,
		})

	case domain.OutcomeSuspensionLifted, domain.OutcomeBanLifted:
		return s.events.PublishSanctionLifted(ctx, domain.SanctionLiftedEvent{
			UserID:         state.UserID,
			Actor:          actor,
			Reason:         audit.Reason,
			PreviousStatus: audit.PreviousStatus,
			LiftedAt:       audit.CreatedAt,
		})
	}

	return nil
}
