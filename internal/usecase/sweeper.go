package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
)

// SystemActor marks actions applied by the service itself rather than an admin.
const SystemActor = "system"

// SuspensionSweeper periodically lifts suspensions whose window has elapsed.
// It goes through the same evaluator and optimistic write path as admin
// actions, so a concurrent manual lift simply wins the race.
type SuspensionSweeper struct {
	sanctions  port.SanctionRepository
	moderation *ModerationService
	interval   time.Duration
	batchSize  int
	logger     *zap.Logger
	now        func() time.Time
}

// NewSuspensionSweeper constructs a SuspensionSweeper.
func NewSuspensionSweeper(
	sanctions port.SanctionRepository,
	moderation *ModerationService,
	interval time.Duration,
	batchSize int,
) *SuspensionSweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	return &SuspensionSweeper{
		sanctions:  sanctions,
		moderation: moderation,
		interval:   interval,
		batchSize:  batchSize,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
}

// WithLogger attaches a logger used for observability in the sweeper.
func (s *SuspensionSweeper) WithLogger(logger *zap.Logger) *SuspensionSweeper {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithNow overrides the clock, primarily for deterministic testing.
func (s *SuspensionSweeper) WithNow(now func() time.Time) *SuspensionSweeper {
	if now != nil {
		s.now = now
	}
	return s
}

// Run blocks, sweeping on every tick until the context is cancelled.
func (s *SuspensionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("suspension sweeper started",
		zap.Duration("interval", s.interval),
		zap.Int("batch_size", s.batchSize),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("suspension sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("suspension sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce lifts every suspension that has expired at the time of the call
// and returns how many were lifted. Individual conflicts are skipped; the
// next sweep retries whatever is still expired.
func (s *SuspensionSweeper) SweepOnce(ctx context.Context) (int, error) {
	reference := s.now().UTC()

	expired, err := s.sanctions.ListExpiredSuspensions(ctx, reference, s.batchSize)
	if err != nil {
		return 0, err
	}

	lifted := 0
	for _, state := range expired {
		if ctx.Err() != nil {
			return lifted, ctx.Err()
		}

		_, err := s.moderation.LiftSuspension(ctx, state.UserID, SystemActor, "suspension window elapsed")
		if err != nil {
			// Lost races are expected: an admin lift or another replica
			// may have handled the user between the list and the apply.
			if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, ErrConcurrentUpdate) {
				continue
			}
			s.logger.Error("automatic suspension lift failed",
				zap.String("user_id", state.UserID),
				zap.Error(err),
			)
			continue
		}

		lifted++
	}

	if lifted > 0 {
		s.logger.Info("expired suspensions lifted", zap.Int("count", lifted))
	}

	return lifted, nil
}
