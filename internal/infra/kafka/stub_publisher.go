package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishStrikeRecorded logs moderation.strike.recorded events.
func (p *StubPublisher) PublishStrikeRecorded(_ context.Context, event domain.StrikeRecordedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"actor":        event.Actor,
		"reason":       event.Reason,
		"strike_count": event.StrikeCount,
		"recorded_at":  event.RecordedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("moderation.strike.recorded", event.UserID, event.RecordedAt, payload)
	return nil
}

// PublishUserSuspended logs moderation.user.suspended events.
func (p *StubPublisher) PublishUserSuspended(_ context.Context, event domain.UserSuspendedEvent) error {
	payload := map[string]any{
		"user_id":            event.UserID,
		"actor":              event.Actor,
		"reason":             event.Reason,
		"suspension_count":   event.SuspensionCount,
		"suspension_ends_at": event.SuspensionEndsAt,
		"automatic":          event.Automatic,
		"suspended_at":       event.SuspendedAt,
		"metadata":           event.Metadata,
	}
	p.logEvent("moderation.user.suspended", event.UserID, event.SuspendedAt, payload)
	return nil
}

// PublishUserBanned logs moderation.user.banned events.
func (p *StubPublisher) PublishUserBanned(_ context.Context, event domain.UserBannedEvent) error {
	payload := map[string]any{
		"user_id":          event.UserID,
		"actor":            event.Actor,
		"reason":           event.Reason,
		"suspension_count": event.SuspensionCount,
		"automatic":        event.Automatic,
		"banned_at":        event.BannedAt,
		"metadata":         event.Metadata,
	}
	p.logEvent("moderation.user.banned", event.UserID, event.BannedAt, payload)
	return nil
}

// PublishSanctionLifted logs moderation.sanction.lifted events.
func (p *StubPublisher) PublishSanctionLifted(_ context.Context, event domain.SanctionLiftedEvent) error {
	payload := map[string]any{
		"user_id":         event.UserID,
		"actor":           event.Actor,
		"reason":          event.Reason,
		"previous_status": string(event.PreviousStatus),
		"lifted_at":       event.LiftedAt,
		"metadata":        event.Metadata,
	}
	p.logEvent("moderation.sanction.lifted", event.UserID, event.LiftedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
