package port

import (
	"context"

	"github.com/lexaid/moderation-service/internal/core/domain"
)

// EventPublisher publishes moderation events to the message bus.
type EventPublisher interface {
	PublishStrikeRecorded(ctx context.Context, event domain.StrikeRecordedEvent) error
	PublishUserSuspended(ctx context.Context, event domain.UserSuspendedEvent) error
	PublishUserBanned(ctx context.Context, event domain.UserBannedEvent) error
	PublishSanctionLifted(ctx context.Context, event domain.SanctionLiftedEvent) error
}
