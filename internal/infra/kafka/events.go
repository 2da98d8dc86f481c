package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
	"github.com/lexaid/moderation-service/internal/infra/config"
	"github.com/lexaid/moderation-service/internal/infra/logger"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, log *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: log}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if requestID, ok := ctx.Value(logger.RequestIDKey{}).(string); ok && requestID != "" {
		metadata["request_id"] = requestID
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishStrikeRecorded publishes moderation.strike.recorded events.
func (p *EventPublisher) PublishStrikeRecorded(ctx context.Context, event domain.StrikeRecordedEvent) error {
	payload := struct {
		UserID      string         `json:"user_id"`
		Actor       string         `json:"actor"`
		Reason      string         `json:"reason"`
		StrikeCount int            `json:"strike_count"`
		RecordedAt  time.Time      `json:"recorded_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UserID:      event.UserID,
		Actor:       event.Actor,
		Reason:      event.Reason,
		StrikeCount: event.StrikeCount,
		RecordedAt:  event.RecordedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "moderation.strike.recorded", event.UserID, event.RecordedAt, payload)
}

// PublishUserSuspended publishes moderation.user.suspended events.
func (p *EventPublisher) PublishUserSuspended(ctx context.Context, event domain.UserSuspendedEvent) error {
	payload := struct {
		UserID           string         `json:"user_id"`
		Actor            string         `json:"actor"`
		Reason           string         `json:"reason"`
		SuspensionCount  int            `json:"suspension_count"`
		SuspensionEndsAt time.Time      `json:"suspension_ends_at"`
		Automatic        bool           `json:"automatic"`
		SuspendedAt      time.Time      `json:"suspended_at"`
		Metadata         map[string]any `json:"metadata,omitempty"`
	}{
		UserID:           event.UserID,
		Actor:            event.Actor,
		Reason:           event.Reason,
		SuspensionCount:  event.SuspensionCount,
		SuspensionEndsAt: event.SuspensionEndsAt.UTC(),
		Automatic:        event.Automatic,
		SuspendedAt:      event.SuspendedAt.UTC(),
		Metadata:         event.Metadata,
	}

	return p.publish(ctx, event.EventID, "moderation.user.suspended", event.UserID, event.SuspendedAt, payload)
}

// PublishUserBanned publishes moderation.user.banned events.
func (p *EventPublisher) PublishUserBanned(ctx context.Context, event domain.UserBannedEvent) error {
	payload := struct {
		UserID          string         `json:"user_id"`
		Actor           string         `json:"actor"`
		Reason          string         `json:"reason"`
		SuspensionCount int            `json:"suspension_count"`
		Automatic       bool           `json:"automatic"`
		BannedAt        time.Time      `json:"banned_at"`
		Metadata        map[string]any `json:"metadata,omitempty"`
	}{
		UserID:          event.UserID,
		Actor:           event.Actor,
		Reason:          event.Reason,
		SuspensionCount: event.SuspensionCount,
		Automatic:       event.Automatic,
		BannedAt:        event.BannedAt.UTC(),
		Metadata:        event.Metadata,
	}

	return p.publish(ctx, event.EventID, "moderation.user.banned", event.UserID, event.BannedAt, payload)
}

// PublishSanctionLifted publishes moderation.sanction.lifted events.
func (p *EventPublisher) PublishSanctionLifted(ctx context.Context, event domain.SanctionLiftedEvent) error {
	payload := struct {
		UserID         string         `json:"user_id"`
		Actor          string         `json:"actor"`
		Reason         string         `json:"reason,omitempty"`
		PreviousStatus string         `json:"previous_status"`
		LiftedAt       time.Time      `json:"lifted_at"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		UserID:         event.UserID,
		Actor:          event.Actor,
		Reason:         event.Reason,
		PreviousStatus: string(event.PreviousStatus),
		LiftedAt:       event.LiftedAt.UTC(),
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, "moderation.sanction.lifted", event.UserID, event.LiftedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
