package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
	"github.com/lexaid/moderation-service/internal/repository"
)

// SanctionCache caches sanction state as JSON blobs keyed by user ID.
type SanctionCache struct {
	client *redis.Client
	prefix string
}

// NewSanctionCache constructs a cache using the provided client and key prefix.
func NewSanctionCache(client *redis.Client, prefix string) *SanctionCache {
	if prefix == "" {
		prefix = "moderation:sanction"
	}
	return &SanctionCache{client: client, prefix: prefix}
}

type cachedSanction struct {
	UserID           string     `json:"user_id"`
	StrikeCount      int        `json:"strike_count"`
	SuspensionCount  int        `json:"suspension_count"`
	Status           string     `json:"status"`
	SuspensionEndsAt *time.Time `json:"suspension_ends_at,omitempty"`
	LastViolationAt  *time.Time `json:"last_violation_at,omitempty"`
	BannedAt         *time.Time `json:"banned_at,omitempty"`
	BannedReason     *string    `json:"banned_reason,omitempty"`
	Version          int64      `json:"version"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// GetSanctionState returns the cached state or repository.ErrNotFound on miss.
func (c *SanctionCache) GetSanctionState(ctx context.Context, userID string) (*domain.SanctionState, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get sanction: %w", err)
	}

	var cached cachedSanction
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("decode cached sanction: %w", err)
	}

	return &domain.SanctionState{
		UserID:           cached.UserID,
		StrikeCount:      cached.StrikeCount,
		SuspensionCount:  cached.SuspensionCount,
		Status:           domain.AccountStatus(cached.Status),
		SuspensionEndsAt: cached.SuspensionEndsAt,
		LastViolationAt:  cached.LastViolationAt,
		BannedAt:         cached.BannedAt,
		BannedReason:     cached.BannedReason,
		Version:          cached.Version,
		UpdatedAt:        cached.UpdatedAt,
	}, nil
}

// SetSanctionState stores the state with the provided TTL.
func (c *SanctionCache) SetSanctionState(ctx context.Context, state domain.SanctionState, ttl time.Duration) error {
	payload, err := json.Marshal(cachedSanction{
		UserID:           state.UserID,
		StrikeCount:      state.StrikeCount,
		SuspensionCount:  state.SuspensionCount,
		Status:           string(state.Status),
		SuspensionEndsAt: state.SuspensionEndsAt,
		LastViolationAt:  state.LastViolationAt,
		BannedAt:         state.BannedAt,
		BannedReason:     state.BannedReason,
		Version:          state.Version,
		UpdatedAt:        state.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode sanction: %w", err)
	}

	if err := c.client.Set(ctx, c.key(state.UserID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set sanction: %w", err)
	}

	return nil
}

// DeleteSanctionState evicts the cached state, forcing a store read next time.
func (c *SanctionCache) DeleteSanctionState(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del sanction: %w", err)
	}
	return nil
}

func (c *SanctionCache) key(userID string) string {
	return fmt.Sprintf("%s:%s", c.prefix, userID)
}

var _ port.SanctionCache = (*SanctionCache)(nil)
