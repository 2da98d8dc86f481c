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

// GlossaryCache caches glossary terms keyed by slug.
type GlossaryCache struct {
	client *redis.Client
	prefix string
}

// NewGlossaryCache constructs a cache using the provided client and key prefix.
func NewGlossaryCache(client *redis.Client, prefix string) *GlossaryCache {
	if prefix == "" {
		prefix = "moderation:glossary"
	}
	return &GlossaryCache{client: client, prefix: prefix}
}

// GetTerm returns the cached term or repository.ErrNotFound on miss.
func (c *GlossaryCache) GetTerm(ctx context.Context, slug string) (*domain.GlossaryTerm, error) {
	raw, err := c.client.Get(ctx, c.key(slug)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get term: %w", err)
	}

	var term domain.GlossaryTerm
	if err := json.Unmarshal([]byte(raw), &term); err != nil {
		return nil, fmt.Errorf("decode cached term: %w", err)
	}

	return &term, nil
}

// SetTerm stores the term with the provided TTL.
func (c *GlossaryCache) SetTerm(ctx context.Context, term domain.GlossaryTerm, ttl time.Duration) error {
	payload, err := json.Marshal(term)
	if err != nil {
		return fmt.Errorf("encode term: %w", err)
	}

	if err := c.client.Set(ctx, c.key(term.Slug), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set term: %w", err)
	}

	return nil
}

// DeleteTerm evicts a cached term after an admin update.
func (c *GlossaryCache) DeleteTerm(ctx context.Context, slug string) error {
	if err := c.client.Del(ctx, c.key(slug)).Err(); err != nil {
		return fmt.Errorf("redis del term: %w", err)
	}
	return nil
}

func (c *GlossaryCache) key(slug string) string {
	return fmt.Sprintf("%s:%s", c.prefix, slug)
}

var _ port.GlossaryCache = (*GlossaryCache)(nil)
