package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/challenge-api/internal/dto"
)

// SessionCache keeps resolved sessions close to the guards so most requests skip the database.
type SessionCache interface {
	Get(ctx context.Context, token string) (dto.SessionResponse, bool)
	Set(ctx context.Context, session dto.SessionResponse)
	Delete(ctx context.Context, token string)
}

type redisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewSessionCache builds a redis-backed session cache. A nil client yields a cache that never hits.
func NewSessionCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) SessionCache {
	return &redisSessionCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_cache").Logger(),
		now:    time.Now,
	}
}

func sessionCacheKey(token string) string {
	return fmt.Sprintf("session:token:%s", token)
}

func (c *redisSessionCache) Get(ctx context.Context, token string) (dto.SessionResponse, bool) {
	if c.client == nil {
		return dto.SessionResponse{}, false
	}

	cached, err := c.client.Get(ctx, sessionCacheKey(token)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Msg("failed to read session cache")
		}
		return dto.SessionResponse{}, false
	}

	var session dto.SessionResponse
	if err := json.Unmarshal([]byte(cached), &session); err != nil {
		c.logger.Warn().Err(err).Msg("discarding malformed session cache entry")
		c.Delete(ctx, token)
		return dto.SessionResponse{}, false
	}

	return session, true
}

// Set stores the session for the configured TTL, never outliving the session's own expiry.
func (c *redisSessionCache) Set(ctx context.Context, session dto.SessionResponse) {
	if c.client == nil || c.ttl <= 0 {
		return
	}

	ttl := c.ttl
	if session.ExpiresAt != nil {
		remaining := session.ExpiresAt.Sub(c.now())
		if remaining <= 0 {
			return
		}
		if remaining < ttl {
			ttl = remaining
		}
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, sessionCacheKey(session.Token), payload, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store session cache")
	}
}

func (c *redisSessionCache) Delete(ctx context.Context, token string) {
	if c.client == nil {
		return
	}

	if err := c.client.Del(ctx, sessionCacheKey(token)).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to evict session cache")
	}
}
