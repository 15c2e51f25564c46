package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/domain"
)

const userCacheTTL = 5 * time.Minute

// CachedUserSource layers a Redis read-through cache over user-by-id lookups.
// The auth middleware resolves a user on every authenticated request; caching
// keeps that off the database. Cache failures fall through to the repository.
type CachedUserSource struct {
	users UserRepository
	redis *redis.Client
}

// NewCachedUserSource wraps the repository. A nil client disables caching.
func NewCachedUserSource(users UserRepository, client *redis.Client) *CachedUserSource {
	return &CachedUserSource{users: users, redis: client}
}

// GetByID returns the cached user when present, loading and caching on miss.
func (c *CachedUserSource) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if c.redis == nil {
		return c.users.GetByID(ctx, id)
	}

	key := userCacheKey(id)
	if raw, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var user domain.User
		if err := json.Unmarshal(raw, &user); err == nil {
			return &user, nil
		}
	}

	user, err := c.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(user); err == nil {
		_ = c.redis.Set(ctx, key, raw, userCacheTTL).Err()
	}
	return user, nil
}

// Invalidate drops the cached entry for a user.
func (c *CachedUserSource) Invalidate(ctx context.Context, id int64) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, userCacheKey(id)).Err()
}

func userCacheKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}
