package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/altairhq/usermanagement/internal/constants"
	"github.com/altairhq/usermanagement/internal/dto"
	"github.com/altairhq/usermanagement/pkg/logger"
	"github.com/altairhq/usermanagement/pkg/redis"
)

// RedisUserCache caches user responses in Redis. Every method degrades to a
// miss or a no-op on cache failure; the database stays the source of truth.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisUserCache(client *redis.Client, ttl time.Duration) *RedisUserCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisUserCache{client: client, ttl: ttl}
}

func userKey(id string) string {
	return constants.CacheKeyUser + id
}

func searchKey(keyword string, page, pageSize int) string {
	return fmt.Sprintf("%s%s:%d:%d", constants.CacheKeySearch, strings.ToLower(keyword), page, pageSize)
}

// cachedSearchPage is the stored form of one search result page.
type cachedSearchPage struct {
	Users []dto.UserResponse `json:"users"`
	Total int64              `json:"total"`
}

func (c *RedisUserCache) GetUser(ctx context.Context, id string) (*dto.UserResponse, bool) {
	var user dto.UserResponse
	found, err := c.client.GetJSON(ctx, userKey(id), &user)
	if err != nil || !found {
		return nil, false
	}
	return &user, true
}

func (c *RedisUserCache) SetUser(ctx context.Context, user *dto.UserResponse) {
	// Tokens are per-session, never cached.
	cached := *user
	cached.AccessToken = ""
	cached.RefreshToken = ""

	if err := c.client.SetJSON(ctx, userKey(user.ID), &cached, c.ttl); err != nil {
		logger.WarnWithContext(ctx, "Failed to cache user").
			String("user_id", user.ID).
			Err(err).
			Log()
	}
}

func (c *RedisUserCache) GetSearch(ctx context.Context, keyword string, page, pageSize int) ([]dto.UserResponse, int64, bool) {
	var cached cachedSearchPage
	found, err := c.client.GetJSON(ctx, searchKey(keyword, page, pageSize), &cached)
	if err != nil || !found {
		return nil, 0, false
	}
	return cached.Users, cached.Total, true
}

func (c *RedisUserCache) SetSearch(ctx context.Context, keyword string, page, pageSize int, users []dto.UserResponse, total int64) {
	cached := cachedSearchPage{Users: users, Total: total}
	if err := c.client.SetJSON(ctx, searchKey(keyword, page, pageSize), &cached, c.ttl); err != nil {
		logger.WarnWithContext(ctx, "Failed to cache search page").
			String("keyword", keyword).
			Err(err).
			Log()
	}
}

func (c *RedisUserCache) InvalidateUser(ctx context.Context, id string) {
	if err := c.client.Delete(ctx, userKey(id)); err != nil {
		logger.WarnWithContext(ctx, "Failed to invalidate cached user").
			String("user_id", id).
			Err(err).
			Log()
	}
}

func (c *RedisUserCache) InvalidateSearches(ctx context.Context) {
	if err := c.client.DeleteByPattern(ctx, constants.CacheKeySearch+"*"); err != nil {
		logger.WarnWithContext(ctx, "Failed to invalidate cached searches").
			Err(err).
			Log()
	}
}
