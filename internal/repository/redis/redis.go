package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"veloraMarket/domain"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss distinguishes "nothing cached" from a redis failure, so the
// REST layer can fall through to the repository on a miss but log failures.
var ErrCacheMiss = errors.New("trending cache miss")

const trendingKeyPrefix = "trending"

// TrendingCache holds short-lived copies of trending responses. It is an
// API-layer convenience only: the recommendation core never reads it, and
// serving stays correct with redis down.
type TrendingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTrendingCache(client *redis.Client, ttl time.Duration) *TrendingCache {
	return &TrendingCache{
		client: client,
		ttl:    ttl,
	}
}

func trendingKey(limit int) string {
	return fmt.Sprintf("%s:limit:%d", trendingKeyPrefix, limit)
}

func (c *TrendingCache) Get(ctx context.Context, limit int) ([]domain.RecommendationResult, error) {
	val, err := c.client.Get(ctx, trendingKey(limit)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read trending cache: %w", err)
	}

	var results []domain.RecommendationResult
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trending cache: %w", err)
	}

	return results, nil
}

func (c *TrendingCache) Set(ctx context.Context, limit int, results []domain.RecommendationResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal trending results: %w", err)
	}

	if err := c.client.Set(ctx, trendingKey(limit), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store trending cache: %w", err)
	}

	return nil
}

// InvalidateTrending drops every cached trending response. Called by the
// score worker after new interactions land.
func (c *TrendingCache) InvalidateTrending(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, trendingKeyPrefix+":*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan trending keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate trending cache: %w", err)
	}

	return nil
}
