package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RosterCache memoizes solved rosters keyed by a digest of the player pool
// and configuration, so identical requests skip the solver entirely.
type RosterCache struct {
	client *redis.Client
}

func NewRosterCache(client *redis.Client) *RosterCache {
	return &RosterCache{
		client: client,
	}
}

func (s *RosterCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := s.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

func (s *RosterCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("key not found")
		}
		return fmt.Errorf("failed to get cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

func (s *RosterCache) Delete(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// OptimizeCacheKey builds the cache key for one optimization request.
// The digest covers players and configuration, so any change to either
// produces a fresh solve.
func OptimizeCacheKey(payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to hash request: %w", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("optimize:%s", hex.EncodeToString(sum[:])), nil
}
