package vocab

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the set holding custom vocabulary words.
const DefaultRedisKey = "wordfix:vocab"

// RedisSource keeps custom vocabulary words in a Redis set.
type RedisSource struct {
	client redis.UniversalClient
	key    string
}

// NewRedisSource wraps client. An empty key means DefaultRedisKey.
func NewRedisSource(client redis.UniversalClient, key string) *RedisSource {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSource{client: client, key: key}
}

// Key returns the set name.
func (s *RedisSource) Key() string {
	return s.key
}

// Add inserts words into the set.
func (s *RedisSource) Add(ctx context.Context, words ...string) error {
	if len(words) == 0 {
		return nil
	}
	members := make([]any, len(words))
	for i, w := range words {
		members[i] = w
	}
	return s.client.SAdd(ctx, s.key, members...).Err()
}

// Remove deletes words from the set.
func (s *RedisSource) Remove(ctx context.Context, words ...string) error {
	if len(words) == 0 {
		return nil
	}
	members := make([]any, len(words))
	for i, w := range words {
		members[i] = w
	}
	return s.client.SRem(ctx, s.key, members...).Err()
}

// Words returns the set members sorted, so that loads are reproducible.
func (s *RedisSource) Words(ctx context.Context) ([]string, error) {
	words, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers %s: %w", s.key, err)
	}
	sort.Strings(words)
	return words, nil
}
