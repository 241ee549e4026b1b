package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps a sorted set of call timestamps per key so several API
// instances share one window.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore wraps a redis client. Keys are stored under prefix.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// acquireScript trims expired members, counts the rest and records the call
// only when the count is under the limit. KEYS[1] is the window set; ARGV is
// cutoff, score, max, member, ttl in milliseconds.
var acquireScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// TryAcquire implements Store. The whole check runs server side as one
// script, so concurrent callers on any instance see a consistent count.
func (s *RedisStore) TryAcquire(ctx context.Context, key string, now time.Time, window time.Duration, max int) (bool, error) {
	redisKey := s.prefix + key
	cutoff := now.Add(-window).UnixMicro()

	allowed, err := acquireScript.Run(ctx, s.client, []string{redisKey},
		strconv.FormatInt(cutoff, 10),
		strconv.FormatInt(now.UnixMicro(), 10),
		max,
		uuid.NewString(),
		(2 * window).Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("ratelimit acquire %s: %w", key, err)
	}
	return allowed == 1, nil
}
