package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript purges, checks and records in one atomic step. It returns
// {allowed, count, oldest score}; the oldest score is only meaningful on
// rejection.
var allowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[2]) then
	local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
	return {0, count, tonumber(oldest[2])}
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {1, count + 1, 0}
`)

// RedisLimiter keeps the sliding window in a Redis sorted set keyed by
// identity, scored by request time in milliseconds. Window state is shared
// by every process pointed at the same Redis.
type RedisLimiter struct {
	client *redis.Client
	window time.Duration
	limit  int
	seq    atomic.Uint64
}

func NewRedisLimiter(client *redis.Client, window time.Duration, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, window: window, limit: limit}
}

func (l *RedisLimiter) Allow(ctx context.Context, identity string) (Decision, error) {
	now := time.Now()
	key := "ratelimit:" + identity
	// The member carries a sequence number so same-millisecond requests
	// stay distinct set entries.
	member := fmt.Sprintf("%d-%d", now.UnixNano(), l.seq.Add(1))

	res, err := allowScript.Run(ctx, l.client, []string{key},
		now.Add(-l.window).UnixMilli(),
		l.limit,
		now.UnixMilli(),
		member,
		l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", identity, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit %s: unexpected script reply length %d", identity, len(res))
	}

	if res[0] == 0 {
		retryMs := res[2] + l.window.Milliseconds() - now.UnixMilli()
		if retryMs < 0 {
			retryMs = 0
		}
		return Decision{
			Allowed:    false,
			Limit:      l.limit,
			RetryAfter: time.Duration(retryMs) * time.Millisecond,
		}, nil
	}
	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - int(res[1])}, nil
}
