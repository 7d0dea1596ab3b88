package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucket refills the whole bucket once per interval. Returns
// {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
if elapsed >= interval_ms then
	local intervals = math.floor(elapsed / interval_ms)
	tokens = capacity
	last_refill = last_refill + (intervals * interval_ms)
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('PEXPIRE', key, interval_ms)

return { allowed, tokens, retry_after_ms }
`)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	RetryAfter time.Duration
}

// RateLimiter is a fixed-capacity token bucket shared by every API replica.
type RateLimiter struct {
	client   *redis.Client
	capacity int
	interval time.Duration
	prefix   string
	now      func() time.Time
}

func NewRateLimiter(client *redis.Client, capacity int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		client:   client,
		capacity: capacity,
		interval: interval,
		prefix:   "ratelimit",
		now:      time.Now,
	}
}

// Allow takes one token from the bucket for key.
func (l *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	vals, err := tokenBucket.Run(ctx, l.client, []string{l.prefix + ":" + key},
		l.now().UnixMilli(), l.capacity, l.interval.Milliseconds(),
	).Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected result %v", vals)
	}
	return Decision{
		Allowed:    asInt64(vals[0]) == 1,
		Limit:      l.capacity,
		Remaining:  asInt64(vals[1]),
		RetryAfter: time.Duration(asInt64(vals[2])) * time.Millisecond,
	}, nil
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
