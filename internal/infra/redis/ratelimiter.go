package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"github.com/kursadbilgin/emergency-alerts/internal/ratelimit"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "alerts:ratelimit"
	window    = time.Second
	minRetry  = 5 * time.Millisecond
)

// takeScript counts one send in the channel window. It replies {1, 0} when the send fits
// the quota and {0, ms left in the window} when it does not.
var takeScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if current <= tonumber(ARGV[1]) then
  return {1, 0}
end
return {0, redis.call("PTTL", KEYS[1])}
`)

var _ ratelimit.RateLimiter = (*RedisRateLimiter)(nil)

// RedisRateLimiter enforces the per-channel send quotas across every API and worker instance
// with one fixed one-second window per channel.
type RedisRateLimiter struct {
	client *goredis.Client
	limits ratelimit.Limits
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewRedisRateLimiter(client *goredis.Client, limits ratelimit.Limits) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	return &RedisRateLimiter{
		client: client,
		limits: limits.WithDefaults(ratelimit.DefaultPerSec),
		now:    time.Now,
		sleep:  sleepWithContext,
	}, nil
}

func (r *RedisRateLimiter) Allow(ctx context.Context, channel string) (bool, error) {
	allowed, _, err := r.take(ctx, channel)
	return allowed, err
}

// Wait blocks until the channel has quota, sleeping out the rest of each spent window.
func (r *RedisRateLimiter) Wait(ctx context.Context, channel string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		allowed, retryAfter, err := r.take(ctx, channel)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
		if err := r.sleep(ctx, retryAfter); err != nil {
			return err
		}
	}
}

func (r *RedisRateLimiter) take(ctx context.Context, channel string) (bool, time.Duration, error) {
	if r == nil || r.client == nil {
		return false, 0, fmt.Errorf("rate limiter is not initialized")
	}

	ch, err := domain.ParseChannelFromString(channel)
	if err != nil {
		return false, 0, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reply, err := takeScript.Run(ctx, r.client, []string{windowKey(ch, r.now())}, r.limits.For(ch), window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("failed to evaluate %s rate limit: %w", ch, err)
	}
	if len(reply) != 2 {
		return false, 0, fmt.Errorf("unexpected %s rate limit reply %v", ch, reply)
	}
	if reply[0] == 1 {
		return true, 0, nil
	}
	return false, retryAfter(reply[1]), nil
}

func retryAfter(ttlMillis int64) time.Duration {
	d := time.Duration(ttlMillis) * time.Millisecond
	return min(max(d, minRetry), window)
}

func windowKey(channel domain.Channel, at time.Time) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, channel, at.UTC().Unix())
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
