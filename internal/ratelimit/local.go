package ratelimit

import (
	"context"
	"fmt"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"golang.org/x/time/rate"
)

var _ RateLimiter = (*LocalRateLimiter)(nil)

// LocalRateLimiter keeps one token bucket per alert channel in process, for single-instance deployments.
// Each bucket holds one second of quota.
type LocalRateLimiter struct {
	limits   Limits
	limiters map[domain.Channel]*rate.Limiter
}

func NewLocalRateLimiter(limits Limits) *LocalRateLimiter {
	limits = limits.WithDefaults(DefaultPerSec)

	limiters := make(map[domain.Channel]*rate.Limiter, len(domain.Channels()))
	for _, channel := range domain.Channels() {
		perSec := limits.For(channel)
		limiters[channel] = rate.NewLimiter(rate.Limit(perSec), perSec)
	}
	return &LocalRateLimiter{limits: limits, limiters: limiters}
}

func (l *LocalRateLimiter) Allow(_ context.Context, channel string) (bool, error) {
	limiter, err := l.limiterFor(channel)
	if err != nil {
		return false, err
	}
	return limiter.Allow(), nil
}

func (l *LocalRateLimiter) Wait(ctx context.Context, channel string) error {
	limiter, err := l.limiterFor(channel)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return limiter.Wait(ctx)
}

func (l *LocalRateLimiter) limiterFor(channel string) (*rate.Limiter, error) {
	if l == nil || l.limiters == nil {
		return nil, fmt.Errorf("rate limiter is not initialized")
	}
	ch, err := domain.ParseChannelFromString(channel)
	if err != nil {
		return nil, err
	}
	return l.limiters[ch], nil
}
