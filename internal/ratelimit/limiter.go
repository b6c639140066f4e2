package ratelimit

import (
	"context"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
)

// RateLimiter throttles outbound alert deliveries per channel.
type RateLimiter interface {
	Allow(ctx context.Context, channel string) (bool, error)
	Wait(ctx context.Context, channel string) error
}

const DefaultPerSec = 20

// Limits are per-second send quotas. Twilio messaging and Resend meter
// accounts separately, so each channel has its own.
type Limits struct {
	SMS      int
	WhatsApp int
	Email    int
}

// WithDefaults fills unset quotas with fallback, or DefaultPerSec when fallback is unset.
func (l Limits) WithDefaults(fallback int) Limits {
	if fallback <= 0 {
		fallback = DefaultPerSec
	}
	if l.SMS <= 0 {
		l.SMS = fallback
	}
	if l.WhatsApp <= 0 {
		l.WhatsApp = fallback
	}
	if l.Email <= 0 {
		l.Email = fallback
	}
	return l
}

// For returns the quota of an alert channel.
func (l Limits) For(channel domain.Channel) int {
	switch channel {
	case domain.ChannelSMS:
		return l.SMS
	case domain.ChannelWhatsApp:
		return l.WhatsApp
	case domain.ChannelEmail:
		return l.Email
	}
	return 0
}
