package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kursadbilgin/emergency-alerts/internal/config"
	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	infraredis "github.com/kursadbilgin/emergency-alerts/internal/infra/redis"
	"github.com/kursadbilgin/emergency-alerts/internal/ratelimit"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func baseConfig() *config.Config {
	return &config.Config{
		TwilioBaseURL:    "https://api.twilio.com",
		ResendBaseURL:    "https://api.resend.com",
		AlertEmailFrom:   "alerts@example.com",
		AlertConcurrency: 4,
		RateLimitPerSec:  10,
		RateLimitBackend: "local",
	}
}

func TestNewProvidersAvailability(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.TwilioAccountSID = "AC1"
	cfg.TwilioAuthToken = "token"
	cfg.TwilioPhoneNumber = "+15550000"

	providers, err := NewProviders(cfg)
	if err != nil {
		t.Fatalf("NewProviders() error = %v", err)
	}
	if !providers.SMS.Available() {
		t.Fatal("expected sms provider to be available")
	}
	if providers.WhatsApp.Available() {
		t.Fatal("expected whatsapp provider without sender number to be unavailable")
	}
	if providers.Email.Available() {
		t.Fatal("expected email provider without api key to be unavailable")
	}
}

func TestNewRateLimiterBackends(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	limiter, err := NewRateLimiter(cfg, nil)
	if err != nil {
		t.Fatalf("NewRateLimiter(local) error = %v", err)
	}
	if _, ok := limiter.(*ratelimit.LocalRateLimiter); !ok {
		t.Fatalf("expected local limiter, got %T", limiter)
	}

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg.RateLimitBackend = "redis"
	limiter, err = NewRateLimiter(cfg, rdb)
	if err != nil {
		t.Fatalf("NewRateLimiter(redis) error = %v", err)
	}
	if _, ok := limiter.(*infraredis.RedisRateLimiter); !ok {
		t.Fatalf("expected redis limiter, got %T", limiter)
	}

	if _, err := NewRateLimiter(cfg, nil); err == nil {
		t.Fatal("expected error for redis backend without client")
	}

	cfg.RateLimitBackend = "memcached"
	if _, err := NewRateLimiter(cfg, rdb); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestRateLimitsFallBackToSharedQuota(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.RateLimitEmailPerSec = 2
	cfg.RateLimitWhatsAppPerSec = 5

	want := ratelimit.Limits{SMS: 10, WhatsApp: 5, Email: 2}
	if got := RateLimits(cfg); got != want {
		t.Fatalf("RateLimits() = %+v, want %+v", got, want)
	}
}

type staticContacts []domain.Contact

func (s staticContacts) ListByUser(ctx context.Context, userID string) ([]domain.Contact, error) {
	return s, nil
}

func TestNewAlertDispatcherCountsUnconfiguredProvidersAsFailed(t *testing.T) {
	t.Parallel()

	dispatcher, err := NewAlertDispatcher(baseConfig(), staticContacts{{ID: "c1", UserID: "u1", Name: "Ana", Phone: "+1"}}, nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAlertDispatcher() error = %v", err)
	}

	result, err := dispatcher.Dispatch(context.Background(), "u1", &domain.CallDetails{Transcript: "help", Urgency: domain.UrgencyHigh})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if result.SMS.Failed != 1 || result.WhatsApp.Failed != 1 || result.Email.Attempts() != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}
