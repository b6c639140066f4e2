// Package app assembles the alert pipeline shared by the API and worker binaries.
package app

import (
	"fmt"

	"github.com/kursadbilgin/emergency-alerts/internal/config"
	infraredis "github.com/kursadbilgin/emergency-alerts/internal/infra/redis"
	"github.com/kursadbilgin/emergency-alerts/internal/observability"
	"github.com/kursadbilgin/emergency-alerts/internal/provider"
	"github.com/kursadbilgin/emergency-alerts/internal/ratelimit"
	"github.com/kursadbilgin/emergency-alerts/internal/service"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewProviders builds the delivery providers. Missing credentials leave a provider
// unavailable rather than failing startup.
func NewProviders(cfg *config.Config) (service.AlertProviders, error) {
	sms, err := provider.NewTwilioProvider(provider.TwilioConfig{
		BaseURL:    cfg.TwilioBaseURL,
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		From:       cfg.TwilioPhoneNumber,
	})
	if err != nil {
		return service.AlertProviders{}, fmt.Errorf("sms provider: %w", err)
	}

	whatsapp, err := provider.NewTwilioProvider(provider.TwilioConfig{
		BaseURL:    cfg.TwilioBaseURL,
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		From:       cfg.TwilioWhatsAppNumber,
		WhatsApp:   true,
	})
	if err != nil {
		return service.AlertProviders{}, fmt.Errorf("whatsapp provider: %w", err)
	}

	email, err := provider.NewResendProvider(provider.ResendConfig{
		BaseURL: cfg.ResendBaseURL,
		APIKey:  cfg.ResendAPIKey,
		From:    cfg.AlertEmailFrom,
	})
	if err != nil {
		return service.AlertProviders{}, fmt.Errorf("email provider: %w", err)
	}

	return service.AlertProviders{SMS: sms, WhatsApp: whatsapp, Email: email}, nil
}

// RateLimits collects the per-channel send quotas.
func RateLimits(cfg *config.Config) ratelimit.Limits {
	return ratelimit.Limits{
		SMS:      cfg.RateLimitSMSPerSec,
		WhatsApp: cfg.RateLimitWhatsAppPerSec,
		Email:    cfg.RateLimitEmailPerSec,
	}.WithDefaults(cfg.RateLimitPerSec)
}

// NewRateLimiter picks the limiter backend named by RATE_LIMIT_BACKEND.
func NewRateLimiter(cfg *config.Config, rdb *goredis.Client) (ratelimit.RateLimiter, error) {
	switch cfg.RateLimitBackend {
	case "local":
		return ratelimit.NewLocalRateLimiter(RateLimits(cfg)), nil
	case "redis", "":
		return infraredis.NewRedisRateLimiter(rdb, RateLimits(cfg))
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.RateLimitBackend)
	}
}

// NewAlertDispatcher wires providers, limiter and metrics around the contact store.
func NewAlertDispatcher(
	cfg *config.Config,
	contacts service.ContactLister,
	rdb *goredis.Client,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*service.AlertDispatcher, error) {
	providers, err := NewProviders(cfg)
	if err != nil {
		return nil, err
	}

	for name, available := range map[string]bool{
		"sms":      providers.SMS.Available(),
		"whatsapp": providers.WhatsApp.Available(),
		"email":    providers.Email.Available(),
	} {
		if !available {
			logger.Warn("alert provider not configured, deliveries will count as failed", zap.String("channel", name))
		}
	}

	limiter, err := NewRateLimiter(cfg, rdb)
	if err != nil {
		return nil, err
	}

	dispatcher, err := service.NewAlertDispatcher(contacts, providers, cfg.AlertConcurrency, cfg.AlertTimeout, logger)
	if err != nil {
		return nil, err
	}
	dispatcher.SetRateLimiter(limiter)
	dispatcher.SetMetrics(metrics)

	return dispatcher, nil
}
