package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDSN       string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL       string `env:"RABBITMQ_URL,required=true"`
	RedisURL          string `env:"REDIS_URL,required=true"`
	APIPort           int    `env:"API_PORT,default=8080"`
	LogLevel          string `env:"LOG_LEVEL,default=info"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY,default=4"`
	WorkerMetricsPort int    `env:"WORKER_METRICS_PORT,default=9091"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	AlertConcurrency int           `env:"ALERT_CONCURRENCY,default=8"`
	AlertTimeout     time.Duration `env:"ALERT_TIMEOUT,default=5s"`
	RateLimitPerSec  int           `env:"RATE_LIMIT_PER_SEC,default=20"`
	RateLimitBackend string        `env:"RATE_LIMIT_BACKEND,default=redis"`

	// Per-channel quotas; unset ones fall back to RATE_LIMIT_PER_SEC.
	RateLimitSMSPerSec      int `env:"RATE_LIMIT_SMS_PER_SEC"`
	RateLimitWhatsAppPerSec int `env:"RATE_LIMIT_WHATSAPP_PER_SEC"`
	RateLimitEmailPerSec    int `env:"RATE_LIMIT_EMAIL_PER_SEC,default=2"`

	RescanInterval time.Duration `env:"RESCAN_INTERVAL,default=1m"`
	RescanGrace    time.Duration `env:"RESCAN_GRACE,default=2m"`
	RescanMaxAge   time.Duration `env:"RESCAN_MAX_AGE,default=24h"`

	TwilioAccountSID     string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string `env:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber    string `env:"TWILIO_PHONE_NUMBER"`
	TwilioWhatsAppNumber string `env:"TWILIO_WHATSAPP_NUMBER"`
	TwilioBaseURL        string `env:"TWILIO_BASE_URL,default=https://api.twilio.com"`

	ResendAPIKey   string `env:"RESEND_API_KEY"`
	ResendBaseURL  string `env:"RESEND_BASE_URL,default=https://api.resend.com"`
	AlertEmailFrom string `env:"ALERT_EMAIL_FROM,default=Emergency Alert <onboarding@resend.dev>"`

	// Comma separated user ids seeded with the admin role at startup.
	BootstrapAdminIDs string `env:"BOOTSTRAP_ADMIN_IDS"`
}

// Load reads the optional .env file and then the process environment.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

func LoadFiles(files ...string) (*Config, error) {
	for _, file := range files {
		// Variables already set in the environment win over the file.
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %q: %w", file, err)
		}
	}

	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.RateLimitBackend)) {
	case "redis", "local":
		cfg.RateLimitBackend = strings.ToLower(strings.TrimSpace(cfg.RateLimitBackend))
	default:
		return nil, fmt.Errorf("failed to load config: invalid RATE_LIMIT_BACKEND %q", cfg.RateLimitBackend)
	}

	return &cfg, nil
}

// BootstrapAdmins returns the configured admin user ids.
func (c *Config) BootstrapAdmins() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.BootstrapAdminIDs, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
