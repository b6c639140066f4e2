package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/emergency-alerts/internal/queue"
	"github.com/kursadbilgin/emergency-alerts/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultRescanInterval = time.Minute
	defaultRescanGrace    = 2 * time.Minute
	defaultRescanMaxAge   = 24 * time.Hour
	defaultRescanLimit    = 100
)

// RescanConfig bounds which calls the rescanner picks up.
type RescanConfig struct {
	Interval time.Duration
	// Grace is how old a call must be before its missing summary counts as lost.
	Grace  time.Duration
	MaxAge time.Duration
	Limit  int
}

// AlertRescanner periodically re-queues calls whose alerts were never dispatched.
type AlertRescanner struct {
	calls     repository.CallRepository
	publisher queue.Publisher
	logger    *zap.Logger
	cfg       RescanConfig
	now       func() time.Time
}

func NewAlertRescanner(
	calls repository.CallRepository,
	publisher queue.Publisher,
	cfg RescanConfig,
	logger *zap.Logger,
) (*AlertRescanner, error) {
	if calls == nil {
		return nil, fmt.Errorf("call repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultRescanInterval
	}
	if cfg.Grace <= 0 {
		cfg.Grace = defaultRescanGrace
	}
	if cfg.MaxAge <= cfg.Grace {
		cfg.MaxAge = max(defaultRescanMaxAge, cfg.Grace+time.Hour)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultRescanLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AlertRescanner{
		calls:     calls,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

func (s *AlertRescanner) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := s.scanLost(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("alert rescanner initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.scanLost(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("alert rescanner scan failed", zap.Error(err))
			}
		}
	}
}

// scanLost re-queues unalerted calls and returns how many were published.
func (s *AlertRescanner) scanLost(ctx context.Context) (int, error) {
	now := s.now().UTC()
	calls, err := s.calls.ListUnalerted(ctx, now.Add(-s.cfg.MaxAge), now.Add(-s.cfg.Grace), s.cfg.Limit)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unalerted calls: %w", err)
	}

	published := 0
	for i := range calls {
		call := calls[i]
		msg := queue.AlertMessage{
			CallID:   call.ID,
			CallerID: call.UserID,
			Urgency:  call.Urgency,
		}
		if err := s.publisher.Publish(ctx, queue.AlertsQueue, msg); err != nil {
			s.logger.Error("failed to re-queue emergency alerts",
				zap.String("callId", call.ID),
				zap.Error(err),
			)
			continue
		}
		published++
	}

	if published > 0 {
		s.logger.Warn("re-queued calls with undispatched alerts", zap.Int("count", published))
	}
	return published, nil
}
