package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"github.com/kursadbilgin/emergency-alerts/internal/observability"
	"github.com/kursadbilgin/emergency-alerts/internal/queue"
	"github.com/kursadbilgin/emergency-alerts/internal/repository"
	"go.uber.org/zap"
)

// DeliveryLister reads the per-attempt audit of a call's alerts.
type DeliveryLister interface {
	ListByCall(ctx context.Context, callID string) ([]domain.DeliveryAttempt, error)
}

type CallService struct {
	calls      repository.CallRepository
	publisher  queue.Publisher
	deliveries DeliveryLister
	logger     *zap.Logger
	now        func() time.Time
}

// CallStats counts recorded calls per urgency.
type CallStats struct {
	Total     int64                     `json:"total"`
	ByUrgency []repository.UrgencyCount `json:"byUrgency"`
}

func NewCallService(calls repository.CallRepository, publisher queue.Publisher, logger *zap.Logger) (*CallService, error) {
	if calls == nil {
		return nil, fmt.Errorf("call repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CallService{
		calls:     calls,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (s *CallService) SetDeliveryLister(deliveries DeliveryLister) {
	if s == nil {
		return
	}
	s.deliveries = deliveries
}

// Create records a call and queues the alert fan-out for it. A publish failure keeps the
// call and reports alertsQueued=false.
func (s *CallService) Create(ctx context.Context, call *domain.EmergencyCall) (*domain.EmergencyCall, bool, error) {
	if call == nil {
		return nil, false, fmt.Errorf("%w: call is required", domain.ErrValidation)
	}

	prepareCallForCreate(call, s.now().UTC())
	if err := call.Validate(); err != nil {
		return nil, false, err
	}

	if err := s.calls.Create(ctx, call); err != nil {
		return nil, false, err
	}

	logger := observability.WithContextLogger(s.logger, ctx).With(zap.String("callId", call.ID))
	if s.publisher == nil {
		logger.Warn("no alert publisher configured, call stored without alerts")
		return call, false, nil
	}

	correlationID, _ := observability.CorrelationIDFromContext(ctx)
	msg := queue.AlertMessage{
		CallID:        call.ID,
		CallerID:      call.UserID,
		CorrelationID: correlationID,
		Urgency:       call.Urgency,
	}
	if err := s.publisher.Publish(ctx, queue.AlertsQueue, msg); err != nil {
		logger.Error("failed to queue emergency alerts", zap.Error(err))
		return call, false, nil
	}

	logger.Info("emergency call recorded", zap.String("urgency", call.Urgency.String()))
	return call, true, nil
}

func prepareCallForCreate(call *domain.EmergencyCall, now time.Time) {
	call.ID = uuid.NewString()
	call.UserID = strings.TrimSpace(call.UserID)
	call.Transcript = strings.TrimSpace(call.Transcript)
	if call.Sentiment == "" {
		call.Sentiment = domain.SentimentNeutral
	}
	call.SentimentScore = call.Sentiment.Score()
	call.Status = domain.CallStatusPending
	call.AlertSummary = nil
	call.AlertClaimedAt = nil
	call.CreatedAt = now
	call.UpdatedAt = now
}

func (s *CallService) GetByID(ctx context.Context, id string) (*domain.EmergencyCall, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: call id is required", domain.ErrValidation)
	}
	return s.calls.GetByID(ctx, id)
}

func (s *CallService) List(ctx context.Context, params repository.CallListParams) ([]domain.EmergencyCall, int64, error) {
	if params.From != nil && params.To != nil && params.From.After(*params.To) {
		return nil, 0, fmt.Errorf("%w: from must be before to", domain.ErrValidation)
	}
	return s.calls.List(ctx, params.Normalize())
}

// Stats returns a count for every urgency level, zero-filled, in severity order.
func (s *CallService) Stats(ctx context.Context, userID *string) (*CallStats, error) {
	counts, err := s.calls.UrgencyStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	byUrgency := make(map[domain.Urgency]int64, len(counts))
	for _, c := range counts {
		byUrgency[c.Urgency] += c.Count
	}

	stats := &CallStats{ByUrgency: make([]repository.UrgencyCount, 0, len(domain.Urgencies()))}
	for _, urgency := range domain.Urgencies() {
		count := byUrgency[urgency]
		stats.Total += count
		stats.ByUrgency = append(stats.ByUrgency, repository.UrgencyCount{Urgency: urgency, Count: count})
	}
	return stats, nil
}

func (s *CallService) UpdateStatus(ctx context.Context, id string, status domain.CallStatus) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: call id is required", domain.ErrValidation)
	}
	if !status.IsValid() {
		return fmt.Errorf("%w: invalid call status %q", domain.ErrValidation, status)
	}
	return s.calls.UpdateStatus(ctx, id, status)
}

// ListDeliveries returns the delivery attempts recorded for a call.
func (s *CallService) ListDeliveries(ctx context.Context, callID string) ([]domain.DeliveryAttempt, error) {
	call, err := s.GetByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if s.deliveries == nil {
		return []domain.DeliveryAttempt{}, nil
	}
	return s.deliveries.ListByCall(ctx, call.ID)
}
