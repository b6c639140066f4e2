package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"github.com/kursadbilgin/emergency-alerts/internal/observability"
	"github.com/kursadbilgin/emergency-alerts/internal/queue"
	"github.com/kursadbilgin/emergency-alerts/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const minWorkerConcurrency = 1

// Dispatcher fans a call out to the caller's emergency contacts.
type Dispatcher interface {
	Dispatch(ctx context.Context, callerID string, details *domain.CallDetails) (*domain.DispatchResult, error)
}

var _ Dispatcher = (*AlertDispatcher)(nil)

// AlertWorker consumes queued alert messages and dispatches them.
type AlertWorker struct {
	calls       repository.CallRepository
	dispatcher  Dispatcher
	consumer    queue.Consumer
	logger      *zap.Logger
	concurrency int
	now         func() time.Time
}

func NewAlertWorker(
	calls repository.CallRepository,
	dispatcher Dispatcher,
	consumer queue.Consumer,
	concurrency int,
	logger *zap.Logger,
) (*AlertWorker, error) {
	if calls == nil {
		return nil, fmt.Errorf("call repository is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if consumer == nil {
		return nil, fmt.Errorf("consumer is required")
	}
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AlertWorker{
		calls:       calls,
		dispatcher:  dispatcher,
		consumer:    consumer,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}, nil
}

// Start runs the consumers until ctx is cancelled or one of them fails.
func (w *AlertWorker) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	queueNames := queue.WorkQueueNames()
	if len(queueNames) == 0 {
		return fmt.Errorf("no work queues configured")
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		queueName := queueNames[i%len(queueNames)]
		workerID := i + 1

		g.Go(func() error {
			w.logger.Info("alert worker started",
				zap.Int("workerId", workerID),
				zap.String("queue", queueName),
			)

			if err := w.consumer.Consume(groupCtx, queueName, w.processMessage); err != nil {
				w.logger.Error("alert worker stopped with error",
					zap.Int("workerId", workerID),
					zap.String("queue", queueName),
					zap.Error(err),
				)
				return err
			}

			w.logger.Info("alert worker stopped",
				zap.Int("workerId", workerID),
				zap.String("queue", queueName),
			)
			return nil
		})
	}

	return g.Wait()
}

func (w *AlertWorker) processMessage(ctx context.Context, msg queue.AlertMessage) error {
	logger := observability.WithContextLogger(w.logger, ctx).With(zap.String("callId", msg.CallID))

	call, err := w.calls.GetByID(ctx, msg.CallID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("emergency call not found, skipping alerts")
			return nil
		}
		return fmt.Errorf("failed to load emergency call: %w", err)
	}

	if call.UserID != msg.CallerID {
		return fmt.Errorf("%w: caller %s does not own call %s", queue.ErrRejectMessage, msg.CallerID, call.ID)
	}

	// Redelivered or rescanned after a completed dispatch.
	if call.AlertSummary != nil {
		logger.Info("alerts already dispatched for call, skipping")
		return nil
	}

	claimed, err := w.calls.ClaimAlerts(ctx, call.ID, w.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to claim emergency call for alerting: %w", err)
	}
	if !claimed {
		logger.Info("alerts already claimed for call, skipping")
		return nil
	}

	details := call.Details()
	result, err := w.dispatcher.Dispatch(ctx, call.UserID, &details)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return fmt.Errorf("%w: %w", queue.ErrRejectMessage, err)
		}
		// Nothing was sent; the redelivered message claims the call again.
		if releaseErr := w.calls.ReleaseAlertClaim(ctx, call.ID); releaseErr != nil {
			logger.Error("failed to release alert claim", zap.Error(releaseErr))
		}
		return fmt.Errorf("failed to dispatch alerts: %w", err)
	}

	// The claim stays in place, so the rescanner leaves the call alone.
	if err := w.calls.SetAlertSummary(ctx, call.ID, result); err != nil {
		logger.Error("failed to store alert summary", zap.Error(err))
		return nil
	}

	logger.Info("emergency alerts dispatched",
		zap.Int("smsSent", result.SMS.Sent),
		zap.Int("whatsappSent", result.WhatsApp.Sent),
		zap.Int("emailSent", result.Email.Sent),
	)
	return nil
}
