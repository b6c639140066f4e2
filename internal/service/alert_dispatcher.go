package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"github.com/kursadbilgin/emergency-alerts/internal/observability"
	"github.com/kursadbilgin/emergency-alerts/internal/provider"
	"github.com/kursadbilgin/emergency-alerts/internal/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAlertConcurrency = 8
	defaultAlertTimeout     = 5 * time.Second
	recordTimeout           = 10 * time.Second
)

// Dispatch outcomes reported to metrics.
const (
	dispatchCompleted     = "completed"
	dispatchNoContacts    = "no_contacts"
	dispatchInvalid       = "invalid"
	dispatchContactsError = "contacts_error"
)

// Failure reasons added on top of the provider ones.
const (
	reasonRateLimited = "rate_limited"
	reasonRender      = "render"
	reasonPanic       = "panic"
)

// ContactLister is the read side of the contacts store.
type ContactLister interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Contact, error)
}

// AttemptRecorder persists delivery attempts for audit.
type AttemptRecorder interface {
	CreateBatch(ctx context.Context, attempts []*domain.DeliveryAttempt) error
}

// AlertProviders are the channel senders. Any of them may be nil or unconfigured.
type AlertProviders struct {
	SMS      provider.TextSender
	WhatsApp provider.TextSender
	Email    provider.EmailSender
}

// AlertDispatcher fans a call alert out to every contact of the caller over SMS, WhatsApp and email.
type AlertDispatcher struct {
	contacts    ContactLister
	providers   AlertProviders
	rateLimiter ratelimit.RateLimiter
	recorder    AttemptRecorder
	logger      *zap.Logger
	metrics     *observability.Metrics
	concurrency int
	timeout     time.Duration
	now         func() time.Time
}

func NewAlertDispatcher(
	contacts ContactLister,
	providers AlertProviders,
	concurrency int,
	timeout time.Duration,
	logger *zap.Logger,
) (*AlertDispatcher, error) {
	if contacts == nil {
		return nil, fmt.Errorf("contact lister is required")
	}
	if concurrency < 1 {
		concurrency = defaultAlertConcurrency
	}
	if timeout <= 0 {
		timeout = defaultAlertTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AlertDispatcher{
		contacts:    contacts,
		providers:   providers,
		logger:      logger,
		concurrency: concurrency,
		timeout:     timeout,
		now:         time.Now,
	}, nil
}

func (d *AlertDispatcher) SetRateLimiter(rateLimiter ratelimit.RateLimiter) {
	if d == nil {
		return
	}
	d.rateLimiter = rateLimiter
}

func (d *AlertDispatcher) SetAttemptRecorder(recorder AttemptRecorder) {
	if d == nil {
		return
	}
	d.recorder = recorder
}

func (d *AlertDispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// alertTask is one (contact, channel) delivery.
type alertTask struct {
	contact domain.Contact
	channel domain.Channel
	to      string
	text    string
	email   provider.EmailMessage
	// renderErr is set when the email body could not be built; the attempt then fails without a send.
	renderErr error
}

type alertOutcome struct {
	success  bool
	reason   string
	response *provider.ProviderResponse
	err      error
}

// Dispatch alerts every contact of callerID. Channel failures are counted, never returned;
// only invalid input and contacts store errors fail the call.
func (d *AlertDispatcher) Dispatch(ctx context.Context, callerID string, details *domain.CallDetails) (*domain.DispatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := d.now()

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		d.metrics.ObserveDispatch(dispatchInvalid, d.now().Sub(start))
		return nil, fmt.Errorf("%w: caller id is required", domain.ErrValidation)
	}
	if err := details.Validate(); err != nil {
		d.metrics.ObserveDispatch(dispatchInvalid, d.now().Sub(start))
		return nil, err
	}

	ctx = observability.WithCallerID(ctx, callerID)
	logger := observability.WithContextLogger(d.logger, ctx)

	contacts, err := d.contacts.ListByUser(ctx, callerID)
	if err != nil {
		d.metrics.ObserveDispatch(dispatchContactsError, d.now().Sub(start))
		logger.Error("failed to load emergency contacts", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrContactsStore, err)
	}

	result := &domain.DispatchResult{}
	if len(contacts) == 0 {
		logger.Info("no emergency contacts to alert")
		d.metrics.ObserveDispatch(dispatchNoContacts, d.now().Sub(start))
		return result, nil
	}

	call := *details
	if call.CreatedAt.IsZero() {
		call.CreatedAt = start
	}

	tasks := d.buildTasks(contacts, call)
	outcomes := make([]alertOutcome, len(tasks))

	// Attempts outlive an aborted invoker; each one is bounded by its own timeout.
	attemptCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i := range tasks {
		i := i
		g.Go(func() error {
			outcomes[i] = d.attempt(attemptCtx, logger, tasks[i])
			return nil
		})
	}
	_ = g.Wait()

	for i, task := range tasks {
		result.Record(task.channel, outcomes[i].success)
	}

	if call.CallID != "" {
		d.recordAttempts(attemptCtx, logger, call.CallID, tasks, outcomes)
	}

	d.metrics.ObserveDispatch(dispatchCompleted, d.now().Sub(start))
	logger.Info("emergency alerts dispatched",
		zap.String("callId", call.CallID),
		zap.Int("contacts", len(contacts)),
		zap.Int("smsSent", result.SMS.Sent),
		zap.Int("smsFailed", result.SMS.Failed),
		zap.Int("whatsappSent", result.WhatsApp.Sent),
		zap.Int("whatsappFailed", result.WhatsApp.Failed),
		zap.Int("emailSent", result.Email.Sent),
		zap.Int("emailFailed", result.Email.Failed),
	)

	return result, nil
}

func (d *AlertDispatcher) buildTasks(contacts []domain.Contact, call domain.CallDetails) []alertTask {
	text := renderAlertText(call)

	tasks := make([]alertTask, 0, len(contacts)*len(domain.Channels()))
	for _, contact := range contacts {
		tasks = append(tasks,
			alertTask{contact: contact, channel: domain.ChannelSMS, to: contact.Phone, text: text},
			alertTask{contact: contact, channel: domain.ChannelWhatsApp, to: contact.Phone, text: text},
		)

		if !contact.HasEmail() {
			continue
		}
		msg, err := renderAlertEmail(contact.Name, call)
		msg.To = strings.TrimSpace(*contact.Email)
		tasks = append(tasks, alertTask{
			contact:   contact,
			channel:   domain.ChannelEmail,
			to:        msg.To,
			email:     msg,
			renderErr: err,
		})
	}
	return tasks
}

func (d *AlertDispatcher) attempt(ctx context.Context, logger *zap.Logger, task alertTask) (outcome alertOutcome) {
	channel := task.channel.String()

	defer func() {
		if r := recover(); r != nil {
			outcome = alertOutcome{reason: reasonPanic, err: fmt.Errorf("%s sender panicked: %v", channel, r)}
		}

		if outcome.success {
			d.metrics.IncAlertSent(channel)
			return
		}
		d.metrics.IncAlertFailed(channel, outcome.reason)
		logger.Warn("alert delivery failed",
			zap.String("channel", channel),
			zap.String("contactId", task.contact.ID),
			zap.String("reason", outcome.reason),
			zap.Error(outcome.err),
		)
	}()

	if task.renderErr != nil {
		return alertOutcome{reason: reasonRender, err: task.renderErr}
	}
	if !d.available(task.channel) {
		return alertOutcome{
			reason: provider.ReasonUnavailable,
			err:    fmt.Errorf("%s: %w", channel, provider.ErrUnavailable),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if d.rateLimiter != nil {
		if err := d.rateLimiter.Wait(ctx, channel); err != nil {
			return alertOutcome{reason: reasonRateLimited, err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	d.metrics.IncAlertInFlight(channel)
	defer d.metrics.DecAlertInFlight(channel)

	sendStart := d.now()
	response, err := d.send(ctx, task)
	d.metrics.ObserveAlertSendDuration(channel, d.now().Sub(sendStart))
	if err != nil {
		return alertOutcome{reason: provider.FailureReason(err), response: response, err: err}
	}

	return alertOutcome{success: true, response: response}
}

func (d *AlertDispatcher) available(channel domain.Channel) bool {
	switch channel {
	case domain.ChannelSMS:
		return d.providers.SMS != nil && d.providers.SMS.Available()
	case domain.ChannelWhatsApp:
		return d.providers.WhatsApp != nil && d.providers.WhatsApp.Available()
	case domain.ChannelEmail:
		return d.providers.Email != nil && d.providers.Email.Available()
	}
	return false
}

func (d *AlertDispatcher) send(ctx context.Context, task alertTask) (*provider.ProviderResponse, error) {
	switch task.channel {
	case domain.ChannelSMS:
		return d.providers.SMS.SendText(ctx, task.to, task.text)
	case domain.ChannelWhatsApp:
		return d.providers.WhatsApp.SendText(ctx, task.to, task.text)
	case domain.ChannelEmail:
		return d.providers.Email.SendEmail(ctx, task.email)
	}
	return nil, fmt.Errorf("unsupported channel %q", task.channel)
}

func (d *AlertDispatcher) recordAttempts(
	ctx context.Context,
	logger *zap.Logger,
	callID string,
	tasks []alertTask,
	outcomes []alertOutcome,
) {
	if d.recorder == nil {
		return
	}

	now := d.now().UTC()
	attempts := make([]*domain.DeliveryAttempt, 0, len(tasks))
	for i, task := range tasks {
		attempts = append(attempts, deliveryAttempt(callID, task, outcomes[i], now))
	}

	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	if err := d.recorder.CreateBatch(ctx, attempts); err != nil {
		logger.Error("failed to record alert deliveries",
			zap.String("callId", callID),
			zap.Int("attempts", len(attempts)),
			zap.Error(err),
		)
	}
}

func deliveryAttempt(callID string, task alertTask, outcome alertOutcome, at time.Time) *domain.DeliveryAttempt {
	attempt := &domain.DeliveryAttempt{
		ID:        uuid.NewString(),
		CallID:    callID,
		ContactID: task.contact.ID,
		Channel:   task.channel,
		Success:   outcome.success,
		CreatedAt: at,
	}

	statusCode := provider.StatusCode(outcome.err)
	if outcome.response != nil {
		statusCode = outcome.response.StatusCode
		if id := outcome.response.MessageID; id != "" {
			attempt.ProviderMessageID = &id
		}
	}
	if statusCode > 0 {
		attempt.StatusCode = &statusCode
	}
	if outcome.err != nil {
		msg := outcome.err.Error()
		attempt.Error = &msg
	}

	return attempt
}
