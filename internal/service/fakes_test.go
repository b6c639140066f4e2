package service

import (
	"context"
	"sync"
	"time"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"github.com/kursadbilgin/emergency-alerts/internal/provider"
	"github.com/kursadbilgin/emergency-alerts/internal/queue"
	"github.com/kursadbilgin/emergency-alerts/internal/ratelimit"
	"github.com/kursadbilgin/emergency-alerts/internal/repository"
)

type fakeContactRepo struct {
	listByUserFn func(ctx context.Context, userID string) ([]domain.Contact, error)
	createFn     func(ctx context.Context, c *domain.Contact) error
	deleteFn     func(ctx context.Context, userID string, id string) error
	setPrimaryFn func(ctx context.Context, userID string, id string) error
}

func (f *fakeContactRepo) ListByUser(ctx context.Context, userID string) ([]domain.Contact, error) {
	if f.listByUserFn != nil {
		return f.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return nil
}

func (f *fakeContactRepo) Delete(ctx context.Context, userID string, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, id)
	}
	return nil
}

func (f *fakeContactRepo) SetPrimary(ctx context.Context, userID string, id string) error {
	if f.setPrimaryFn != nil {
		return f.setPrimaryFn(ctx, userID, id)
	}
	return nil
}

var _ repository.ContactRepository = (*fakeContactRepo)(nil)

// fakeTextSender records every send; safe for concurrent use.
type fakeTextSender struct {
	unavailable bool
	sendFn      func(ctx context.Context, to string, body string) (*provider.ProviderResponse, error)

	mu    sync.Mutex
	sends []textSend
}

type textSend struct {
	to   string
	body string
}

func (f *fakeTextSender) Available() bool {
	return !f.unavailable
}

func (f *fakeTextSender) SendText(ctx context.Context, to string, body string) (*provider.ProviderResponse, error) {
	f.mu.Lock()
	f.sends = append(f.sends, textSend{to: to, body: body})
	f.mu.Unlock()

	if f.sendFn != nil {
		return f.sendFn(ctx, to, body)
	}
	return &provider.ProviderResponse{StatusCode: 201, MessageID: "SM-" + to}, nil
}

func (f *fakeTextSender) calls() []textSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]textSend(nil), f.sends...)
}

type fakeEmailSender struct {
	unavailable bool
	sendFn      func(ctx context.Context, msg provider.EmailMessage) (*provider.ProviderResponse, error)

	mu    sync.Mutex
	sends []provider.EmailMessage
}

func (f *fakeEmailSender) Available() bool {
	return !f.unavailable
}

func (f *fakeEmailSender) SendEmail(ctx context.Context, msg provider.EmailMessage) (*provider.ProviderResponse, error) {
	f.mu.Lock()
	f.sends = append(f.sends, msg)
	f.mu.Unlock()

	if f.sendFn != nil {
		return f.sendFn(ctx, msg)
	}
	return &provider.ProviderResponse{StatusCode: 200, MessageID: "email-" + msg.To}, nil
}

func (f *fakeEmailSender) calls() []provider.EmailMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.EmailMessage(nil), f.sends...)
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, channel string) (bool, error)
	waitFn  func(ctx context.Context, channel string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, channel string) (bool, error) {
	if f.allowFn != nil {
		return f.allowFn(ctx, channel)
	}
	return true, nil
}

func (f *fakeRateLimiter) Wait(ctx context.Context, channel string) error {
	if f.waitFn != nil {
		return f.waitFn(ctx, channel)
	}
	return nil
}

var _ ratelimit.RateLimiter = (*fakeRateLimiter)(nil)

type fakeAttemptRecorder struct {
	createBatchFn func(ctx context.Context, attempts []*domain.DeliveryAttempt) error
}

func (f *fakeAttemptRecorder) CreateBatch(ctx context.Context, attempts []*domain.DeliveryAttempt) error {
	if f.createBatchFn != nil {
		return f.createBatchFn(ctx, attempts)
	}
	return nil
}

type fakeCallRepo struct {
	createFn          func(ctx context.Context, c *domain.EmergencyCall) error
	getByIDFn         func(ctx context.Context, id string) (*domain.EmergencyCall, error)
	listFn            func(ctx context.Context, params repository.CallListParams) ([]domain.EmergencyCall, int64, error)
	urgencyStatsFn    func(ctx context.Context, userID *string) ([]repository.UrgencyCount, error)
	updateStatusFn    func(ctx context.Context, id string, status domain.CallStatus) error
	setAlertSummaryFn func(ctx context.Context, id string, summary *domain.DispatchResult) error
	claimAlertsFn     func(ctx context.Context, id string, at time.Time) (bool, error)
	releaseClaimFn    func(ctx context.Context, id string) error
	listUnalertedFn   func(ctx context.Context, createdAfter time.Time, createdBefore time.Time, limit int) ([]domain.EmergencyCall, error)
}

func (f *fakeCallRepo) Create(ctx context.Context, c *domain.EmergencyCall) error {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return nil
}

func (f *fakeCallRepo) GetByID(ctx context.Context, id string) (*domain.EmergencyCall, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCallRepo) List(ctx context.Context, params repository.CallListParams) ([]domain.EmergencyCall, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, 0, nil
}

func (f *fakeCallRepo) UrgencyStats(ctx context.Context, userID *string) ([]repository.UrgencyCount, error) {
	if f.urgencyStatsFn != nil {
		return f.urgencyStatsFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeCallRepo) UpdateStatus(ctx context.Context, id string, status domain.CallStatus) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (f *fakeCallRepo) SetAlertSummary(ctx context.Context, id string, summary *domain.DispatchResult) error {
	if f.setAlertSummaryFn != nil {
		return f.setAlertSummaryFn(ctx, id, summary)
	}
	return nil
}

func (f *fakeCallRepo) ClaimAlerts(ctx context.Context, id string, at time.Time) (bool, error) {
	if f.claimAlertsFn != nil {
		return f.claimAlertsFn(ctx, id, at)
	}
	return true, nil
}

func (f *fakeCallRepo) ReleaseAlertClaim(ctx context.Context, id string) error {
	if f.releaseClaimFn != nil {
		return f.releaseClaimFn(ctx, id)
	}
	return nil
}

func (f *fakeCallRepo) ListUnalerted(
	ctx context.Context,
	createdAfter time.Time,
	createdBefore time.Time,
	limit int,
) ([]domain.EmergencyCall, error) {
	if f.listUnalertedFn != nil {
		return f.listUnalertedFn(ctx, createdAfter, createdBefore, limit)
	}
	return nil, nil
}

var _ repository.CallRepository = (*fakeCallRepo)(nil)

type fakeRoleRepo struct {
	getRoleFn    func(ctx context.Context, userID string) (domain.Role, error)
	grantFn      func(ctx context.Context, g *domain.RoleGrant) error
	listGrantsFn func(ctx context.Context, targetID string) ([]domain.RoleGrant, error)
}

func (f *fakeRoleRepo) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	if f.getRoleFn != nil {
		return f.getRoleFn(ctx, userID)
	}
	return domain.RoleUser, nil
}

func (f *fakeRoleRepo) Grant(ctx context.Context, g *domain.RoleGrant) error {
	if f.grantFn != nil {
		return f.grantFn(ctx, g)
	}
	return nil
}

func (f *fakeRoleRepo) ListGrants(ctx context.Context, targetID string) ([]domain.RoleGrant, error) {
	if f.listGrantsFn != nil {
		return f.listGrantsFn(ctx, targetID)
	}
	return nil, nil
}

var _ repository.RoleRepository = (*fakeRoleRepo)(nil)

type fakePublisher struct {
	publishFn func(ctx context.Context, queueName string, msg queue.AlertMessage) error
	closeFn   func() error
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, msg queue.AlertMessage) error {
	if f.publishFn != nil {
		return f.publishFn(ctx, queueName, msg)
	}
	return nil
}

func (f *fakePublisher) Close() error {
	if f.closeFn != nil {
		return f.closeFn()
	}
	return nil
}

type fakeConsumer struct {
	consumeFn func(ctx context.Context, queue string, handler queue.MessageHandler) error
	closeFn   func() error
}

func (f *fakeConsumer) Consume(ctx context.Context, queueName string, handler queue.MessageHandler) error {
	if f.consumeFn != nil {
		return f.consumeFn(ctx, queueName, handler)
	}
	return nil
}

func (f *fakeConsumer) Close() error {
	if f.closeFn != nil {
		return f.closeFn()
	}
	return nil
}

type fakeAlertDispatcher struct {
	dispatchFn func(ctx context.Context, callerID string, details *domain.CallDetails) (*domain.DispatchResult, error)
}

func (f *fakeAlertDispatcher) Dispatch(ctx context.Context, callerID string, details *domain.CallDetails) (*domain.DispatchResult, error) {
	if f.dispatchFn != nil {
		return f.dispatchFn(ctx, callerID, details)
	}
	return &domain.DispatchResult{}, nil
}

func strPtr(s string) *string {
	return &s
}
