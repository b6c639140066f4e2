package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type CallListParams struct {
	UserID       *string
	Urgency      *domain.Urgency
	Status       *domain.CallStatus
	IncidentType *string
	From         *time.Time
	To           *time.Time
	Page         int
	PageSize     int
}

// Normalize clamps paging to the supported window.
func (p CallListParams) Normalize() CallListParams {
	p.Page = max(p.Page, 1)
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	p.PageSize = min(p.PageSize, maxPageSize)
	return p
}

type UrgencyCount struct {
	Urgency domain.Urgency `gorm:"column:urgency" json:"urgency"`
	Count   int64          `gorm:"column:count" json:"count"`
}

type CallRepository interface {
	Create(ctx context.Context, c *domain.EmergencyCall) error
	GetByID(ctx context.Context, id string) (*domain.EmergencyCall, error)
	List(ctx context.Context, params CallListParams) ([]domain.EmergencyCall, int64, error)
	UrgencyStats(ctx context.Context, userID *string) ([]UrgencyCount, error)
	UpdateStatus(ctx context.Context, id string, status domain.CallStatus) error
	SetAlertSummary(ctx context.Context, id string, summary *domain.DispatchResult) error
	ClaimAlerts(ctx context.Context, id string, at time.Time) (bool, error)
	ReleaseAlertClaim(ctx context.Context, id string) error
	ListUnalerted(ctx context.Context, createdAfter time.Time, createdBefore time.Time, limit int) ([]domain.EmergencyCall, error)
}

type GormCallRepo struct {
	db *gorm.DB
}

func NewGormCallRepo(db *gorm.DB) *GormCallRepo {
	return &GormCallRepo{db: db}
}

func (r *GormCallRepo) Create(ctx context.Context, c *domain.EmergencyCall) error {
	model := callModelFromDomain(c)
	if model == nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	*c = *callModelToDomain(model)
	return nil
}

func (r *GormCallRepo) GetByID(ctx context.Context, id string) (*domain.EmergencyCall, error) {
	var model EmergencyCallModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return callModelToDomain(&model), nil
}

func (r *GormCallRepo) List(ctx context.Context, params CallListParams) ([]domain.EmergencyCall, int64, error) {
	params = params.Normalize()
	query := r.db.WithContext(ctx).Model(&EmergencyCallModel{})

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Urgency != nil {
		query = query.Where("urgency = ?", *params.Urgency)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.IncidentType != nil {
		query = query.Where("incident_type = ?", *params.IncidentType)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at <= ?", *params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []EmergencyCallModel
	err := query.
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	calls := make([]domain.EmergencyCall, 0, len(models))
	for i := range models {
		calls = append(calls, *callModelToDomain(&models[i]))
	}
	return calls, total, nil
}

func (r *GormCallRepo) UrgencyStats(ctx context.Context, userID *string) ([]UrgencyCount, error) {
	query := r.db.WithContext(ctx).
		Model(&EmergencyCallModel{}).
		Select("urgency, COUNT(*) as count")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var counts []UrgencyCount
	if err := query.Group("urgency").Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *GormCallRepo) UpdateStatus(ctx context.Context, id string, status domain.CallStatus) error {
	result := r.db.WithContext(ctx).
		Model(&EmergencyCallModel{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormCallRepo) SetAlertSummary(ctx context.Context, id string, summary *domain.DispatchResult) error {
	result := r.db.WithContext(ctx).
		Model(&EmergencyCallModel{}).
		Where("id = ?", id).
		Select("alert_summary").
		Updates(&EmergencyCallModel{AlertSummary: summary})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimAlerts marks an unalerted call as taken for dispatch. It reports false when the call
// already has a summary or another worker holds the claim.
func (r *GormCallRepo) ClaimAlerts(ctx context.Context, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&EmergencyCallModel{}).
		Where("id = ? AND alert_summary IS NULL AND alert_claimed_at IS NULL", id).
		Update("alert_claimed_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseAlertClaim drops the claim on a call that still has no summary.
func (r *GormCallRepo) ReleaseAlertClaim(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&EmergencyCallModel{}).
		Where("id = ? AND alert_summary IS NULL", id).
		Update("alert_claimed_at", nil).Error
}

// ListUnalerted returns unclaimed calls in the window whose alerts were never dispatched, oldest first.
func (r *GormCallRepo) ListUnalerted(
	ctx context.Context,
	createdAfter time.Time,
	createdBefore time.Time,
	limit int,
) ([]domain.EmergencyCall, error) {
	var models []EmergencyCallModel
	err := r.db.WithContext(ctx).
		Where("alert_summary IS NULL AND alert_claimed_at IS NULL AND created_at > ? AND created_at <= ?", createdAfter, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	calls := make([]domain.EmergencyCall, 0, len(models))
	for i := range models {
		calls = append(calls, *callModelToDomain(&models[i]))
	}
	return calls, nil
}
