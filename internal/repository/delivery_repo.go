package repository

import (
	"context"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"gorm.io/gorm"
)

type DeliveryRepository interface {
	CreateBatch(ctx context.Context, attempts []*domain.DeliveryAttempt) error
	ListByCall(ctx context.Context, callID string) ([]domain.DeliveryAttempt, error)
}

type GormDeliveryRepo struct {
	db *gorm.DB
}

func NewGormDeliveryRepo(db *gorm.DB) *GormDeliveryRepo {
	return &GormDeliveryRepo{db: db}
}

func (r *GormDeliveryRepo) CreateBatch(ctx context.Context, attempts []*domain.DeliveryAttempt) error {
	models := make([]DeliveryAttemptModel, 0, len(attempts))
	for _, a := range attempts {
		if model := deliveryModelFromDomain(a); model != nil {
			models = append(models, *model)
		}
	}
	if len(models) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).CreateInBatches(&models, 100).Error
}

func (r *GormDeliveryRepo) ListByCall(ctx context.Context, callID string) ([]domain.DeliveryAttempt, error) {
	var models []DeliveryAttemptModel
	err := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	attempts := make([]domain.DeliveryAttempt, 0, len(models))
	for i := range models {
		attempts = append(attempts, *deliveryModelToDomain(&models[i]))
	}
	return attempts, nil
}
