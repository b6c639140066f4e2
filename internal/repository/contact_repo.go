package repository

import (
	"context"
	"errors"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"gorm.io/gorm"
)

type ContactRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Contact, error)
	Create(ctx context.Context, c *domain.Contact) error
	Delete(ctx context.Context, userID string, id string) error
	SetPrimary(ctx context.Context, userID string, id string) error
}

type GormContactRepo struct {
	db *gorm.DB
}

func NewGormContactRepo(db *gorm.DB) *GormContactRepo {
	return &GormContactRepo{db: db}
}

// ListByUser returns the caller's contacts, primary first then oldest first.
func (r *GormContactRepo) ListByUser(ctx context.Context, userID string) ([]domain.Contact, error) {
	var models []ContactModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary DESC").
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	contacts := make([]domain.Contact, 0, len(models))
	for i := range models {
		contacts = append(contacts, *contactModelToDomain(&models[i]))
	}
	return contacts, nil
}

func (r *GormContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	model := contactModelFromDomain(c)
	if model == nil {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if model.IsPrimary {
			if err := demotePrimary(tx, model.UserID); err != nil {
				return err
			}
		}
		return tx.Create(model).Error
	})
	if err != nil {
		return err
	}

	*c = *contactModelToDomain(model)
	return nil
}

func (r *GormContactRepo) Delete(ctx context.Context, userID string, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&ContactModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormContactRepo) SetPrimary(ctx context.Context, userID string, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ContactModel
		err := tx.Where("id = ? AND user_id = ?", id, userID).First(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := demotePrimary(tx, userID); err != nil {
			return err
		}
		return tx.Model(&ContactModel{}).
			Where("id = ?", id).
			Update("is_primary", true).Error
	})
}

func demotePrimary(tx *gorm.DB, userID string) error {
	return tx.Model(&ContactModel{}).
		Where("user_id = ? AND is_primary = ?", userID, true).
		Update("is_primary", false).Error
}
