package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository interface {
	GetRole(ctx context.Context, userID string) (domain.Role, error)
	Grant(ctx context.Context, g *domain.RoleGrant) error
	ListGrants(ctx context.Context, targetID string) ([]domain.RoleGrant, error)
}

type GormRoleRepo struct {
	db *gorm.DB
}

func NewGormRoleRepo(db *gorm.DB) *GormRoleRepo {
	return &GormRoleRepo{db: db}
}

// GetRole returns the stored role, defaulting to RoleUser for unknown users.
func (r *GormRoleRepo) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	var model UserRoleModel
	err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RoleUser, nil
	}
	if err != nil {
		return "", err
	}
	return model.Role, nil
}

// Grant sets the target's role and appends the audit row in one transaction.
func (r *GormRoleRepo) Grant(ctx context.Context, g *domain.RoleGrant) error {
	grant := roleGrantModelFromDomain(g)
	if grant == nil {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current := UserRoleModel{
			UserID:    grant.TargetID,
			Role:      grant.Role,
			UpdatedAt: time.Now().UTC(),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).Create(&current).Error
		if err != nil {
			return err
		}
		return tx.Create(grant).Error
	})
	if err != nil {
		return err
	}

	*g = *roleGrantModelToDomain(grant)
	return nil
}

func (r *GormRoleRepo) ListGrants(ctx context.Context, targetID string) ([]domain.RoleGrant, error) {
	var models []RoleGrantModel
	err := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	grants := make([]domain.RoleGrant, 0, len(models))
	for i := range models {
		grants = append(grants, *roleGrantModelToDomain(&models[i]))
	}
	return grants, nil
}
