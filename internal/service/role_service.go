package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"github.com/kursadbilgin/emergency-alerts/internal/repository"
	"go.uber.org/zap"
)

// BootstrapActorID is recorded as the actor of grants made at startup.
const BootstrapActorID = "system:bootstrap"

type RoleService struct {
	roles  repository.RoleRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewRoleService(roles repository.RoleRepository, logger *zap.Logger) (*RoleService, error) {
	if roles == nil {
		return nil, fmt.Errorf("role repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RoleService{
		roles:  roles,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *RoleService) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.roles.GetRole(ctx, userID)
}

// Grant assigns role to target. Only admins may grant roles.
func (s *RoleService) Grant(ctx context.Context, actorID string, targetID string, role domain.Role) (*domain.RoleGrant, error) {
	actorID = strings.TrimSpace(actorID)
	targetID = strings.TrimSpace(targetID)
	if actorID == "" {
		return nil, fmt.Errorf("%w: actor id is required", domain.ErrValidation)
	}
	if targetID == "" {
		return nil, fmt.Errorf("%w: target user id is required", domain.ErrValidation)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, role)
	}

	actorRole, err := s.roles.GetRole(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actorRole != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can grant roles", domain.ErrForbidden)
	}

	grant, err := s.grant(ctx, actorID, targetID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("role granted",
		zap.String("actorId", actorID),
		zap.String("targetId", targetID),
		zap.String("role", role.String()),
	)
	return grant, nil
}

func (s *RoleService) ListGrants(ctx context.Context, targetID string) ([]domain.RoleGrant, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, fmt.Errorf("%w: target user id is required", domain.ErrValidation)
	}
	return s.roles.ListGrants(ctx, targetID)
}

// Bootstrap makes every listed user an admin. Users that already are admins are left untouched.
func (s *RoleService) Bootstrap(ctx context.Context, adminIDs []string) error {
	for _, raw := range adminIDs {
		userID := strings.TrimSpace(raw)
		if userID == "" {
			continue
		}

		current, err := s.roles.GetRole(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to read role for %s: %w", userID, err)
		}
		if current == domain.RoleAdmin {
			continue
		}

		if _, err := s.grant(ctx, BootstrapActorID, userID, domain.RoleAdmin); err != nil {
			return fmt.Errorf("failed to bootstrap admin %s: %w", userID, err)
		}
		s.logger.Info("bootstrap admin granted", zap.String("userId", userID))
	}
	return nil
}

func (s *RoleService) grant(ctx context.Context, actorID string, targetID string, role domain.Role) (*domain.RoleGrant, error) {
	grant := &domain.RoleGrant{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		TargetID:  targetID,
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.roles.Grant(ctx, grant); err != nil {
		return nil, err
	}
	return grant, nil
}
