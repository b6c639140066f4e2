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

type ContactService struct {
	contacts repository.ContactRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewContactService(contacts repository.ContactRepository, logger *zap.Logger) (*ContactService, error) {
	if contacts == nil {
		return nil, fmt.Errorf("contact repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ContactService{
		contacts: contacts,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *ContactService) List(ctx context.Context, userID string) ([]domain.Contact, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.contacts.ListByUser(ctx, userID)
}

// Create stores a new contact. A primary contact demotes the caller's previous primary.
func (s *ContactService) Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	if contact == nil {
		return nil, fmt.Errorf("%w: contact is required", domain.ErrValidation)
	}

	contact.UserID = strings.TrimSpace(contact.UserID)
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Phone = strings.TrimSpace(contact.Phone)
	if contact.Email != nil {
		email := strings.TrimSpace(*contact.Email)
		if email == "" {
			contact.Email = nil
		} else {
			contact.Email = &email
		}
	}
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	contact.ID = uuid.NewString()
	contact.CreatedAt = s.now().UTC()

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	s.logger.Info("emergency contact created",
		zap.String("userId", contact.UserID),
		zap.String("contactId", contact.ID),
		zap.Bool("isPrimary", contact.IsPrimary),
	)
	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, userID string, id string) error {
	userID, id, err := contactKey(userID, id)
	if err != nil {
		return err
	}
	return s.contacts.Delete(ctx, userID, id)
}

func (s *ContactService) SetPrimary(ctx context.Context, userID string, id string) error {
	userID, id, err := contactKey(userID, id)
	if err != nil {
		return err
	}
	return s.contacts.SetPrimary(ctx, userID, id)
}

func contactKey(userID string, id string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	id = strings.TrimSpace(id)
	if userID == "" {
		return "", "", fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if id == "" {
		return "", "", fmt.Errorf("%w: contact id is required", domain.ErrValidation)
	}
	return userID, id, nil
}
