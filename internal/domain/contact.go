package domain

import (
	"fmt"
	"strings"
	"time"
)

// Contact is a person registered to receive a caller's emergency alerts.
type Contact struct {
	ID            string
	UserID        string
	ContactUserID *string
	Name          string
	Phone         string
	Email         *string
	IsPrimary     bool
	CreatedAt     time.Time
}

// HasEmail reports whether the contact is eligible for the email channel.
func (c Contact) HasEmail() bool {
	return c.Email != nil && strings.TrimSpace(*c.Email) != ""
}

func (c *Contact) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: contact name is required", ErrValidation)
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("%w: contact phone is required", ErrValidation)
	}
	return nil
}
