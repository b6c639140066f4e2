package queue

import (
	"fmt"
	"strings"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
)

// AlertMessage asks a worker to alert the contacts of a stored call.
type AlertMessage struct {
	CallID        string         `json:"callId"`
	CallerID      string         `json:"callerId"`
	CorrelationID string         `json:"correlationId,omitempty"`
	Urgency       domain.Urgency `json:"urgency,omitempty"`
}

func (m AlertMessage) Validate() error {
	if strings.TrimSpace(m.CallID) == "" {
		return fmt.Errorf("callId is required")
	}
	if strings.TrimSpace(m.CallerID) == "" {
		return fmt.Errorf("callerId is required")
	}
	if m.Urgency != "" && !m.Urgency.IsValid() {
		return fmt.Errorf("invalid urgency %q", m.Urgency)
	}
	return nil
}
