package domain

import (
	"fmt"
	"strings"
	"time"
)

// Urgency is the severity reported for an emergency call.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

func (u Urgency) String() string { return string(u) }

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

func ParseUrgencyFromString(s string) (Urgency, error) {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", fmt.Errorf("%w: invalid urgency %q", ErrValidation, s)
	}
	return u, nil
}

// Urgencies returns all urgency levels from lowest to highest severity.
func Urgencies() []Urgency {
	return []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}
}

// Sentiment is the caller-reported tone of a call.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func (s Sentiment) String() string { return string(s) }

func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

func ParseSentimentFromString(s string) (Sentiment, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return SentimentNeutral, nil
	}
	st := Sentiment(trimmed)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid sentiment %q", ErrValidation, s)
	}
	return st, nil
}

// Score maps a sentiment to the fixed score shown on the dashboard.
func (s Sentiment) Score() float64 {
	switch s {
	case SentimentPositive:
		return 0.7
	case SentimentNegative:
		return -0.7
	default:
		return 0
	}
}

// CallStatus is the handling state of a recorded call.
type CallStatus string

const (
	CallStatusPending      CallStatus = "pending"
	CallStatusAcknowledged CallStatus = "acknowledged"
	CallStatusResolved     CallStatus = "resolved"
)

func (s CallStatus) String() string { return string(s) }

func (s CallStatus) IsValid() bool {
	switch s {
	case CallStatusPending, CallStatusAcknowledged, CallStatusResolved:
		return true
	}
	return false
}

func ParseCallStatusFromString(s string) (CallStatus, error) {
	st := CallStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid call status %q", ErrValidation, s)
	}
	return st, nil
}

// CallDetails is the payload describing a call for alert fan-out.
type CallDetails struct {
	// CallID links delivery attempts to a stored call. Optional.
	CallID       string
	Transcript   string
	Urgency      Urgency
	Location     *string
	IncidentType *string
	CreatedAt    time.Time
}

func (d *CallDetails) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: call details are required", ErrValidation)
	}
	if strings.TrimSpace(d.Transcript) == "" {
		return fmt.Errorf("%w: transcript is required", ErrValidation)
	}
	if !d.Urgency.IsValid() {
		return fmt.Errorf("%w: invalid urgency %q", ErrValidation, d.Urgency)
	}
	return nil
}

// EmergencyCall is a recorded emergency call.
type EmergencyCall struct {
	ID             string
	UserID         string
	RecipientID    *string
	Transcript     string
	Urgency        Urgency
	Sentiment      Sentiment
	SentimentScore float64
	EmotionalTone  string
	IncidentType   *string
	Location       *string
	Keywords       []string
	Status         CallStatus
	AlertSummary   *DispatchResult
	// AlertClaimedAt is set once a worker takes the call for dispatch.
	AlertClaimedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (c *EmergencyCall) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	details := c.Details()
	if err := details.Validate(); err != nil {
		return err
	}
	if !c.Sentiment.IsValid() {
		return fmt.Errorf("%w: invalid sentiment %q", ErrValidation, c.Sentiment)
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("%w: invalid call status %q", ErrValidation, c.Status)
	}
	return nil
}

// Details returns the alert payload for the call.
func (c *EmergencyCall) Details() CallDetails {
	return CallDetails{
		CallID:       c.ID,
		Transcript:   c.Transcript,
		Urgency:      c.Urgency,
		Location:     c.Location,
		IncidentType: c.IncidentType,
		CreatedAt:    c.CreatedAt,
	}
}

// ParseKeywords splits a comma separated keyword list, dropping blanks.
func ParseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if k := strings.TrimSpace(part); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return nil
	}
	return keywords
}
