package provider

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when a provider has no credentials configured.
var ErrUnavailable = errors.New("provider is not configured")

// TextSender delivers plain-text messages to a phone number.
type TextSender interface {
	// Available reports whether the provider has the credentials it needs.
	Available() bool
	SendText(ctx context.Context, to string, body string) (*ProviderResponse, error)
}

// EmailSender delivers HTML email.
type EmailSender interface {
	Available() bool
	SendEmail(ctx context.Context, msg EmailMessage) (*ProviderResponse, error)
}

// EmailMessage is a single-recipient HTML email.
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
}

// ProviderResponse stores provider call metadata for audit and persistence.
type ProviderResponse struct {
	StatusCode int
	Body       string
	MessageID  string
}
