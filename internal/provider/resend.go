package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

var _ EmailSender = (*ResendProvider)(nil)

// ResendConfig holds the Resend API credentials.
type ResendConfig struct {
	BaseURL string
	APIKey  string
	From    string
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendEmailResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ResendProvider sends HTML email through the Resend API.
type ResendProvider struct {
	client *resty.Client
	cfg    ResendConfig
}

func NewResendProvider(cfg ResendConfig) (*ResendProvider, error) {
	return NewResendProviderWithClient(cfg, nil)
}

func NewResendProviderWithClient(cfg ResendConfig, client *resty.Client) (*ResendProvider, error) {
	restyClient, err := newRestyClient(cfg.BaseURL, client)
	if err != nil {
		return nil, err
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.From = strings.TrimSpace(cfg.From)
	if cfg.From == "" {
		return nil, fmt.Errorf("email sender address is required")
	}

	return &ResendProvider{
		client: restyClient,
		cfg:    cfg,
	}, nil
}

func (p *ResendProvider) Available() bool {
	return p != nil && p.client != nil && p.cfg.APIKey != ""
}

func (p *ResendProvider) SendEmail(ctx context.Context, msg EmailMessage) (*ProviderResponse, error) {
	if !p.Available() {
		return nil, fmt.Errorf("resend email: %w", ErrUnavailable)
	}
	if strings.TrimSpace(msg.To) == "" {
		return nil, fmt.Errorf("email recipient is required")
	}

	var result resendEmailResponse
	var apiErr resendErrorResponse

	response, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(resendEmailRequest{
			From:    p.cfg.From,
			To:      []string{strings.TrimSpace(msg.To)},
			Subject: msg.Subject,
			HTML:    msg.HTML,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return nil, requestError(err)
	}
	if response == nil || !isSuccessStatus(response.StatusCode()) {
		detail := ""
		if apiErr.Message != "" {
			detail = fmt.Sprintf("%s: %s", apiErr.Name, apiErr.Message)
		}
		return nil, responseError(response, detail)
	}

	return &ProviderResponse{
		StatusCode: response.StatusCode(),
		Body:       strings.TrimSpace(response.String()),
		MessageID:  result.ID,
	}, nil
}
