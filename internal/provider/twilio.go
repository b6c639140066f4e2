package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const whatsAppPrefix = "whatsapp:"

var _ TextSender = (*TwilioProvider)(nil)

// TwilioConfig holds the credentials for one Twilio sender number.
type TwilioConfig struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
	// WhatsApp routes the message through Twilio's WhatsApp transport.
	WhatsApp bool
}

func (c TwilioConfig) configured() bool {
	return strings.TrimSpace(c.AccountSID) != "" &&
		strings.TrimSpace(c.AuthToken) != "" &&
		strings.TrimSpace(c.From) != ""
}

type twilioMessageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TwilioProvider sends SMS or WhatsApp messages through the Twilio Messages API.
type TwilioProvider struct {
	client *resty.Client
	cfg    TwilioConfig
}

func NewTwilioProvider(cfg TwilioConfig) (*TwilioProvider, error) {
	return NewTwilioProviderWithClient(cfg, nil)
}

func NewTwilioProviderWithClient(cfg TwilioConfig, client *resty.Client) (*TwilioProvider, error) {
	restyClient, err := newRestyClient(cfg.BaseURL, client)
	if err != nil {
		return nil, err
	}

	cfg.AccountSID = strings.TrimSpace(cfg.AccountSID)
	cfg.AuthToken = strings.TrimSpace(cfg.AuthToken)
	cfg.From = strings.TrimSpace(cfg.From)

	return &TwilioProvider{
		client: restyClient,
		cfg:    cfg,
	}, nil
}

func (p *TwilioProvider) Available() bool {
	return p != nil && p.client != nil && p.cfg.configured()
}

// Channel returns "whatsapp" or "sms" depending on the configured transport.
func (p *TwilioProvider) Channel() string {
	if p != nil && p.cfg.WhatsApp {
		return "whatsapp"
	}
	return "sms"
}

func (p *TwilioProvider) SendText(ctx context.Context, to string, body string) (*ProviderResponse, error) {
	if !p.Available() {
		return nil, fmt.Errorf("twilio %s: %w", p.Channel(), ErrUnavailable)
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("message body is required")
	}

	from := p.cfg.From
	if p.cfg.WhatsApp {
		to = whatsAppPrefix + to
		from = whatsAppPrefix + from
	}

	var result twilioMessageResponse
	var apiErr twilioErrorResponse

	response, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.cfg.AccountSID, p.cfg.AuthToken).
		SetPathParam("accountSid", p.cfg.AccountSID).
		SetFormData(map[string]string{
			"To":   to,
			"From": from,
			"Body": body,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/2010-04-01/Accounts/{accountSid}/Messages.json")
	if err != nil {
		return nil, requestError(err)
	}
	if response == nil || !isSuccessStatus(response.StatusCode()) {
		detail := ""
		if apiErr.Message != "" {
			detail = fmt.Sprintf("twilio code %d: %s", apiErr.Code, apiErr.Message)
		}
		return nil, responseError(response, detail)
	}

	return &ProviderResponse{
		StatusCode: response.StatusCode(),
		Body:       strings.TrimSpace(response.String()),
		MessageID:  result.SID,
	}, nil
}
