package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"github.com/kursadbilgin/emergency-alerts/internal/observability"
)

// HeaderUserID carries the authenticated portal user, set by the gateway.
const HeaderUserID = "X-User-ID"

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrContactsStore):
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	default:
		return err
	}
}

func requestCorrelationID(c *fiber.Ctx) string {
	if value := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); value != "" {
		return value
	}
	if value, ok := c.Locals("requestid").(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// requestContext returns the request context enriched with the correlation id.
func requestContext(c *fiber.Ctx) context.Context {
	return observability.WithCorrelationID(c.UserContext(), requestCorrelationID(c))
}

func requestUserID(c *fiber.Ctx) (string, error) {
	userID := strings.TrimSpace(c.Get(HeaderUserID))
	if userID == "" {
		return "", fmt.Errorf("%w: %s header is required", domain.ErrValidation, HeaderUserID)
	}
	return userID, nil
}

func parseRFC3339Query(value string, field string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339", domain.ErrValidation, field)
	}
	return &t, nil
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	return &value
}
