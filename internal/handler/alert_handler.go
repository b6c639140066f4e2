package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/emergency-alerts/internal/domain"
)

type AlertDispatcher interface {
	Dispatch(ctx context.Context, callerID string, details *domain.CallDetails) (*domain.DispatchResult, error)
}

type AlertHandler struct {
	dispatcher AlertDispatcher
}

func NewAlertHandler(dispatcher AlertDispatcher) (*AlertHandler, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("alert dispatcher is required")
	}
	return &AlertHandler{dispatcher: dispatcher}, nil
}

func RegisterAlertRoutes(router fiber.Router, dispatcher AlertDispatcher) error {
	h, err := NewAlertHandler(dispatcher)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/alerts/dispatch", h.DispatchAlerts)

	return nil
}

type dispatchAlertsRequest struct {
	CallerID    string              `json:"callerId"`
	CallDetails *callDetailsRequest `json:"callDetails"`
}

type callDetailsRequest struct {
	Transcript   string     `json:"transcript"`
	Urgency      string     `json:"urgency"`
	Location     *string    `json:"location"`
	IncidentType *string    `json:"incidentType"`
	CreatedAt    *time.Time `json:"createdAt"`
}

type dispatchAlertsResponse struct {
	Success bool                   `json:"success"`
	Results *domain.DispatchResult `json:"results"`
}

// DispatchAlerts alerts every contact of the caller and reports per-channel counts.
// Channel failures are part of the results, not an error response.
func (h *AlertHandler) DispatchAlerts(c *fiber.Ctx) error {
	var req dispatchAlertsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	callerID := strings.TrimSpace(req.CallerID)
	if callerID == "" {
		return toHTTPError(fmt.Errorf("%w: callerId is required", domain.ErrValidation))
	}
	if req.CallDetails == nil {
		return toHTTPError(fmt.Errorf("%w: callDetails is required", domain.ErrValidation))
	}

	details, err := req.CallDetails.toDomain()
	if err != nil {
		return toHTTPError(err)
	}

	result, err := h.dispatcher.Dispatch(requestContext(c), callerID, details)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(dispatchAlertsResponse{
		Success: true,
		Results: result,
	})
}

func (r callDetailsRequest) toDomain() (*domain.CallDetails, error) {
	urgency, err := domain.ParseUrgencyFromString(r.Urgency)
	if err != nil {
		return nil, err
	}

	details := &domain.CallDetails{
		Transcript:   strings.TrimSpace(r.Transcript),
		Urgency:      urgency,
		Location:     r.Location,
		IncidentType: r.IncidentType,
	}
	if r.CreatedAt != nil {
		details.CreatedAt = *r.CreatedAt
	}
	return details, nil
}
