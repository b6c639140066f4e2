package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"github.com/kursadbilgin/emergency-alerts/internal/repository"
	"github.com/kursadbilgin/emergency-alerts/internal/service"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100
)

type CallService interface {
	Create(ctx context.Context, call *domain.EmergencyCall) (*domain.EmergencyCall, bool, error)
	GetByID(ctx context.Context, id string) (*domain.EmergencyCall, error)
	List(ctx context.Context, params repository.CallListParams) ([]domain.EmergencyCall, int64, error)
	Stats(ctx context.Context, userID *string) (*service.CallStats, error)
	UpdateStatus(ctx context.Context, id string, status domain.CallStatus) error
	ListDeliveries(ctx context.Context, callID string) ([]domain.DeliveryAttempt, error)
}

type CallHandler struct {
	service CallService
}

func NewCallHandler(service CallService) (*CallHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("call service is required")
	}
	return &CallHandler{service: service}, nil
}

func RegisterCallRoutes(router fiber.Router, service CallService) error {
	h, err := NewCallHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/calls", h.CreateCall)
	v1.Get("/calls", h.ListCalls)
	v1.Get("/calls/stats", h.GetStats)
	v1.Get("/calls/:id", h.GetCall)
	v1.Patch("/calls/:id/status", h.UpdateStatus)
	v1.Get("/calls/:id/deliveries", h.ListDeliveries)

	return nil
}

type createCallRequest struct {
	RecipientID   *string `json:"recipientId"`
	Transcript    string  `json:"transcript"`
	Urgency       string  `json:"urgency"`
	Sentiment     string  `json:"sentiment"`
	EmotionalTone string  `json:"emotionalTone"`
	IncidentType  *string `json:"incidentType"`
	Location      *string `json:"location"`
	Keywords      string  `json:"keywords"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type callResponse struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"userId"`
	RecipientID    *string                `json:"recipientId,omitempty"`
	Transcript     string                 `json:"transcript"`
	Urgency        string                 `json:"urgency"`
	Sentiment      string                 `json:"sentiment"`
	SentimentScore float64                `json:"sentimentScore"`
	EmotionalTone  string                 `json:"emotionalTone,omitempty"`
	IncidentType   *string                `json:"incidentType,omitempty"`
	Location       *string                `json:"location,omitempty"`
	Keywords       []string               `json:"keywords"`
	Status         string                 `json:"status"`
	AlertSummary   *domain.DispatchResult `json:"alertSummary,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

type createCallResponse struct {
	Call         callResponse `json:"call"`
	AlertsQueued bool         `json:"alertsQueued"`
}

type listCallsResponse struct {
	Data []callResponse `json:"data"`
	Meta listMeta       `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type deliveryResponse struct {
	ID                string    `json:"id"`
	ContactID         string    `json:"contactId"`
	Channel           string    `json:"channel"`
	Success           bool      `json:"success"`
	ProviderMessageID *string   `json:"providerMessageId,omitempty"`
	StatusCode        *int      `json:"statusCode,omitempty"`
	Error             *string   `json:"error,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (h *CallHandler) CreateCall(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req createCallRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	call, err := req.toDomain(userID)
	if err != nil {
		return toHTTPError(err)
	}

	created, queued, err := h.service.Create(requestContext(c), call)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(createCallResponse{
		Call:         toCallResponse(created),
		AlertsQueued: queued,
	})
}

func (h *CallHandler) GetCall(c *fiber.Ctx) error {
	call, err := h.service.GetByID(requestContext(c), strings.TrimSpace(c.Params("id")))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toCallResponse(call))
}

func (h *CallHandler) ListCalls(c *fiber.Ctx) error {
	params, err := parseCallListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	calls, total, err := h.service.List(requestContext(c), params)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]callResponse, 0, len(calls))
	for i := range calls {
		data = append(data, toCallResponse(&calls[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listCallsResponse{
		Data: data,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *CallHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(requestContext(c), optionalQuery(c, "userId"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *CallHandler) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	status, err := domain.ParseCallStatusFromString(req.Status)
	if err != nil {
		return toHTTPError(err)
	}

	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.UpdateStatus(requestContext(c), id, status); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"callId": id,
		"status": status.String(),
	})
}

func (h *CallHandler) ListDeliveries(c *fiber.Ctx) error {
	attempts, err := h.service.ListDeliveries(requestContext(c), strings.TrimSpace(c.Params("id")))
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]deliveryResponse, 0, len(attempts))
	for _, a := range attempts {
		data = append(data, deliveryResponse{
			ID:                a.ID,
			ContactID:         a.ContactID,
			Channel:           a.Channel.String(),
			Success:           a.Success,
			ProviderMessageID: a.ProviderMessageID,
			StatusCode:        a.StatusCode,
			Error:             a.Error,
			CreatedAt:         a.CreatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": data})
}

func parseCallListParams(c *fiber.Ctx) (repository.CallListParams, error) {
	params := repository.CallListParams{
		UserID:       optionalQuery(c, "userId"),
		IncidentType: optionalQuery(c, "incidentType"),
		Page:         c.QueryInt("page", defaultPage),
		PageSize:     c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.CallListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.CallListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if raw := strings.TrimSpace(c.Query("urgency")); raw != "" {
		urgency, err := domain.ParseUrgencyFromString(raw)
		if err != nil {
			return repository.CallListParams{}, err
		}
		params.Urgency = &urgency
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := domain.ParseCallStatusFromString(raw)
		if err != nil {
			return repository.CallListParams{}, err
		}
		params.Status = &status
	}

	from, err := parseRFC3339Query(c.Query("from"), "from")
	if err != nil {
		return repository.CallListParams{}, err
	}
	to, err := parseRFC3339Query(c.Query("to"), "to")
	if err != nil {
		return repository.CallListParams{}, err
	}
	params.From = from
	params.To = to

	return params, nil
}

func (r createCallRequest) toDomain(userID string) (*domain.EmergencyCall, error) {
	urgency, err := domain.ParseUrgencyFromString(r.Urgency)
	if err != nil {
		return nil, err
	}
	sentiment, err := domain.ParseSentimentFromString(r.Sentiment)
	if err != nil {
		return nil, err
	}

	return &domain.EmergencyCall{
		UserID:        userID,
		RecipientID:   r.RecipientID,
		Transcript:    strings.TrimSpace(r.Transcript),
		Urgency:       urgency,
		Sentiment:     sentiment,
		EmotionalTone: strings.TrimSpace(r.EmotionalTone),
		IncidentType:  r.IncidentType,
		Location:      r.Location,
		Keywords:      domain.ParseKeywords(r.Keywords),
	}, nil
}

func toCallResponse(call *domain.EmergencyCall) callResponse {
	if call == nil {
		return callResponse{}
	}

	keywords := call.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return callResponse{
		ID:             call.ID,
		UserID:         call.UserID,
		RecipientID:    call.RecipientID,
		Transcript:     call.Transcript,
		Urgency:        call.Urgency.String(),
		Sentiment:      call.Sentiment.String(),
		SentimentScore: call.SentimentScore,
		EmotionalTone:  call.EmotionalTone,
		IncidentType:   call.IncidentType,
		Location:       call.Location,
		Keywords:       keywords,
		Status:         call.Status.String(),
		AlertSummary:   call.AlertSummary,
		CreatedAt:      call.CreatedAt,
		UpdatedAt:      call.UpdatedAt,
	}
}
