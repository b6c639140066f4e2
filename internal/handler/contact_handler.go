package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/emergency-alerts/internal/domain"
)

type ContactService interface {
	List(ctx context.Context, userID string) ([]domain.Contact, error)
	Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
	Delete(ctx context.Context, userID string, id string) error
	SetPrimary(ctx context.Context, userID string, id string) error
}

type ContactHandler struct {
	service ContactService
}

func NewContactHandler(service ContactService) (*ContactHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("contact service is required")
	}
	return &ContactHandler{service: service}, nil
}

func RegisterContactRoutes(router fiber.Router, service ContactService) error {
	h, err := NewContactHandler(service)
	if err != nil {
		return err
	}

	users := router.Group("/v1/users/:userId")
	users.Get("/contacts", h.ListContacts)
	users.Post("/contacts", h.CreateContact)
	users.Delete("/contacts/:id", h.DeleteContact)
	users.Post("/contacts/:id/primary", h.SetPrimary)

	return nil
}

type createContactRequest struct {
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Email         *string `json:"email"`
	IsPrimary     bool    `json:"isPrimary"`
	ContactUserID *string `json:"contactUserId"`
}

type contactResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	ContactUserID *string   `json:"contactUserId,omitempty"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         *string   `json:"email"`
	IsPrimary     bool      `json:"isPrimary"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (h *ContactHandler) ListContacts(c *fiber.Ctx) error {
	contacts, err := h.service.List(requestContext(c), c.Params("userId"))
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]contactResponse, 0, len(contacts))
	for i := range contacts {
		data = append(data, toContactResponse(&contacts[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": data})
}

func (h *ContactHandler) CreateContact(c *fiber.Ctx) error {
	var req createContactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(requestContext(c), &domain.Contact{
		UserID:        strings.TrimSpace(c.Params("userId")),
		ContactUserID: req.ContactUserID,
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		IsPrimary:     req.IsPrimary,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toContactResponse(created))
}

func (h *ContactHandler) DeleteContact(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("userId"), c.Params("id")); err != nil {
		return toHTTPError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ContactHandler) SetPrimary(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Params("userId"))
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.SetPrimary(requestContext(c), userID, id); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"contactId": id,
		"isPrimary": true,
	})
}

func toContactResponse(contact *domain.Contact) contactResponse {
	if contact == nil {
		return contactResponse{}
	}

	return contactResponse{
		ID:            contact.ID,
		UserID:        contact.UserID,
		ContactUserID: contact.ContactUserID,
		Name:          contact.Name,
		Phone:         contact.Phone,
		Email:         contact.Email,
		IsPrimary:     contact.IsPrimary,
		CreatedAt:     contact.CreatedAt,
	}
}
