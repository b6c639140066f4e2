package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/emergency-alerts/internal/domain"
)

type RoleService interface {
	GetRole(ctx context.Context, userID string) (domain.Role, error)
	Grant(ctx context.Context, actorID string, targetID string, role domain.Role) (*domain.RoleGrant, error)
	ListGrants(ctx context.Context, targetID string) ([]domain.RoleGrant, error)
}

type RoleHandler struct {
	service RoleService
}

func NewRoleHandler(service RoleService) (*RoleHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("role service is required")
	}
	return &RoleHandler{service: service}, nil
}

func RegisterRoleRoutes(router fiber.Router, service RoleService) error {
	h, err := NewRoleHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/users/:userId/role", h.GetRole)
	v1.Get("/users/:userId/role/grants", h.ListGrants)
	v1.Post("/roles/grants", h.Grant)

	return nil
}

type grantRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type roleGrantResponse struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actorId"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *RoleHandler) GetRole(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Params("userId"))
	role, err := h.service.GetRole(requestContext(c), userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"userId": userID,
		"role":   role.String(),
	})
}

func (h *RoleHandler) ListGrants(c *fiber.Ctx) error {
	grants, err := h.service.ListGrants(requestContext(c), c.Params("userId"))
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]roleGrantResponse, 0, len(grants))
	for i := range grants {
		data = append(data, toRoleGrantResponse(&grants[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": data})
}

// Grant assigns a role on behalf of the calling user, who must be an admin.
func (h *RoleHandler) Grant(c *fiber.Ctx) error {
	actorID, err := requestUserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req grantRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	role, err := domain.ParseRoleFromString(req.Role)
	if err != nil {
		return toHTTPError(err)
	}

	grant, err := h.service.Grant(requestContext(c), actorID, req.UserID, role)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toRoleGrantResponse(grant))
}

func toRoleGrantResponse(g *domain.RoleGrant) roleGrantResponse {
	if g == nil {
		return roleGrantResponse{}
	}

	return roleGrantResponse{
		ID:        g.ID,
		ActorID:   g.ActorID,
		UserID:    g.TargetID,
		Role:      g.Role.String(),
		CreatedAt: g.CreatedAt,
	}
}
