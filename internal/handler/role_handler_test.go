package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/emergency-alerts/internal/domain"
)

type stubRoleService struct {
	getRoleFn    func(ctx context.Context, userID string) (domain.Role, error)
	grantFn      func(ctx context.Context, actorID string, targetID string, role domain.Role) (*domain.RoleGrant, error)
	listGrantsFn func(ctx context.Context, targetID string) ([]domain.RoleGrant, error)
}

func (s *stubRoleService) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	if s.getRoleFn != nil {
		return s.getRoleFn(ctx, userID)
	}
	return domain.RoleUser, nil
}

func (s *stubRoleService) Grant(ctx context.Context, actorID string, targetID string, role domain.Role) (*domain.RoleGrant, error) {
	if s.grantFn != nil {
		return s.grantFn(ctx, actorID, targetID, role)
	}
	return nil, fmt.Errorf("%w: not allowed", domain.ErrForbidden)
}

func (s *stubRoleService) ListGrants(ctx context.Context, targetID string) ([]domain.RoleGrant, error) {
	if s.listGrantsFn != nil {
		return s.listGrantsFn(ctx, targetID)
	}
	return nil, nil
}

func newRoleTestApp(t *testing.T, svc RoleService) *fiber.App {
	t.Helper()
	return newTestApp(t, func(app *fiber.App) error { return RegisterRoleRoutes(app, svc) })
}

func TestRoleIntegration_GetRole(t *testing.T) {
	t.Parallel()

	svc := &stubRoleService{
		getRoleFn: func(ctx context.Context, userID string) (domain.Role, error) {
			if userID == "admin-1" {
				return domain.RoleAdmin, nil
			}
			return domain.RoleUser, nil
		},
	}
	app := newRoleTestApp(t, svc)

	resp, body := performRequest(t, app, http.MethodGet, "/v1/users/admin-1/role", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}
	if string(body) != `{"role":"admin","userId":"admin-1"}` {
		t.Fatalf("body = %s", body)
	}
}

func TestRoleIntegration_Grant(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := &stubRoleService{
		grantFn: func(ctx context.Context, actorID string, targetID string, role domain.Role) (*domain.RoleGrant, error) {
			if actorID != "admin-1" {
				return nil, fmt.Errorf("%w: only admins can grant roles", domain.ErrForbidden)
			}
			return &domain.RoleGrant{ID: "g1", ActorID: actorID, TargetID: targetID, Role: role, CreatedAt: created}, nil
		},
	}
	app := newRoleTestApp(t, svc)

	resp, body := performRequestAs(t, app, http.MethodPost, "/v1/roles/grants", `{"userId":"u2","role":"admin"}`, "admin-1")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", resp.StatusCode, string(body))
	}
	var grant roleGrantResponse
	if err := json.Unmarshal(body, &grant); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if grant.ID != "g1" || grant.UserID != "u2" || grant.ActorID != "admin-1" || grant.Role != "admin" {
		t.Fatalf("unexpected grant %s", body)
	}

	tests := []struct {
		name       string
		body       string
		actor      string
		wantStatus int
	}{
		{name: "non admin actor", body: `{"userId":"u2","role":"admin"}`, actor: "u1", wantStatus: fiber.StatusForbidden},
		{name: "missing actor header", body: `{"userId":"u2","role":"admin"}`, wantStatus: fiber.StatusBadRequest},
		{name: "unknown role", body: `{"userId":"u2","role":"root"}`, actor: "admin-1", wantStatus: fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, body := performRequestAs(t, app, http.MethodPost, "/v1/roles/grants", tt.body, tt.actor)
		if resp.StatusCode != tt.wantStatus {
			t.Fatalf("%s: status = %d, want %d, body=%s", tt.name, resp.StatusCode, tt.wantStatus, string(body))
		}
	}
}

func TestRoleIntegration_ListGrants(t *testing.T) {
	t.Parallel()

	svc := &stubRoleService{
		listGrantsFn: func(ctx context.Context, targetID string) ([]domain.RoleGrant, error) {
			return []domain.RoleGrant{{ID: "g1", ActorID: "system:bootstrap", TargetID: targetID, Role: domain.RoleAdmin}}, nil
		},
	}
	app := newRoleTestApp(t, svc)

	resp, body := performRequest(t, app, http.MethodGet, "/v1/users/u9/role/grants", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Data []roleGrantResponse `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if len(parsed.Data) != 1 || parsed.Data[0].UserID != "u9" {
		t.Fatalf("unexpected grants %s", body)
	}
}
