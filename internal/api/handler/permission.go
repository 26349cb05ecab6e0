package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bmariscotes-strat/stride/internal/api/middleware"
	"github.com/bmariscotes-strat/stride/internal/api/response"
	"github.com/bmariscotes-strat/stride/internal/permission"
	"github.com/bmariscotes-strat/stride/internal/project"
)

type permissionsResponse struct {
	Role           *string                       `json:"role"`
	Permissions    permission.ProjectPermissions `json:"permissions"`
	HasAccess      bool                          `json:"hasAccess"`
	IsProjectOwner bool                          `json:"isProjectOwner"`
}

func toPermissionsResponse(data *permission.PermissionsData) permissionsResponse {
	var role *string
	if data.EffectiveRole != permission.ProjectRoleNone {
		r := string(data.EffectiveRole)
		role = &r
	}

	return permissionsResponse{
		Role:           role,
		Permissions:    data.Permissions,
		HasAccess:      data.HasAccess,
		IsProjectOwner: data.IsProjectOwner,
	}
}

// PermissionHandler exposes the permission engine's output at the HTTP
// boundary. Lack of access is never a 403 here: it is reported as
// hasAccess:false with an all-false matrix, and rejecting the request is
// the caller's decision.
type PermissionHandler struct {
	projects project.Repository
	perms    *permission.Cache
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(projects project.Repository, perms *permission.Cache) *PermissionHandler {
	return &PermissionHandler{projects: projects, perms: perms}
}

// Get handles GET /projects/{project}/permissions.
func (h *PermissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, ok := h.load(w, r)
	if !ok {
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	response.Success(w, http.StatusOK, toPermissionsResponse(data), requestID)
}

// GetAnalytics handles GET /projects/{project}/permissions/analytics,
// returning the analytics surface's derived view of the base matrix.
func (h *PermissionHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	data, ok := h.load(w, r)
	if !ok {
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	response.Success(w, http.StatusOK, permission.DeriveAnalyticsPermissions(data.Permissions), requestID)
}

func (h *PermissionHandler) load(w http.ResponseWriter, r *http.Request) (*permission.PermissionsData, bool) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return nil, false
	}

	p, err := project.Find(r.Context(), h.projects, chi.URLParam(r, "project"))
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
			return nil, false
		}
		slog.Error("failed to resolve project", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve project", requestID)
		return nil, false
	}

	data, err := h.perms.Load(r.Context(), identity.UserID, p.ID)
	if err != nil {
		slog.Error("failed to load permissions", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load permissions", requestID)
		return nil, false
	}

	return data, true
}
