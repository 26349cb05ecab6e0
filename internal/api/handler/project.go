package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bmariscotes-strat/stride/internal/api/middleware"
	"github.com/bmariscotes-strat/stride/internal/api/response"
	"github.com/bmariscotes-strat/stride/internal/api/validation"
	"github.com/bmariscotes-strat/stride/internal/permission"
	"github.com/bmariscotes-strat/stride/internal/project"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type grantRequest struct {
	Role string `json:"role"`
}

type projectResponse struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"ownerId"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	ArchivedAt  *string `json:"archivedAt"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type grantResponse struct {
	ProjectID string `json:"projectId"`
	TeamID    string `json:"teamId"`
	Role      string `json:"role"`
}

func toProjectResponse(p *project.Project) projectResponse {
	var archivedAt *string
	if p.ArchivedAt != nil {
		s := p.ArchivedAt.UTC().Format("2006-01-02T15:04:05Z")
		archivedAt = &s
	}

	return projectResponse{
		ID:          p.ID.String(),
		OwnerID:     p.OwnerID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		ArchivedAt:  archivedAt,
		CreatedAt:   p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// ProjectHandler handles project endpoints. Mutating routes sit behind
// the capability guard middleware, which also resolves the project into
// the request context.
type ProjectHandler struct {
	repo  project.Repository
	perms *permission.Cache
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(repo project.Repository, perms *permission.Cache) *ProjectHandler {
	return &ProjectHandler{repo: repo, perms: perms}
}

// Create handles POST /projects. Any authenticated user may create a
// project; they become its direct owner.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateProjectRequest(validation.CreateProjectRequest{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p := &project.Project{
		OwnerID:     identity.UserID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}

	if err := h.repo.Create(r.Context(), p); err != nil {
		if errors.Is(err, project.ErrDuplicateProjectSlug) {
			response.Err(w, http.StatusConflict, "DUPLICATE_SLUG", fmt.Sprintf("A project with slug %q already exists", req.Slug), requestID)
			return
		}
		slog.Error("failed to create project", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create project", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toProjectResponse(p), requestID)
}

// Get handles GET /projects/{project}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetProject(r.Context())
	if p == nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
		return
	}

	response.Success(w, http.StatusOK, toProjectResponse(p), requestID)
}

// Update handles PATCH /projects/{project}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetProject(r.Context())
	if p == nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateProjectRequest(validation.UpdateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}

	if err := h.repo.Update(r.Context(), p); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
			return
		}
		slog.Error("failed to update project", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update project", requestID)
		return
	}

	response.Success(w, http.StatusOK, toProjectResponse(p), requestID)
}

// Archive handles POST /projects/{project}/archive.
func (h *ProjectHandler) Archive(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetProject(r.Context())
	if p == nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
		return
	}

	if err := h.repo.Archive(r.Context(), p.ID); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
			return
		}
		slog.Error("failed to archive project", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to archive project", requestID)
		return
	}

	response.NoContent(w)
}

// Delete handles DELETE /projects/{project}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetProject(r.Context())
	if p == nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
		return
	}

	if err := h.repo.Delete(r.Context(), p.ID); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
			return
		}
		slog.Error("failed to delete project", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete project", requestID)
		return
	}

	h.perms.InvalidateProject(p.ID)

	response.NoContent(w)
}

// PutGrant handles PUT /projects/{project}/teams/{teamID}: granting a
// team a role on the project or changing an existing grant.
func (h *ProjectHandler) PutGrant(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetProject(r.Context())
	if p == nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
		return
	}

	teamID := chi.URLParam(r, "teamID")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateGrantRequest(validation.GrantRequest{
		TeamID: teamID,
		Role:   req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	g := &project.TeamGrant{
		ProjectID: p.ID,
		TeamID:    uuid.MustParse(teamID),
		Role:      req.Role,
	}

	if err := h.repo.UpsertGrant(r.Context(), g); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project or team not found", requestID)
			return
		}
		slog.Error("failed to upsert project grant", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save team grant", requestID)
		return
	}

	h.perms.InvalidateProject(p.ID)

	response.Success(w, http.StatusOK, grantResponse{
		ProjectID: g.ProjectID.String(),
		TeamID:    g.TeamID.String(),
		Role:      g.Role,
	}, requestID)
}

// DeleteGrant handles DELETE /projects/{project}/teams/{teamID}.
func (h *ProjectHandler) DeleteGrant(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetProject(r.Context())
	if p == nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
		return
	}

	teamID, err := uuid.Parse(chi.URLParam(r, "teamID"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "teamID must be a valid UUID", requestID)
		return
	}

	if err := h.repo.DeleteGrant(r.Context(), p.ID, teamID); err != nil {
		if errors.Is(err, project.ErrGrantNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team grant not found", requestID)
			return
		}
		slog.Error("failed to delete project grant", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete team grant", requestID)
		return
	}

	h.perms.InvalidateProject(p.ID)

	response.NoContent(w)
}
