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
	"github.com/bmariscotes-strat/stride/internal/auth"
	"github.com/bmariscotes-strat/stride/internal/permission"
	"github.com/bmariscotes-strat/stride/internal/team"
)

type createTeamRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type addMemberRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type teamResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	IsPersonal bool   `json:"isPersonal"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type memberResponse struct {
	TeamID string `json:"teamId"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func toTeamResponse(t *team.Team) teamResponse {
	return teamResponse{
		ID:         t.ID.String(),
		Name:       t.Name,
		Slug:       t.Slug,
		IsPersonal: t.IsPersonal,
		CreatedAt:  t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  t.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// TeamHandler handles team and membership endpoints. Membership changes
// invalidate the affected user's permission cache entries so the next
// authorization context sees the new standing.
type TeamHandler struct {
	repo  team.Repository
	perms *permission.Cache
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(repo team.Repository, perms *permission.Cache) *TeamHandler {
	return &TeamHandler{repo: repo, perms: perms}
}

// Create handles POST /teams. The caller becomes the team's owner.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateTeamRequest(validation.CreateTeamRequest{
		Name: req.Name,
		Slug: req.Slug,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	t := &team.Team{
		Name: req.Name,
		Slug: req.Slug,
	}

	if err := h.repo.Create(r.Context(), t, identity.UserID); err != nil {
		if errors.Is(err, team.ErrDuplicateTeamSlug) {
			response.Err(w, http.StatusConflict, "DUPLICATE_SLUG", fmt.Sprintf("A team with slug %q already exists", req.Slug), requestID)
			return
		}
		slog.Error("failed to create team", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create team", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toTeamResponse(t), requestID)
}

// List handles GET /teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teams, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list teams", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list teams", requestID)
		return
	}

	items := make([]teamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, toTeamResponse(&teams[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Get handles GET /teams/{id}.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, ok := h.findTeam(w, r)
	if !ok {
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(t), requestID)
}

// Members handles GET /teams/{id}/members.
func (h *TeamHandler) Members(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, ok := h.findTeam(w, r)
	if !ok {
		return
	}

	members, err := h.repo.MembersOf(r.Context(), t.ID)
	if err != nil {
		slog.Error("failed to list team members", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list team members", requestID)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, memberResponse{
			TeamID: m.TeamID.String(),
			UserID: m.UserID.String(),
			Role:   m.Role,
		})
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// AddMember handles POST /teams/{id}/members. Only the team's owner or
// an admin may change its membership.
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}

	t, ok := h.findTeam(w, r)
	if !ok {
		return
	}

	if !h.canManageMembers(w, r, t, identity) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateAddMemberRequest(validation.AddMemberRequest{
		UserID: req.UserID,
		Role:   req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	userID := uuid.MustParse(req.UserID)

	if err := h.repo.AddMember(r.Context(), t.ID, userID, req.Role); err != nil {
		switch {
		case errors.Is(err, team.ErrPersonalTeam):
			response.Err(w, http.StatusConflict, "PERSONAL_TEAM", "Personal teams cannot be shared", requestID)
		case errors.Is(err, team.ErrDuplicateMember):
			response.Err(w, http.StatusConflict, "DUPLICATE_MEMBER", "User is already a member of this team", requestID)
		default:
			slog.Error("failed to add team member", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add team member", requestID)
		}
		return
	}

	h.perms.InvalidateUser(userID)

	response.Success(w, http.StatusCreated, memberResponse{
		TeamID: t.ID.String(),
		UserID: req.UserID,
		Role:   req.Role,
	}, requestID)
}

// RemoveMember handles DELETE /teams/{id}/members/{userID}.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}

	t, ok := h.findTeam(w, r)
	if !ok {
		return
	}

	if !h.canManageMembers(w, r, t, identity) {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "userID must be a valid UUID", requestID)
		return
	}

	if err := h.repo.RemoveMember(r.Context(), t.ID, userID); err != nil {
		switch {
		case errors.Is(err, team.ErrPersonalTeam):
			response.Err(w, http.StatusConflict, "PERSONAL_TEAM", "Personal team membership is fixed", requestID)
		case errors.Is(err, team.ErrMemberNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team member not found", requestID)
		default:
			slog.Error("failed to remove team member", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove team member", requestID)
		}
		return
	}

	h.perms.InvalidateUser(userID)

	response.NoContent(w)
}

func (h *TeamHandler) findTeam(w http.ResponseWriter, r *http.Request) (*team.Team, bool) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return nil, false
	}

	t, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return nil, false
		}
		slog.Error("failed to get team", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get team", requestID)
		return nil, false
	}

	return t, true
}

// canManageMembers writes a 403 and returns false unless the caller is
// the team's owner or an admin. Membership changes are team-scope
// decisions, distinct from project capabilities.
func (h *TeamHandler) canManageMembers(w http.ResponseWriter, r *http.Request, t *team.Team, identity *auth.Identity) bool {
	requestID := middleware.GetRequestID(r.Context())

	memberships, err := h.repo.MembershipsForUser(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("failed to load caller memberships", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify team standing", requestID)
		return false
	}

	for _, m := range memberships {
		if m.TeamID != t.ID {
			continue
		}
		role, ok := permission.ParseTeamRole(m.Role)
		if ok && (role == permission.TeamRoleOwner || role == permission.TeamRoleAdmin) {
			return true
		}
	}

	response.Err(w, http.StatusForbidden, "FORBIDDEN", "Team owner or admin access required", requestID)
	return false
}
