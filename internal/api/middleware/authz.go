package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bmariscotes-strat/stride/internal/api/response"
	"github.com/bmariscotes-strat/stride/internal/permission"
	"github.com/bmariscotes-strat/stride/internal/project"
)

const projectKey contextKey = "project"

// Authorizer guards mutating routes behind a capability check. The
// permission engine never returns 403 itself; translating a denied
// capability into an HTTP rejection is this middleware's decision.
type Authorizer struct {
	projects project.Repository
	perms    *permission.Cache
}

// NewAuthorizer creates an Authorizer over the given project store and
// permission cache.
func NewAuthorizer(projects project.Repository, perms *permission.Cache) *Authorizer {
	return &Authorizer{projects: projects, perms: perms}
}

// Require returns middleware that resolves the {project} URL parameter,
// loads the caller's permissions and rejects the request with 403 unless
// the capability for (action, resource) is granted. The resolved project
// is stored in the context for the downstream handler.
func (a *Authorizer) Require(action permission.Action, resource permission.Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
				return
			}

			p, err := project.Find(r.Context(), a.projects, chi.URLParam(r, "project"))
			if err != nil {
				if errors.Is(err, project.ErrProjectNotFound) {
					response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
					return
				}
				slog.Error("failed to resolve project for authorization", "error", err, "requestId", requestID)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization failed", requestID)
				return
			}

			data, err := a.perms.Load(r.Context(), identity.UserID, p.ID)
			if err != nil {
				slog.Error("failed to load permissions", "error", err, "requestId", requestID)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization failed", requestID)
				return
			}

			if !data.Permissions.Allows(action, resource) {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", requestID)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProject(r.Context(), p)))
		})
	}
}

// WithProject returns a context carrying the resolved project.
func WithProject(ctx context.Context, p *project.Project) context.Context {
	return context.WithValue(ctx, projectKey, p)
}

// GetProject retrieves the resolved project from the request context.
func GetProject(ctx context.Context) *project.Project {
	if p, ok := ctx.Value(projectKey).(*project.Project); ok {
		return p
	}
	return nil
}
