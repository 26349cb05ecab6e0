package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/bmariscotes-strat/stride/internal/api/handler"
	"github.com/bmariscotes-strat/stride/internal/api/middleware"
	"github.com/bmariscotes-strat/stride/internal/auth"
	"github.com/bmariscotes-strat/stride/internal/permission"
	"github.com/bmariscotes-strat/stride/internal/project"
	"github.com/bmariscotes-strat/stride/internal/team"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	AuthService *auth.Service
	Users       auth.UserRepository
	Projects    project.Repository
	Teams       team.Repository
	Permissions *permission.Cache
	DBPinger    handler.DBPinger
	Version     string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authn := middleware.Auth(deps.AuthService)
	authz := middleware.NewAuthorizer(deps.Projects, deps.Permissions)

	permHandler := handler.NewPermissionHandler(deps.Projects, deps.Permissions)
	projHandler := handler.NewProjectHandler(deps.Projects, deps.Permissions)
	teamHandler := handler.NewTeamHandler(deps.Teams, deps.Permissions)
	userHandler := handler.NewUserHandler(deps.AuthService, deps.Users)

	r.Route("/users", func(r chi.Router) {
		r.Use(authn)

		r.Post("/", userHandler.Create)
		r.Get("/", userHandler.List)
		r.Get("/{id}", userHandler.Get)
		r.Delete("/{id}", userHandler.Revoke)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Use(authn)

		r.Post("/", projHandler.Create)

		r.Route("/{project}", func(r chi.Router) {
			// The permissions endpoints never 403: absence of access is
			// data, not an error, at this boundary.
			r.Get("/permissions", permHandler.Get)
			r.Get("/permissions/analytics", permHandler.GetAnalytics)

			r.With(authz.Require(permission.ActionView, permission.ResourceProject)).
				Get("/", projHandler.Get)
			r.With(authz.Require(permission.ActionEdit, permission.ResourceProject)).
				Patch("/", projHandler.Update)
			r.With(authz.Require(permission.ActionArchive, permission.ResourceProject)).
				Post("/archive", projHandler.Archive)
			r.With(authz.Require(permission.ActionDelete, permission.ResourceProject)).
				Delete("/", projHandler.Delete)

			r.Route("/teams", func(r chi.Router) {
				r.Use(authz.Require(permission.ActionManage, permission.ResourceTeam))
				r.Put("/{teamID}", projHandler.PutGrant)
				r.Delete("/{teamID}", projHandler.DeleteGrant)
			})
		})
	})

	r.Route("/teams", func(r chi.Router) {
		r.Use(authn)

		r.Post("/", teamHandler.Create)
		r.Get("/", teamHandler.List)
		r.Get("/{id}", teamHandler.Get)
		r.Get("/{id}/members", teamHandler.Members)
		r.Post("/{id}/members", teamHandler.AddMember)
		r.Delete("/{id}/members/{userID}", teamHandler.RemoveMember)
	})

	return r
}
