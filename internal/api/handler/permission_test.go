package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmariscotes-strat/stride/internal/api/handler"
	"github.com/bmariscotes-strat/stride/internal/api/middleware"
	"github.com/bmariscotes-strat/stride/internal/auth"
	"github.com/bmariscotes-strat/stride/internal/permission"
	"github.com/bmariscotes-strat/stride/internal/project"
	"github.com/bmariscotes-strat/stride/internal/team"
)

// memProjectRepo serves projects and grants from memory.
type memProjectRepo struct {
	projects map[uuid.UUID]*project.Project
	grants   map[uuid.UUID][]project.TeamGrant
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{
		projects: map[uuid.UUID]*project.Project{},
		grants:   map[uuid.UUID][]project.TeamGrant{},
	}
}

func (f *memProjectRepo) Create(_ context.Context, p *project.Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.projects[p.ID] = p
	return nil
}

func (f *memProjectRepo) GetByID(_ context.Context, id uuid.UUID) (*project.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	return p, nil
}

func (f *memProjectRepo) GetBySlug(_ context.Context, slug string) (*project.Project, error) {
	for _, p := range f.projects {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, project.ErrProjectNotFound
}

func (f *memProjectRepo) Update(_ context.Context, _ *project.Project) error { return nil }
func (f *memProjectRepo) Archive(_ context.Context, _ uuid.UUID) error       { return nil }
func (f *memProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.projects, id)
	return nil
}

func (f *memProjectRepo) GrantsForProject(_ context.Context, projectID uuid.UUID) ([]project.TeamGrant, error) {
	return f.grants[projectID], nil
}

func (f *memProjectRepo) UpsertGrant(_ context.Context, g *project.TeamGrant) error {
	f.grants[g.ProjectID] = append(f.grants[g.ProjectID], *g)
	return nil
}

func (f *memProjectRepo) DeleteGrant(_ context.Context, _, _ uuid.UUID) error { return nil }

// memTeamRepo serves memberships from memory.
type memTeamRepo struct {
	memberships map[uuid.UUID][]team.Membership
}

func newMemTeamRepo() *memTeamRepo {
	return &memTeamRepo{memberships: map[uuid.UUID][]team.Membership{}}
}

func (f *memTeamRepo) Create(_ context.Context, _ *team.Team, _ uuid.UUID) error { return nil }
func (f *memTeamRepo) GetByID(_ context.Context, _ uuid.UUID) (*team.Team, error) {
	return nil, team.ErrTeamNotFound
}
func (f *memTeamRepo) GetBySlug(_ context.Context, _ string) (*team.Team, error) {
	return nil, team.ErrTeamNotFound
}
func (f *memTeamRepo) List(_ context.Context) ([]team.Team, error) { return nil, nil }
func (f *memTeamRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }
func (f *memTeamRepo) AddMember(_ context.Context, teamID, userID uuid.UUID, role string) error {
	f.memberships[userID] = append(f.memberships[userID], team.Membership{
		TeamID: teamID,
		UserID: userID,
		Role:   role,
	})
	return nil
}
func (f *memTeamRepo) RemoveMember(_ context.Context, _, _ uuid.UUID) error { return nil }
func (f *memTeamRepo) UpdateMemberRole(_ context.Context, _, _ uuid.UUID, _ string) error {
	return nil
}
func (f *memTeamRepo) MembersOf(_ context.Context, _ uuid.UUID) ([]team.Membership, error) {
	return nil, nil
}
func (f *memTeamRepo) MembershipsForUser(_ context.Context, userID uuid.UUID) ([]team.Membership, error) {
	return f.memberships[userID], nil
}

type permissionFixture struct {
	projects *memProjectRepo
	teams    *memTeamRepo
	router   *chi.Mux
}

func newPermissionFixture() *permissionFixture {
	projects := newMemProjectRepo()
	teams := newMemTeamRepo()
	resolver := permission.NewResolver(projects, teams)
	cache := permission.NewCache(resolver, 16, time.Minute)
	h := handler.NewPermissionHandler(projects, cache)

	router := chi.NewRouter()
	router.Get("/projects/{project}/permissions", h.Get)
	router.Get("/projects/{project}/permissions/analytics", h.GetAnalytics)

	return &permissionFixture{projects: projects, teams: teams, router: router}
}

func (fx *permissionFixture) get(path string, identity *auth.Identity) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if identity != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), identity))
	}
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env["data"])
	return env["data"].(map[string]interface{})
}

func TestPermissionGet_NoIdentity(t *testing.T) {
	fx := newPermissionFixture()

	w := fx.get("/projects/roadmap/permissions", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPermissionGet_UnknownProject(t *testing.T) {
	fx := newPermissionFixture()
	identity := &auth.Identity{UserID: uuid.New(), UserName: "alice"}

	w := fx.get("/projects/no-such-project/permissions", identity)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	apiErr := env["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", apiErr["code"])
}

func TestPermissionGet_OwnerHasFullMatrix(t *testing.T) {
	fx := newPermissionFixture()
	ownerID := uuid.New()

	p := &project.Project{OwnerID: ownerID, Name: "roadmap", Slug: "roadmap"}
	require.NoError(t, fx.projects.Create(context.Background(), p))

	identity := &auth.Identity{UserID: ownerID, UserName: "alice"}
	w := fx.get("/projects/roadmap/permissions", identity)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)

	assert.Equal(t, "owner", data["role"])
	assert.Equal(t, true, data["hasAccess"])
	assert.Equal(t, true, data["isProjectOwner"])

	perms := data["permissions"].(map[string]interface{})
	assert.Equal(t, true, perms["canDeleteProject"])
	assert.Equal(t, true, perms["canManageTeams"])
}

func TestPermissionGet_NoAccessIsNot403(t *testing.T) {
	fx := newPermissionFixture()

	p := &project.Project{OwnerID: uuid.New(), Name: "roadmap", Slug: "roadmap"}
	require.NoError(t, fx.projects.Create(context.Background(), p))

	identity := &auth.Identity{UserID: uuid.New(), UserName: "stranger"}
	w := fx.get("/projects/roadmap/permissions", identity)

	require.Equal(t, http.StatusOK, w.Code, "lack of access is reported, not rejected")
	data := decodeData(t, w)

	assert.Nil(t, data["role"], "role is null when the user has no access")
	assert.Equal(t, false, data["hasAccess"])
	assert.Equal(t, false, data["isProjectOwner"])

	perms := data["permissions"].(map[string]interface{})
	for name, held := range perms {
		assert.Equal(t, false, held, "capability %s must be false", name)
	}
}

func TestPermissionGet_ViewerThroughTeamGrant(t *testing.T) {
	fx := newPermissionFixture()
	userID := uuid.New()
	teamID := uuid.New()

	p := &project.Project{OwnerID: uuid.New(), Name: "roadmap", Slug: "roadmap"}
	require.NoError(t, fx.projects.Create(context.Background(), p))
	require.NoError(t, fx.teams.AddMember(context.Background(), teamID, userID, "member"))
	require.NoError(t, fx.projects.UpsertGrant(context.Background(), &project.TeamGrant{
		ProjectID: p.ID, TeamID: teamID, Role: "viewer",
	}))

	identity := &auth.Identity{UserID: userID, UserName: "bob"}
	w := fx.get("/projects/roadmap/permissions", identity)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)

	assert.Equal(t, "viewer", data["role"])
	assert.Equal(t, true, data["hasAccess"])

	perms := data["permissions"].(map[string]interface{})
	assert.Equal(t, true, perms["canViewProject"])
	assert.Equal(t, false, perms["canEditProject"])
	assert.Equal(t, false, perms["canCreateCards"])
}

func TestPermissionGetAnalytics_DerivedFromBaseMatrix(t *testing.T) {
	fx := newPermissionFixture()
	userID := uuid.New()
	teamID := uuid.New()

	p := &project.Project{OwnerID: uuid.New(), Name: "roadmap", Slug: "roadmap"}
	require.NoError(t, fx.projects.Create(context.Background(), p))
	require.NoError(t, fx.teams.AddMember(context.Background(), teamID, userID, "member"))
	require.NoError(t, fx.projects.UpsertGrant(context.Background(), &project.TeamGrant{
		ProjectID: p.ID, TeamID: teamID, Role: "editor",
	}))

	identity := &auth.Identity{UserID: userID, UserName: "bob"}
	w := fx.get("/projects/roadmap/permissions/analytics", identity)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)

	assert.Equal(t, true, data["canViewAnalytics"])
	assert.Equal(t, true, data["canViewDetailedAnalytics"])
	assert.Equal(t, true, data["canExportAnalytics"])
	assert.Equal(t, false, data["canViewTeamPerformance"])
}

func TestPermissionGetAnalytics_NoIdentity(t *testing.T) {
	fx := newPermissionFixture()

	w := fx.get("/projects/roadmap/permissions/analytics", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
