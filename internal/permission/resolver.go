package permission

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bmariscotes-strat/stride/internal/project"
	"github.com/bmariscotes-strat/stride/internal/team"
)

// Grant is one access path to a project: the user's standing in a team
// paired with the role that team was granted on the project.
type Grant struct {
	TeamRole  TeamRole
	GrantRole ProjectRole
	Personal  bool
}

// Facts is the raw material for role aggregation, gathered in one resolver
// pass. Either the full set is returned or an error; there are no partial
// results.
type Facts struct {
	IsDirectOwner bool
	Grants        []Grant
}

// FactSource produces the facts needed to authorize one (user, project)
// pair. It is the only I/O-performing step of the engine.
type FactSource interface {
	Resolve(ctx context.Context, userID, projectID uuid.UUID) (*Facts, error)
}

// Resolver implements FactSource against the membership and project stores.
type Resolver struct {
	projects project.Repository
	teams    team.Repository
}

// NewResolver creates a Resolver backed by the given repositories.
func NewResolver(projects project.Repository, teams team.Repository) *Resolver {
	return &Resolver{projects: projects, teams: teams}
}

// Resolve gathers ownership and grant facts for a (user, project) pair.
// It returns project.ErrProjectNotFound if the project does not exist and
// an empty grant list, not an error, when the user simply has no relevant
// memberships. Permission decisions are not made here.
func (r *Resolver) Resolve(ctx context.Context, userID, projectID uuid.UUID) (*Facts, error) {
	p, err := r.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("resolving project: %w", err)
	}

	facts := &Facts{IsDirectOwner: p.OwnerID == userID}

	memberships, err := r.teams.MembershipsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving memberships: %w", err)
	}
	if len(memberships) == 0 {
		return facts, nil
	}

	grants, err := r.projects.GrantsForProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("resolving project grants: %w", err)
	}

	byTeam := make(map[uuid.UUID]team.Membership, len(memberships))
	for _, m := range memberships {
		byTeam[m.TeamID] = m
	}

	for _, g := range grants {
		m, ok := byTeam[g.TeamID]
		if !ok {
			continue
		}

		// Rows with a role string the catalog does not know are dropped
		// rather than guessed at.
		teamRole, ok := ParseTeamRole(m.Role)
		if !ok {
			continue
		}
		grantRole, ok := ParseProjectRole(g.Role)
		if !ok {
			continue
		}

		facts.Grants = append(facts.Grants, Grant{
			TeamRole:  teamRole,
			GrantRole: grantRole,
			Personal:  m.TeamIsPersonal,
		})
	}

	return facts, nil
}
