package permission

// TeamRole is a user's standing within a team.
type TeamRole string

const (
	TeamRoleOwner  TeamRole = "owner"
	TeamRoleAdmin  TeamRole = "admin"
	TeamRoleMember TeamRole = "member"
)

// ProjectRole is the privilege level a user holds on a single project.
// Roles form a strict total order: owner > admin > editor > viewer > none.
type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleAdmin  ProjectRole = "admin"
	ProjectRoleEditor ProjectRole = "editor"
	ProjectRoleViewer ProjectRole = "viewer"
	ProjectRoleNone   ProjectRole = "none"
)

// Rank returns the privilege level of a project role. Higher means more
// privilege. Unknown roles rank below every real role, so a corrupt role
// string denies rather than grants.
func (r ProjectRole) Rank() int {
	switch r {
	case ProjectRoleOwner:
		return 4
	case ProjectRoleAdmin:
		return 3
	case ProjectRoleEditor:
		return 2
	case ProjectRoleViewer:
		return 1
	default:
		return 0
	}
}

// ProjectScale maps a team-scope role onto the project-scope ladder. The
// mapped role is the ceiling a membership can reach through any grant: a
// plain team member never exceeds editor-level access, while team admins
// and owners can use a grant in full.
func (r TeamRole) ProjectScale() ProjectRole {
	switch r {
	case TeamRoleOwner:
		return ProjectRoleOwner
	case TeamRoleAdmin:
		return ProjectRoleAdmin
	case TeamRoleMember:
		return ProjectRoleEditor
	default:
		return ProjectRoleNone
	}
}

// ParseTeamRole converts a stored role string into a TeamRole.
func ParseTeamRole(s string) (TeamRole, bool) {
	switch TeamRole(s) {
	case TeamRoleOwner, TeamRoleAdmin, TeamRoleMember:
		return TeamRole(s), true
	default:
		return "", false
	}
}

// ParseProjectRole converts a stored role string into a ProjectRole.
// "none" is not accepted: it is a computed result, never a stored grant.
func ParseProjectRole(s string) (ProjectRole, bool) {
	switch ProjectRole(s) {
	case ProjectRoleOwner, ProjectRoleAdmin, ProjectRoleEditor, ProjectRoleViewer:
		return ProjectRole(s), true
	default:
		return "", false
	}
}

func minRole(a, b ProjectRole) ProjectRole {
	if a.Rank() <= b.Rank() {
		return a
	}
	return b
}

func maxRole(a, b ProjectRole) ProjectRole {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}
