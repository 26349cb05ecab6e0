package permission

// AggregateRole reduces resolver facts to a single effective role.
//
// Direct ownership short-circuits to owner regardless of any team grant.
// Otherwise each grant contributes min(standing-on-project-scale, grant
// role): a membership is capped both by the user's standing within the
// team and by the role the team was granted. The best capped path wins,
// so the fold is commutative and associative and a user reachable through
// several teams gets the union's best role. No grants means none.
func AggregateRole(f *Facts) ProjectRole {
	if f == nil {
		return ProjectRoleNone
	}
	if f.IsDirectOwner {
		return ProjectRoleOwner
	}

	best := ProjectRoleNone
	for _, g := range f.Grants {
		// Personal teams have exactly one legitimate member, their owner.
		// Any other membership row on one is bad data and grants nothing.
		if g.Personal && g.TeamRole != TeamRoleOwner {
			continue
		}

		effective := minRole(g.TeamRole.ProjectScale(), g.GrantRole)
		best = maxRole(best, effective)
	}

	return best
}
