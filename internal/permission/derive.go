package permission

// AnalyticsPermissions is the analytics surface's view of a base matrix.
type AnalyticsPermissions struct {
	CanViewAnalytics         bool `json:"canViewAnalytics"`
	CanViewTeamPerformance   bool `json:"canViewTeamPerformance"`
	CanViewDetailedAnalytics bool `json:"canViewDetailedAnalytics"`
	CanExportAnalytics       bool `json:"canExportAnalytics"`
}

// DeriveAnalyticsPermissions narrows a base matrix for the analytics
// surface. It is a pure, total function of the matrix; it never re-derives
// role data.
func DeriveAnalyticsPermissions(base ProjectPermissions) AnalyticsPermissions {
	detailed := base.CanViewProject && base.CanEditProject

	return AnalyticsPermissions{
		CanViewAnalytics:         base.CanViewProject,
		CanViewTeamPerformance:   base.CanViewProject && base.CanManageTeams,
		CanViewDetailedAnalytics: detailed,
		CanExportAnalytics:       detailed,
	}
}

// RedactedAssignee replaces assignee names for viewers without detailed
// analytics access.
const RedactedAssignee = "Team member"

// ActivityEntry is one row of a project activity feed as handed to the
// analytics surface.
type ActivityEntry struct {
	CardTitle    string `json:"cardTitle"`
	ColumnName   string `json:"columnName"`
	AssigneeName string `json:"assigneeName"`
	OccurredAt   string `json:"occurredAt"`
}

// RedactActivity returns a copy of the entries with assignee names
// replaced by a generic placeholder when the base matrix lacks detailed
// analytics access. The input slice is never mutated and the entry count
// is preserved; either every assignee name is redacted or none is.
func RedactActivity(entries []ActivityEntry, base ProjectPermissions) []ActivityEntry {
	out := make([]ActivityEntry, len(entries))
	copy(out, entries)

	if DeriveAnalyticsPermissions(base).CanViewDetailedAnalytics {
		return out
	}

	for i := range out {
		if out[i].AssigneeName != "" {
			out[i].AssigneeName = RedactedAssignee
		}
	}

	return out
}
