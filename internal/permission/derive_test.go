package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmariscotes-strat/stride/internal/permission"
)

func TestDeriveAnalyticsPermissions(t *testing.T) {
	tests := []struct {
		name string
		role permission.ProjectRole
		want permission.AnalyticsPermissions
	}{
		{
			name: "viewer sees aggregates only",
			role: permission.ProjectRoleViewer,
			want: permission.AnalyticsPermissions{CanViewAnalytics: true},
		},
		{
			name: "editor gains detail and export",
			role: permission.ProjectRoleEditor,
			want: permission.AnalyticsPermissions{
				CanViewAnalytics:         true,
				CanViewDetailedAnalytics: true,
				CanExportAnalytics:       true,
			},
		},
		{
			name: "admin gains team performance",
			role: permission.ProjectRoleAdmin,
			want: permission.AnalyticsPermissions{
				CanViewAnalytics:         true,
				CanViewTeamPerformance:   true,
				CanViewDetailedAnalytics: true,
				CanExportAnalytics:       true,
			},
		},
		{
			name: "no access sees nothing",
			role: permission.ProjectRoleNone,
			want: permission.AnalyticsPermissions{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := permission.BaseCapabilities(tt.role)
			assert.Equal(t, tt.want, permission.DeriveAnalyticsPermissions(base))
		})
	}
}

func TestRedactActivity_ReplacesAssigneeNames(t *testing.T) {
	entries := []permission.ActivityEntry{
		{CardTitle: "Ship login page", ColumnName: "In progress", AssigneeName: "Alice", OccurredAt: "2025-06-01T10:00:00Z"},
		{CardTitle: "Fix flaky test", ColumnName: "Done", AssigneeName: "Bob", OccurredAt: "2025-06-01T11:00:00Z"},
		{CardTitle: "Write changelog", ColumnName: "Backlog", AssigneeName: "", OccurredAt: "2025-06-01T12:00:00Z"},
	}

	base := permission.BaseCapabilities(permission.ProjectRoleViewer)
	redacted := permission.RedactActivity(entries, base)

	require.Len(t, redacted, len(entries), "entry count must be unchanged")
	assert.Equal(t, permission.RedactedAssignee, redacted[0].AssigneeName)
	assert.Equal(t, permission.RedactedAssignee, redacted[1].AssigneeName)
	assert.Empty(t, redacted[2].AssigneeName, "unassigned entries stay unassigned")

	// Non-name fields pass through untouched.
	assert.Equal(t, "Ship login page", redacted[0].CardTitle)
	assert.Equal(t, "Done", redacted[1].ColumnName)
}

func TestRedactActivity_DoesNotMutateInput(t *testing.T) {
	entries := []permission.ActivityEntry{
		{CardTitle: "Ship login page", AssigneeName: "Alice"},
	}

	_ = permission.RedactActivity(entries, permission.BaseCapabilities(permission.ProjectRoleViewer))

	assert.Equal(t, "Alice", entries[0].AssigneeName)
}

func TestRedactActivity_DetailedAccessPassesThrough(t *testing.T) {
	entries := []permission.ActivityEntry{
		{CardTitle: "Ship login page", AssigneeName: "Alice"},
	}

	base := permission.BaseCapabilities(permission.ProjectRoleEditor)
	redacted := permission.RedactActivity(entries, base)

	assert.Equal(t, entries, redacted)
}
