package permission_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmariscotes-strat/stride/internal/permission"
)

var rolesByRank = []permission.ProjectRole{
	permission.ProjectRoleNone,
	permission.ProjectRoleViewer,
	permission.ProjectRoleEditor,
	permission.ProjectRoleAdmin,
	permission.ProjectRoleOwner,
}

// capabilityFields returns every capability flag of the matrix by name.
func capabilityFields(t *testing.T, p permission.ProjectPermissions) map[string]bool {
	t.Helper()

	fields := map[string]bool{}
	v := reflect.ValueOf(p)
	for i := 0; i < v.NumField(); i++ {
		require.Equal(t, reflect.Bool, v.Field(i).Kind())
		fields[v.Type().Field(i).Name] = v.Field(i).Bool()
	}
	return fields
}

func TestBaseCapabilities_FieldCount(t *testing.T) {
	fields := capabilityFields(t, permission.BaseCapabilities(permission.ProjectRoleOwner))
	assert.Len(t, fields, 20)
}

func TestBaseCapabilities_NoneIsAllFalse(t *testing.T) {
	fields := capabilityFields(t, permission.BaseCapabilities(permission.ProjectRoleNone))
	for name, held := range fields {
		assert.False(t, held, "none should not hold %s", name)
	}
}

func TestBaseCapabilities_OwnerIsAllTrue(t *testing.T) {
	fields := capabilityFields(t, permission.BaseCapabilities(permission.ProjectRoleOwner))
	for name, held := range fields {
		assert.True(t, held, "owner should hold %s", name)
	}
}

// Every capability held at a given rank must be held at every higher rank.
func TestBaseCapabilities_Monotone(t *testing.T) {
	for i := 0; i < len(rolesByRank)-1; i++ {
		lower := rolesByRank[i]
		higher := rolesByRank[i+1]

		t.Run(fmt.Sprintf("%s_to_%s", lower, higher), func(t *testing.T) {
			lowerFields := capabilityFields(t, permission.BaseCapabilities(lower))
			higherFields := capabilityFields(t, permission.BaseCapabilities(higher))

			for name, held := range lowerFields {
				if held {
					assert.True(t, higherFields[name], "%s holds %s but %s does not", lower, name, higher)
				}
			}
		})
	}
}

func TestBaseCapabilities_EditorLadder(t *testing.T) {
	p := permission.BaseCapabilities(permission.ProjectRoleEditor)

	assert.True(t, p.CanViewProject)
	assert.True(t, p.CanEditProject)
	assert.True(t, p.CanCreateCards)
	assert.True(t, p.CanMoveCards)
	assert.True(t, p.CanManageLabels)

	assert.False(t, p.CanDeleteProject)
	assert.False(t, p.CanArchiveProject)
	assert.False(t, p.CanDeleteColumns)
	assert.False(t, p.CanManageTeams)
}

func TestBaseCapabilities_ViewerIsReadOnly(t *testing.T) {
	fields := capabilityFields(t, permission.BaseCapabilities(permission.ProjectRoleViewer))

	for name, held := range fields {
		if name == "CanViewProject" {
			assert.True(t, held)
			continue
		}
		assert.False(t, held, "viewer should not hold %s", name)
	}
}

func TestBuild_OwnershipOverride(t *testing.T) {
	// Ownership forces team management and archiving even when the role
	// table alone would not grant them.
	p := permission.Build(permission.ProjectRoleEditor, true)

	assert.True(t, p.CanManageTeams)
	assert.True(t, p.CanArchiveProject)
	assert.False(t, p.CanDeleteProject, "override must not widen beyond the named capabilities")
}

func TestBuild_NonOwnerMatchesBase(t *testing.T) {
	for _, role := range rolesByRank {
		assert.Equal(t, permission.BaseCapabilities(role), permission.Build(role, false), "role %s", role)
	}
}

func TestRank_TotalOrder(t *testing.T) {
	for i := 1; i < len(rolesByRank); i++ {
		assert.Greater(t, rolesByRank[i].Rank(), rolesByRank[i-1].Rank())
	}
}

func TestRank_UnknownRoleRanksLowest(t *testing.T) {
	assert.Equal(t, permission.ProjectRoleNone.Rank(), permission.ProjectRole("superuser").Rank())
}
