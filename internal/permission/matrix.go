package permission

// ProjectPermissions is the complete set of capability flags for one
// (user, project) pair. Every field is always explicitly set; consumers
// never need to distinguish "false" from "absent".
type ProjectPermissions struct {
	CanViewProject    bool `json:"canViewProject"`
	CanEditProject    bool `json:"canEditProject"`
	CanDeleteProject  bool `json:"canDeleteProject"`
	CanArchiveProject bool `json:"canArchiveProject"`

	CanCreateColumns  bool `json:"canCreateColumns"`
	CanEditColumns    bool `json:"canEditColumns"`
	CanDeleteColumns  bool `json:"canDeleteColumns"`
	CanReorderColumns bool `json:"canReorderColumns"`

	CanCreateCards bool `json:"canCreateCards"`
	CanEditCards   bool `json:"canEditCards"`
	CanDeleteCards bool `json:"canDeleteCards"`
	CanAssignCards bool `json:"canAssignCards"`
	CanMoveCards   bool `json:"canMoveCards"`

	CanCreateComments bool `json:"canCreateComments"`
	CanEditComments   bool `json:"canEditComments"`
	CanDeleteComments bool `json:"canDeleteComments"`

	CanManageLabels      bool `json:"canManageLabels"`
	CanUploadAttachments bool `json:"canUploadAttachments"`
	CanDeleteAttachments bool `json:"canDeleteAttachments"`
	CanManageTeams       bool `json:"canManageTeams"`
}

// BaseCapabilities returns the capability matrix for a project role.
// Each capability is introduced at exactly one rung of the ladder and is
// inherited by every higher role, so the matrix is monotone by
// construction. ProjectRoleNone yields the all-false matrix.
func BaseCapabilities(role ProjectRole) ProjectPermissions {
	var p ProjectPermissions

	if role.Rank() >= ProjectRoleViewer.Rank() {
		p.CanViewProject = true
	}

	if role.Rank() >= ProjectRoleEditor.Rank() {
		p.CanEditProject = true
		p.CanCreateColumns = true
		p.CanEditColumns = true
		p.CanReorderColumns = true
		p.CanCreateCards = true
		p.CanEditCards = true
		p.CanAssignCards = true
		p.CanMoveCards = true
		p.CanCreateComments = true
		p.CanEditComments = true
		p.CanManageLabels = true
		p.CanUploadAttachments = true
	}

	if role.Rank() >= ProjectRoleAdmin.Rank() {
		p.CanArchiveProject = true
		p.CanDeleteColumns = true
		p.CanDeleteCards = true
		p.CanDeleteComments = true
		p.CanDeleteAttachments = true
		p.CanManageTeams = true
	}

	if role.Rank() >= ProjectRoleOwner.Rank() {
		p.CanDeleteProject = true
	}

	return p
}

// Build expands an effective role into the full capability matrix. Direct
// ownership is a superset guarantee, not just a role label: an owner can
// always manage teams and archive the project even if the role table were
// narrowed.
func Build(role ProjectRole, isDirectOwner bool) ProjectPermissions {
	p := BaseCapabilities(role)

	if isDirectOwner {
		p.CanManageTeams = true
		p.CanArchiveProject = true
	}

	return p
}

// PermissionsData is the engine's sole externally visible artifact,
// computed once per authorization context and immutable thereafter.
type PermissionsData struct {
	EffectiveRole  ProjectRole
	Permissions    ProjectPermissions
	HasAccess      bool
	IsProjectOwner bool
}
