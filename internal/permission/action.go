package permission

// Action is the verb half of a generic capability query.
type Action string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionArchive Action = "archive"
	ActionReorder Action = "reorder"
	ActionAssign  Action = "assign"
	ActionMove    Action = "move"
	ActionUpload  Action = "upload"
	ActionManage  Action = "manage"
)

// Resource is the noun half of a generic capability query.
type Resource string

const (
	ResourceProject    Resource = "project"
	ResourceColumn     Resource = "column"
	ResourceCard       Resource = "card"
	ResourceComment    Resource = "comment"
	ResourceLabel      Resource = "label"
	ResourceAttachment Resource = "attachment"
	ResourceTeam       Resource = "team"
)

// Allows reports whether the matrix grants the (action, resource) pair.
// Unrecognized pairs are denied.
func (p ProjectPermissions) Allows(action Action, resource Resource) bool {
	return capabilityFor(action, resource, p)
}

// capabilityFor maps an (action, resource) pair to its capability field.
// Every recognized pair appears exactly once; anything else falls through
// to the deny branch.
func capabilityFor(action Action, resource Resource, p ProjectPermissions) bool {
	switch resource {
	case ResourceProject:
		switch action {
		case ActionView:
			return p.CanViewProject
		case ActionEdit:
			return p.CanEditProject
		case ActionDelete:
			return p.CanDeleteProject
		case ActionArchive:
			return p.CanArchiveProject
		}
	case ResourceColumn:
		switch action {
		case ActionCreate:
			return p.CanCreateColumns
		case ActionEdit:
			return p.CanEditColumns
		case ActionDelete:
			return p.CanDeleteColumns
		case ActionReorder:
			return p.CanReorderColumns
		}
	case ResourceCard:
		switch action {
		case ActionCreate:
			return p.CanCreateCards
		case ActionEdit:
			return p.CanEditCards
		case ActionDelete:
			return p.CanDeleteCards
		case ActionAssign:
			return p.CanAssignCards
		case ActionMove:
			return p.CanMoveCards
		}
	case ResourceComment:
		switch action {
		case ActionCreate:
			return p.CanCreateComments
		case ActionEdit:
			return p.CanEditComments
		case ActionDelete:
			return p.CanDeleteComments
		}
	case ResourceLabel:
		if action == ActionManage {
			return p.CanManageLabels
		}
	case ResourceAttachment:
		switch action {
		case ActionUpload:
			return p.CanUploadAttachments
		case ActionDelete:
			return p.CanDeleteAttachments
		}
	case ResourceTeam:
		if action == ActionManage {
			return p.CanManageTeams
		}
	}

	// Unknown pairs are denied, never assumed granted.
	return false
}
