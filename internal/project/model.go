package project

import (
	"time"

	"github.com/google/uuid"
)

// Project represents a row in the projects table. OwnerID is the user who
// owns the project directly; direct ownership always outranks team grants.
type Project struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Slug        string
	Description string
	ArchivedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TeamGrant represents a row in the project_team_grants table: the
// project-scope role a team's members inherit on the project. Role is one
// of "owner", "admin", "editor" or "viewer".
type TeamGrant struct {
	ProjectID uuid.UUID
	TeamID    uuid.UUID
	Role      string
	CreatedAt time.Time
}
