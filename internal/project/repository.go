package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrProjectNotFound is returned when a project record is not found.
var ErrProjectNotFound = errors.New("project not found")

// ErrDuplicateProjectSlug is returned when a project with the same slug already exists.
var ErrDuplicateProjectSlug = errors.New("project slug already exists")

// ErrGrantNotFound is returned when a team grant record is not found.
var ErrGrantNotFound = errors.New("project team grant not found")

// Repository provides operations on the projects and project_team_grants tables.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	GetBySlug(ctx context.Context, slug string) (*Project, error)
	Update(ctx context.Context, p *Project) error
	Archive(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error

	GrantsForProject(ctx context.Context, projectID uuid.UUID) ([]TeamGrant, error)
	UpsertGrant(ctx context.Context, g *TeamGrant) error
	DeleteGrant(ctx context.Context, projectID, teamID uuid.UUID) error
}
