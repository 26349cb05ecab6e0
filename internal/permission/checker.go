package permission

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotLoaded is returned when a predicate is queried before Load. This
// is a programming error in the caller, not a runtime condition.
var ErrNotLoaded = errors.New("permission context not loaded")

// ErrContextMismatch is returned when Load is called again with a
// different (user, project) pair. A checker covers exactly one
// authorization context; a new pair needs a new checker.
var ErrContextMismatch = errors.New("checker already loaded for a different context")

// Checker is the engine's facade: it runs resolve -> aggregate -> build
// once per authorization context and answers capability queries from the
// cached result. A Checker is not safe for concurrent use during Load;
// after a successful Load it is read-only.
type Checker struct {
	source FactSource

	userID    uuid.UUID
	projectID uuid.UUID
	data      *PermissionsData
}

// NewChecker creates an unloaded Checker over the given fact source.
func NewChecker(source FactSource) *Checker {
	return &Checker{source: source}
}

// Load resolves, aggregates and expands permissions for the pair, caches
// the result on the checker and returns it. Calling Load again with the
// same pair returns the cached result without touching the fact source.
// On any error the checker stays unloaded; predicates never observe a
// partial state.
func (c *Checker) Load(ctx context.Context, userID, projectID uuid.UUID) (*PermissionsData, error) {
	if c.data != nil {
		if c.userID != userID || c.projectID != projectID {
			return nil, ErrContextMismatch
		}
		return c.data, nil
	}

	facts, err := c.source.Resolve(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	role := AggregateRole(facts)

	data := &PermissionsData{
		EffectiveRole:  role,
		Permissions:    Build(role, facts.IsDirectOwner),
		HasAccess:      role != ProjectRoleNone,
		IsProjectOwner: facts.IsDirectOwner,
	}

	c.userID = userID
	c.projectID = projectID
	c.data = data

	return data, nil
}

// Data returns the cached PermissionsData, or ErrNotLoaded before Load.
func (c *Checker) Data() (*PermissionsData, error) {
	if c.data == nil {
		return nil, ErrNotLoaded
	}
	return c.data, nil
}

func (c *Checker) perms() (ProjectPermissions, error) {
	if c.data == nil {
		return ProjectPermissions{}, ErrNotLoaded
	}
	return c.data.Permissions, nil
}

func (c *Checker) CanViewProject() (bool, error) {
	p, err := c.perms()
	return p.CanViewProject, err
}

func (c *Checker) CanEditProject() (bool, error) {
	p, err := c.perms()
	return p.CanEditProject, err
}

func (c *Checker) CanDeleteProject() (bool, error) {
	p, err := c.perms()
	return p.CanDeleteProject, err
}

func (c *Checker) CanArchiveProject() (bool, error) {
	p, err := c.perms()
	return p.CanArchiveProject, err
}

func (c *Checker) CanCreateColumns() (bool, error) {
	p, err := c.perms()
	return p.CanCreateColumns, err
}

func (c *Checker) CanEditColumns() (bool, error) {
	p, err := c.perms()
	return p.CanEditColumns, err
}

func (c *Checker) CanDeleteColumns() (bool, error) {
	p, err := c.perms()
	return p.CanDeleteColumns, err
}

func (c *Checker) CanReorderColumns() (bool, error) {
	p, err := c.perms()
	return p.CanReorderColumns, err
}

func (c *Checker) CanCreateCards() (bool, error) {
	p, err := c.perms()
	return p.CanCreateCards, err
}

func (c *Checker) CanEditCards() (bool, error) {
	p, err := c.perms()
	return p.CanEditCards, err
}

func (c *Checker) CanDeleteCards() (bool, error) {
	p, err := c.perms()
	return p.CanDeleteCards, err
}

func (c *Checker) CanAssignCards() (bool, error) {
	p, err := c.perms()
	return p.CanAssignCards, err
}

func (c *Checker) CanMoveCards() (bool, error) {
	p, err := c.perms()
	return p.CanMoveCards, err
}

func (c *Checker) CanCreateComments() (bool, error) {
	p, err := c.perms()
	return p.CanCreateComments, err
}

func (c *Checker) CanEditComments() (bool, error) {
	p, err := c.perms()
	return p.CanEditComments, err
}

func (c *Checker) CanDeleteComments() (bool, error) {
	p, err := c.perms()
	return p.CanDeleteComments, err
}

func (c *Checker) CanManageLabels() (bool, error) {
	p, err := c.perms()
	return p.CanManageLabels, err
}

func (c *Checker) CanUploadAttachments() (bool, error) {
	p, err := c.perms()
	return p.CanUploadAttachments, err
}

func (c *Checker) CanDeleteAttachments() (bool, error) {
	p, err := c.perms()
	return p.CanDeleteAttachments, err
}

func (c *Checker) CanManageTeams() (bool, error) {
	p, err := c.perms()
	return p.CanManageTeams, err
}

// HasPermission answers a generic (action, resource) query against the
// cached matrix. Unknown pairs and an unloaded checker both answer false;
// this method never widens access and never fails.
func (c *Checker) HasPermission(action Action, resource Resource) bool {
	if c.data == nil {
		return false
	}
	return c.data.Permissions.Allows(action, resource)
}
