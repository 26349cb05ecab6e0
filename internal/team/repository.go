package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// ErrDuplicateTeamSlug is returned when a team with the same slug already exists.
var ErrDuplicateTeamSlug = errors.New("team slug already exists")

// ErrMemberNotFound is returned when a membership record is not found.
var ErrMemberNotFound = errors.New("team member not found")

// ErrDuplicateMember is returned when the user is already a member of the team.
var ErrDuplicateMember = errors.New("user is already a team member")

// ErrPersonalTeam is returned when attempting an operation that personal
// teams do not allow: deleting the team, renaming it, or changing its
// membership beyond the sole owner.
var ErrPersonalTeam = errors.New("operation not allowed on a personal team")

// Repository provides operations on the teams and team_members tables.
type Repository interface {
	Create(ctx context.Context, t *Team, ownerID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	GetBySlug(ctx context.Context, slug string) (*Team, error)
	List(ctx context.Context) ([]Team, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddMember(ctx context.Context, teamID, userID uuid.UUID, role string) error
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, teamID, userID uuid.UUID, role string) error
	MembersOf(ctx context.Context, teamID uuid.UUID) ([]Membership, error)
	MembershipsForUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
}
