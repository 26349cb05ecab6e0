package team

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a row in the teams table. Every user has exactly one
// personal team, created alongside the account; personal teams are never
// shared and their name and slug are immutable.
type Team struct {
	ID         uuid.UUID
	Name       string
	Slug       string
	IsPersonal bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Membership represents a row in the team_members table.
// Role is one of "owner", "admin" or "member".
type Membership struct {
	TeamID    uuid.UUID
	UserID    uuid.UUID
	Role      string
	CreatedAt time.Time

	// TeamIsPersonal is populated by queries that join the teams table.
	TeamIsPersonal bool
}
