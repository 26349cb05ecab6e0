package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	ApiKeyPrefix string
	ApiKeyHash   string
	CreatedAt    time.Time
	RevokedAt    *time.Time
}

// Identity is stored in the request context after authentication. It
// carries only who the caller is; what they may do on a given project is
// resolved per request by the permission engine.
type Identity struct {
	UserID   uuid.UUID
	UserName string
}
