package project

import (
	"context"

	"github.com/google/uuid"
)

// Find resolves a project reference that may be either a UUID or a slug.
func Find(ctx context.Context, repo Repository, ref string) (*Project, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return repo.GetByID(ctx, id)
	}
	return repo.GetBySlug(ctx, ref)
}
