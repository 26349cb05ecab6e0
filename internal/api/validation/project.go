package validation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/bmariscotes-strat/stride/internal/permission"
)

// CreateProjectRequest mirrors the fields needed for create project validation.
type CreateProjectRequest struct {
	Name        string
	Slug        string
	Description string
}

// ValidateCreateProjectRequest validates the fields of a create project request.
func ValidateCreateProjectRequest(req CreateProjectRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	errs = append(errs, validateSlug(req.Slug)...)

	if len(req.Description) > 2000 {
		errs = append(errs, FieldError{Field: "description", Message: "description must be at most 2000 characters"})
	}

	return errs
}

// UpdateProjectRequest mirrors the fields needed for update project validation.
type UpdateProjectRequest struct {
	Name        *string
	Description *string
}

// ValidateUpdateProjectRequest validates the fields of an update project request.
func ValidateUpdateProjectRequest(req UpdateProjectRequest) []FieldError {
	var errs []FieldError

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			errs = append(errs, FieldError{Field: "name", Message: "name must not be empty"})
		} else if len(name) > 255 {
			errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
		}
	}

	if req.Description != nil && len(*req.Description) > 2000 {
		errs = append(errs, FieldError{Field: "description", Message: "description must be at most 2000 characters"})
	}

	return errs
}

// GrantRequest mirrors the fields needed for team grant validation.
type GrantRequest struct {
	TeamID string
	Role   string
}

// ValidateGrantRequest validates the fields of a team grant request.
func ValidateGrantRequest(req GrantRequest) []FieldError {
	var errs []FieldError

	if req.TeamID == "" {
		errs = append(errs, FieldError{Field: "teamId", Message: "teamId is required"})
	} else if _, err := uuid.Parse(req.TeamID); err != nil {
		errs = append(errs, FieldError{Field: "teamId", Message: "teamId must be a valid UUID"})
	}

	if req.Role == "" {
		errs = append(errs, FieldError{Field: "role", Message: "role is required"})
	} else if _, ok := permission.ParseProjectRole(req.Role); !ok {
		errs = append(errs, FieldError{Field: "role", Message: `role must be "owner", "admin", "editor" or "viewer"`})
	}

	return errs
}
