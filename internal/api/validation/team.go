package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/bmariscotes-strat/stride/internal/permission"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CreateTeamRequest mirrors the fields needed for create team validation.
type CreateTeamRequest struct {
	Name string
	Slug string
}

// ValidateCreateTeamRequest validates the fields of a create team request.
func ValidateCreateTeamRequest(req CreateTeamRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	errs = append(errs, validateSlug(req.Slug)...)

	return errs
}

// AddMemberRequest mirrors the fields needed for add member validation.
type AddMemberRequest struct {
	UserID string
	Role   string
}

// ValidateAddMemberRequest validates the fields of an add member request.
func ValidateAddMemberRequest(req AddMemberRequest) []FieldError {
	var errs []FieldError

	if req.UserID == "" {
		errs = append(errs, FieldError{Field: "userId", Message: "userId is required"})
	} else if _, err := uuid.Parse(req.UserID); err != nil {
		errs = append(errs, FieldError{Field: "userId", Message: "userId must be a valid UUID"})
	}

	if req.Role == "" {
		errs = append(errs, FieldError{Field: "role", Message: "role is required"})
	} else if _, ok := permission.ParseTeamRole(req.Role); !ok {
		errs = append(errs, FieldError{Field: "role", Message: `role must be "owner", "admin" or "member"`})
	}

	return errs
}

func validateSlug(slug string) []FieldError {
	var errs []FieldError

	if slug == "" {
		errs = append(errs, FieldError{Field: "slug", Message: "slug is required"})
	} else if len(slug) > 100 {
		errs = append(errs, FieldError{Field: "slug", Message: "slug must be at most 100 characters"})
	} else if !slugPattern.MatchString(slug) {
		errs = append(errs, FieldError{Field: "slug", Message: "slug must be lowercase letters, digits and hyphens"})
	}

	return errs
}
