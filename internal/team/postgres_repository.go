package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new team record and its owner membership in one
// transaction.
func (r *PostgresRepository) Create(ctx context.Context, t *Team, ownerID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO teams (name, slug, is_personal)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(ctx, query, t.Name, t.Slug, t.IsPersonal).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTeamSlug
		}
		return fmt.Errorf("inserting team: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, 'owner')`,
		t.ID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("inserting owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing team creation: %w", err)
	}

	return nil
}

// GetByID retrieves a single team by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	query := `
		SELECT id, name, slug, is_personal, created_at, updated_at
		FROM teams
		WHERE id = $1`

	var t Team
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.Slug, &t.IsPersonal, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return &t, nil
}

// GetBySlug retrieves a single team by its slug.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Team, error) {
	query := `
		SELECT id, name, slug, is_personal, created_at, updated_at
		FROM teams
		WHERE slug = $1`

	var t Team
	err := r.pool.QueryRow(ctx, query, slug).Scan(&t.ID, &t.Name, &t.Slug, &t.IsPersonal, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team by slug: %w", err)
	}

	return &t, nil
}

// List retrieves all teams ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]Team, error) {
	query := `
		SELECT id, name, slug, is_personal, created_at, updated_at
		FROM teams
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.IsPersonal, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team rows: %w", err)
	}

	if teams == nil {
		teams = []Team{}
	}

	return teams, nil
}

// Delete removes a team by its UUID. Personal teams cannot be deleted.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.IsPersonal {
		return ErrPersonalTeam
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}

	return nil
}

// AddMember inserts a membership row. Personal teams never accept
// additional members.
func (r *PostgresRepository) AddMember(ctx context.Context, teamID, userID uuid.UUID, role string) error {
	t, err := r.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if t.IsPersonal {
		return ErrPersonalTeam
	}

	query := `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)`

	_, err = r.pool.Exec(ctx, query, teamID, userID, role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrDuplicateMember
			case "23503":
				return ErrTeamNotFound
			}
		}
		return fmt.Errorf("inserting team member: %w", err)
	}

	return nil
}

// RemoveMember deletes a membership row.
func (r *PostgresRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	t, err := r.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if t.IsPersonal {
		return ErrPersonalTeam
	}

	result, err := r.pool.Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting team member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// UpdateMemberRole changes an existing member's role.
func (r *PostgresRepository) UpdateMemberRole(ctx context.Context, teamID, userID uuid.UUID, role string) error {
	t, err := r.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if t.IsPersonal {
		return ErrPersonalTeam
	}

	result, err := r.pool.Exec(ctx,
		`UPDATE team_members SET role = $3 WHERE team_id = $1 AND user_id = $2`,
		teamID, userID, role,
	)
	if err != nil {
		return fmt.Errorf("updating member role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// MembersOf retrieves all memberships of a team ordered by join time.
func (r *PostgresRepository) MembersOf(ctx context.Context, teamID uuid.UUID) ([]Membership, error) {
	query := `
		SELECT m.team_id, m.user_id, m.role, m.created_at, t.is_personal
		FROM team_members m
		JOIN teams t ON m.team_id = t.id
		WHERE m.team_id = $1
		ORDER BY m.created_at ASC`

	return r.queryMemberships(ctx, query, teamID)
}

// MembershipsForUser retrieves all of a user's memberships with the
// owning team's personal flag joined in.
func (r *PostgresRepository) MembershipsForUser(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	query := `
		SELECT m.team_id, m.user_id, m.role, m.created_at, t.is_personal
		FROM team_members m
		JOIN teams t ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY m.created_at ASC`

	return r.queryMemberships(ctx, query, userID)
}

func (r *PostgresRepository) queryMemberships(ctx context.Context, query string, arg any) ([]Membership, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying memberships: %w", err)
	}
	defer rows.Close()

	var members []Membership
	for rows.Next() {
		var m Membership
		err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.CreatedAt, &m.TeamIsPersonal)
		if err != nil {
			return nil, fmt.Errorf("scanning membership row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating membership rows: %w", err)
	}

	if members == nil {
		members = []Membership{}
	}

	return members, nil
}
