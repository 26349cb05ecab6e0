package project

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

// Create inserts a new project record.
func (r *PostgresRepository) Create(ctx context.Context, p *Project) error {
	query := `
		INSERT INTO projects (owner_id, name, slug, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, p.OwnerID, p.Name, p.Slug, p.Description).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateProjectSlug
		}
		return fmt.Errorf("inserting project: %w", err)
	}

	return nil
}

// GetByID retrieves a single project by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	query := `
		SELECT id, owner_id, name, slug, description, archived_at, created_at, updated_at
		FROM projects
		WHERE id = $1`

	return r.queryOne(ctx, query, id)
}

// GetBySlug retrieves a single project by its slug.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	query := `
		SELECT id, owner_id, name, slug, description, archived_at, created_at, updated_at
		FROM projects
		WHERE slug = $1`

	return r.queryOne(ctx, query, slug)
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, arg any) (*Project, error) {
	var p Project
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Slug, &p.Description,
		&p.ArchivedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("querying project: %w", err)
	}

	return &p, nil
}

// Update persists name and description changes.
func (r *PostgresRepository) Update(ctx context.Context, p *Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, p.ID, p.Name, p.Description).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("updating project: %w", err)
	}

	return nil
}

// Archive sets archived_at on a project. Archiving an already archived
// project is a no-op.
func (r *PostgresRepository) Archive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE projects
		SET archived_at = COALESCE(archived_at, NOW()), updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("archiving project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// Delete removes a project by its UUID. Grants are removed by FK cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// GrantsForProject retrieves all team grants on a project.
func (r *PostgresRepository) GrantsForProject(ctx context.Context, projectID uuid.UUID) ([]TeamGrant, error) {
	query := `
		SELECT project_id, team_id, role, created_at
		FROM project_team_grants
		WHERE project_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying project grants: %w", err)
	}
	defer rows.Close()

	var grants []TeamGrant
	for rows.Next() {
		var g TeamGrant
		err := rows.Scan(&g.ProjectID, &g.TeamID, &g.Role, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning grant row: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating grant rows: %w", err)
	}

	if grants == nil {
		grants = []TeamGrant{}
	}

	return grants, nil
}

// UpsertGrant inserts a team grant or updates the role of an existing one.
func (r *PostgresRepository) UpsertGrant(ctx context.Context, g *TeamGrant) error {
	query := `
		INSERT INTO project_team_grants (project_id, team_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, team_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, g.ProjectID, g.TeamID, g.Role).Scan(&g.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrProjectNotFound
		}
		return fmt.Errorf("upserting project grant: %w", err)
	}

	return nil
}

// DeleteGrant removes a team grant from a project.
func (r *PostgresRepository) DeleteGrant(ctx context.Context, projectID, teamID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM project_team_grants WHERE project_id = $1 AND team_id = $2`,
		projectID, teamID,
	)
	if err != nil {
		return fmt.Errorf("deleting project grant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrGrantNotFound
	}

	return nil
}
