package database

import (
	"context"
	"errors"
	"fmt"

	"atelier/models"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

const projectColumns = "id, client_name, description, status, end_user, duration, created_at, updated_at"

func (db *DB) CreateProject(ctx context.Context, req models.SaveProjectRequest) (*models.Project, error) {
	query := `
		INSERT INTO projects (client_name, description, status, end_user, duration)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + projectColumns

	project, err := scanProject(db.Pool.QueryRow(ctx, query,
		req.ClientName, req.Description, req.Status, req.EndUser, req.Duration))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	logrus.Infof("Created project %d for client %s", project.ID, project.ClientName)
	return project, nil
}

// UpdateProject rewrites all mutable fields of an existing row and
// refreshes updated_at. created_at is never touched.
func (db *DB) UpdateProject(ctx context.Context, req models.SaveProjectRequest) (*models.Project, error) {
	query := `
		UPDATE projects
		SET client_name = $1, description = $2, status = $3, end_user = $4, duration = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + projectColumns

	project, err := scanProject(db.Pool.QueryRow(ctx, query,
		req.ClientName, req.Description, req.Status, req.EndUser, req.Duration, req.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %d: %w", req.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

func (db *DB) ListProjects(ctx context.Context) ([]models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		ORDER BY created_at DESC, id DESC
	`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

func (db *DB) GetProject(ctx context.Context, projectID int64) (*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1
	`

	project, err := scanProject(db.Pool.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %d: %w", projectID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// DeleteProject removes the project row only. Gallery rows and their
// files must already be gone; the cascade ordering is owned by the
// gallery service.
func (db *DB) DeleteProject(ctx context.Context, projectID int64) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %d: %w", projectID, ErrNotFound)
	}

	logrus.Infof("Deleted project %d", projectID)
	return nil
}

// Helper functions

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.ClientName,
		&project.Description,
		&project.Status,
		&project.EndUser,
		&project.Duration,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanProjects(rows rowsScanner) ([]models.Project, error) {
	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}
