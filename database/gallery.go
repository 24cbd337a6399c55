package database

import (
	"context"
	"errors"
	"fmt"

	"atelier/models"
	"atelier/storage"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// GalleryRow is a gallery image joined with the owning project's
// display name, as returned by the list query.
type GalleryRow struct {
	models.GalleryImage
	ClientName string
}

// Locator rebuilds the storage locator for the row's content.
func (r GalleryRow) Locator() storage.Locator {
	return storage.Locator{Path: r.Path, Data: r.Data}
}

func (db *DB) InsertImage(ctx context.Context, projectID int64, loc storage.Locator) (*models.GalleryImage, error) {
	path, data := locatorColumns(loc)

	query := `
		INSERT INTO gallery_images (project_id, image_path, image_data)
		VALUES ($1, $2, $3)
		RETURNING id, uploaded_at
	`

	img := models.GalleryImage{ProjectID: projectID, Path: loc.Path, Data: loc.Data}
	err := db.Pool.QueryRow(ctx, query, projectID, path, data).Scan(&img.ID, &img.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert gallery image: %w", err)
	}

	logrus.Infof("Inserted gallery image %d for project %d", img.ID, projectID)
	return &img, nil
}

func (db *DB) GetImage(ctx context.Context, imageID int64) (*models.GalleryImage, error) {
	query := `
		SELECT id, project_id, COALESCE(image_path, ''), image_data, uploaded_at
		FROM gallery_images
		WHERE id = $1
	`

	var img models.GalleryImage
	err := db.Pool.QueryRow(ctx, query, imageID).Scan(
		&img.ID, &img.ProjectID, &img.Path, &img.Data, &img.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("gallery image %d: %w", imageID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get gallery image: %w", err)
	}

	return &img, nil
}

// ListGallery returns every image joined with its project's client
// name, newest first.
func (db *DB) ListGallery(ctx context.Context) ([]GalleryRow, error) {
	query := `
		SELECT g.id, g.project_id, p.client_name, COALESCE(g.image_path, ''), g.image_data, g.uploaded_at
		FROM gallery_images g
		JOIN projects p ON p.id = g.project_id
		ORDER BY g.uploaded_at DESC, g.id DESC
	`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}
	defer rows.Close()

	entries := []GalleryRow{}
	for rows.Next() {
		var r GalleryRow
		err := rows.Scan(&r.ID, &r.ProjectID, &r.ClientName, &r.Path, &r.Data, &r.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gallery row: %w", err)
		}
		entries = append(entries, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gallery rows: %w", err)
	}

	return entries, nil
}

// ListProjectImages returns the images owned by one project, newest
// first. Used by the cascade delete to find files needing cleanup.
func (db *DB) ListProjectImages(ctx context.Context, projectID int64) ([]models.GalleryImage, error) {
	query := `
		SELECT id, project_id, COALESCE(image_path, ''), image_data, uploaded_at
		FROM gallery_images
		WHERE project_id = $1
		ORDER BY uploaded_at DESC, id DESC
	`

	rows, err := db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project images: %w", err)
	}
	defer rows.Close()

	images := []models.GalleryImage{}
	for rows.Next() {
		var img models.GalleryImage
		err := rows.Scan(&img.ID, &img.ProjectID, &img.Path, &img.Data, &img.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gallery image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project images: %w", err)
	}

	return images, nil
}

func (db *DB) DeleteImage(ctx context.Context, imageID int64) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM gallery_images WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("failed to delete gallery image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("gallery image %d: %w", imageID, ErrNotFound)
	}

	logrus.Infof("Deleted gallery image %d", imageID)
	return nil
}

// DeleteProjectImages removes all rows owned by a project. Zero rows
// is not an error: the cascade must be retryable after a partial
// failure.
func (db *DB) DeleteProjectImages(ctx context.Context, projectID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM gallery_images WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project images: %w", err)
	}
	return nil
}

// UpdateImage rewrites only the supplied fields of an existing row and
// always refreshes uploaded_at. A call with neither a new project nor
// new content still refreshes the timestamp.
func (db *DB) UpdateImage(ctx context.Context, imageID int64, newProjectID *int64, newLoc *storage.Locator) error {
	ub := NewUpdateBuilder()
	if newProjectID != nil {
		ub.Set("project_id", *newProjectID)
	}
	if newLoc != nil {
		path, data := locatorColumns(*newLoc)
		ub.Set("image_path", path)
		ub.Set("image_data", data)
	}

	// SAFETY: column names are the constants above; all values are
	// bound via $N placeholders.
	query := fmt.Sprintf(`UPDATE gallery_images %s WHERE id = $%d`, ub.SetClause(), ub.NextArgNum())
	args := append(ub.Args(), imageID)

	result, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update gallery image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("gallery image %d: %w", imageID, ErrNotFound)
	}

	return nil
}

// locatorColumns maps a locator onto the (image_path, image_data)
// column pair, with NULL for the unused side.
func locatorColumns(loc storage.Locator) (interface{}, interface{}) {
	if loc.Inline() {
		return nil, loc.Data
	}
	return loc.Path, nil
}
