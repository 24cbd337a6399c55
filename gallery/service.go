// Package gallery implements the reconciliation service: it keeps the
// gallery_images rows and the physical image content consistent across
// create, replace and delete. The invariant is that a committed row
// never references deleted content; a leaked file on the other side is
// the accepted failure mode.
package gallery

import (
	"context"
	"errors"
	"fmt"

	"atelier/database"
	"atelier/models"
	"atelier/storage"

	"github.com/sirupsen/logrus"
)

// ErrNoFiles is returned when an upload request carried no files.
// Handlers map it to 400.
var ErrNoFiles = errors.New("no files uploaded")

// Upload is one received file payload: the buffered content plus the
// client's original filename (a naming hint only).
type Upload struct {
	Name string
	Data []byte
}

// RecordStore is the subset of database operations the service needs.
// Narrow so the service is testable with a substitute store.
type RecordStore interface {
	GetProject(ctx context.Context, projectID int64) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	DeleteProject(ctx context.Context, projectID int64) error

	InsertImage(ctx context.Context, projectID int64, loc storage.Locator) (*models.GalleryImage, error)
	GetImage(ctx context.Context, imageID int64) (*models.GalleryImage, error)
	DeleteImage(ctx context.Context, imageID int64) error
	UpdateImage(ctx context.Context, imageID int64, newProjectID *int64, newLoc *storage.Locator) error
	ListGallery(ctx context.Context) ([]database.GalleryRow, error)
	ListProjectImages(ctx context.Context, projectID int64) ([]models.GalleryImage, error)
	DeleteProjectImages(ctx context.Context, projectID int64) error
}

type Service struct {
	store   RecordStore
	backend storage.Backend
}

func NewService(store RecordStore, backend storage.Backend) *Service {
	return &Service{store: store, backend: backend}
}

// Create stores each received file and inserts one row per file,
// returning the number of images stored.
//
// The project-existence check runs before anything is written, so an
// upload against an unknown project leaves zero rows and zero files.
// Each file is an independent unit: a failure stops the batch and
// cleans up that file's content, but rows already inserted for earlier
// files stay.
func (s *Service) Create(ctx context.Context, projectID int64, uploads []Upload) (int, error) {
	if len(uploads) == 0 {
		return 0, ErrNoFiles
	}

	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return 0, err
	}

	stored := 0
	for _, up := range uploads {
		loc, err := s.backend.Store(up.Data, up.Name)
		if err != nil {
			return stored, fmt.Errorf("failed to store %s: %w", up.Name, err)
		}

		if _, err := s.store.InsertImage(ctx, projectID, loc); err != nil {
			s.cleanup(loc, "orphaned upload")
			return stored, err
		}
		stored++
	}

	return stored, nil
}

// List returns every image joined with its project's client name,
// newest first, with the content resolved to a transportable form.
func (s *Service) List(ctx context.Context) ([]models.GalleryEntry, error) {
	rows, err := s.store.ListGallery(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]models.GalleryEntry, 0, len(rows))
	for _, r := range rows {
		image, err := s.backend.Resolve(r.Locator())
		if err != nil {
			return nil, fmt.Errorf("failed to resolve image %d: %w", r.ID, err)
		}
		entries = append(entries, models.GalleryEntry{
			GalleryID:  r.ID,
			ProjectID:  r.ProjectID,
			ClientName: r.ClientName,
			Image:      image,
			UploadedAt: r.UploadedAt,
		})
	}

	return entries, nil
}

// ListByProject returns every project with its gallery entries
// nested, newest first on both levels.
func (s *Service) ListByProject(ctx context.Context) ([]models.ProjectWithGallery, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]models.GalleryEntry, len(projects))
	for _, e := range entries {
		grouped[e.ProjectID] = append(grouped[e.ProjectID], e)
	}

	result := make([]models.ProjectWithGallery, 0, len(projects))
	for _, p := range projects {
		g := grouped[p.ID]
		if g == nil {
			g = []models.GalleryEntry{}
		}
		result = append(result, models.ProjectWithGallery{Project: p, Gallery: g})
	}

	return result, nil
}

// Delete removes one image: row first, then content. A content delete
// that fails after the row is gone is logged and reported as success;
// nothing references the file anymore.
func (s *Service) Delete(ctx context.Context, imageID int64) error {
	img, err := s.store.GetImage(ctx, imageID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteImage(ctx, imageID); err != nil {
		return err
	}

	s.cleanup(storage.Locator{Path: img.Path, Data: img.Data}, "deleted image content")
	return nil
}

// Replace swaps an image's content and/or its owning project.
//
// Ordering is load-bearing: new content is stored, the row update
// commits, and only then is the old content deleted. A failure at any
// step leaves the row pointing at content that still exists; the worst
// case is a leaked file, never a dangling reference. A call with
// neither a new owner nor new content is a no-op that refreshes
// uploaded_at.
func (s *Service) Replace(ctx context.Context, imageID int64, newProjectID *int64, file *Upload) error {
	img, err := s.store.GetImage(ctx, imageID)
	if err != nil {
		return err
	}

	var newLoc *storage.Locator
	if file != nil {
		loc, err := s.backend.Store(file.Data, file.Name)
		if err != nil {
			return fmt.Errorf("failed to store %s: %w", file.Name, err)
		}
		newLoc = &loc
	}

	if err := s.store.UpdateImage(ctx, imageID, newProjectID, newLoc); err != nil {
		if newLoc != nil {
			s.cleanup(*newLoc, "staged replacement")
		}
		return err
	}

	if newLoc != nil {
		s.cleanup(storage.Locator{Path: img.Path, Data: img.Data}, "replaced image content")
	}

	return nil
}

// DeleteProject cascades: gallery rows first, then their content
// (best-effort), then the project row. A crash mid-cascade leaves an
// orphaned project with no images, which self-heals on the next
// attempt since the image delete becomes a no-op.
func (s *Service) DeleteProject(ctx context.Context, projectID int64) error {
	images, err := s.store.ListProjectImages(ctx, projectID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteProjectImages(ctx, projectID); err != nil {
		return err
	}

	for _, img := range images {
		s.cleanup(storage.Locator{Path: img.Path, Data: img.Data}, "cascaded image content")
	}

	return s.store.DeleteProject(ctx, projectID)
}

// cleanup deletes physical content best-effort. Failures are logged,
// never escalated: the database operation that mattered has already
// committed.
func (s *Service) cleanup(loc storage.Locator, what string) {
	if err := s.backend.Delete(loc); err != nil {
		logrus.WithError(err).Warnf("Failed to delete %s", what)
	}
}
