package gallery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"testing"

	"atelier/database"
	"atelier/models"
	"atelier/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory RecordStore so the reconciliation logic
// can be exercised without postgres.
type fakeStore struct {
	projects map[int64]*models.Project
	images   map[int64]*models.GalleryImage
	nextID   int64

	insertErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: map[int64]*models.Project{},
		images:   map[int64]*models.GalleryImage{},
	}
}

func (f *fakeStore) addProject(clientName string) *models.Project {
	f.nextID++
	p := &models.Project{ID: f.nextID, ClientName: clientName, Description: "d", Status: "Active"}
	f.projects[p.ID] = p
	return p
}

func (f *fakeStore) GetProject(_ context.Context, id int64) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", id, database.ErrNotFound)
	}
	return p, nil
}

func (f *fakeStore) ListProjects(context.Context) ([]models.Project, error) {
	out := []models.Project{}
	for _, p := range f.projects {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) DeleteProject(_ context.Context, id int64) error {
	if _, ok := f.projects[id]; !ok {
		return fmt.Errorf("project %d: %w", id, database.ErrNotFound)
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeStore) InsertImage(_ context.Context, projectID int64, loc storage.Locator) (*models.GalleryImage, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	img := &models.GalleryImage{ID: f.nextID, ProjectID: projectID, Path: loc.Path, Data: loc.Data}
	f.images[img.ID] = img
	return img, nil
}

func (f *fakeStore) GetImage(_ context.Context, id int64) (*models.GalleryImage, error) {
	img, ok := f.images[id]
	if !ok {
		return nil, fmt.Errorf("gallery image %d: %w", id, database.ErrNotFound)
	}
	copied := *img
	return &copied, nil
}

func (f *fakeStore) DeleteImage(_ context.Context, id int64) error {
	if _, ok := f.images[id]; !ok {
		return fmt.Errorf("gallery image %d: %w", id, database.ErrNotFound)
	}
	delete(f.images, id)
	return nil
}

func (f *fakeStore) UpdateImage(_ context.Context, id int64, newProjectID *int64, newLoc *storage.Locator) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	img, ok := f.images[id]
	if !ok {
		return fmt.Errorf("gallery image %d: %w", id, database.ErrNotFound)
	}
	if newProjectID != nil {
		img.ProjectID = *newProjectID
	}
	if newLoc != nil {
		img.Path = newLoc.Path
		img.Data = newLoc.Data
	}
	return nil
}

func (f *fakeStore) ListGallery(context.Context) ([]database.GalleryRow, error) {
	rows := []database.GalleryRow{}
	for _, img := range f.images {
		clientName := ""
		if p, ok := f.projects[img.ProjectID]; ok {
			clientName = p.ClientName
		}
		rows = append(rows, database.GalleryRow{GalleryImage: *img, ClientName: clientName})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })
	return rows, nil
}

func (f *fakeStore) ListProjectImages(_ context.Context, projectID int64) ([]models.GalleryImage, error) {
	out := []models.GalleryImage{}
	for _, img := range f.images {
		if img.ProjectID == projectID {
			out = append(out, *img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) DeleteProjectImages(_ context.Context, projectID int64) error {
	for id, img := range f.images {
		if img.ProjectID == projectID {
			delete(f.images, id)
		}
	}
	return nil
}

// Helpers

func newTestService(t *testing.T) (*Service, *fakeStore, *storage.Filesystem) {
	t.Helper()

	fs, err := storage.NewFilesystem(t.TempDir())
	require.NoError(t, err)

	store := newFakeStore()
	return NewService(store, fs), store, fs
}

func filesOnDisk(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestCreate_NoFiles(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.addProject("Acme")

	_, err := svc.Create(context.Background(), 1, nil)
	assert.True(t, errors.Is(err, ErrNoFiles))
}

func TestCreate_UnknownProject(t *testing.T) {
	svc, store, fs := newTestService(t)

	uploads := []Upload{{Name: "a.png", Data: []byte("a")}}
	_, err := svc.Create(context.Background(), 42, uploads)

	assert.True(t, errors.Is(err, database.ErrNotFound))
	assert.Empty(t, store.images)
	assert.Zero(t, filesOnDisk(t, fs.Dir), "failed upload must leave no files")
}

func TestCreate_MultipleFiles(t *testing.T) {
	svc, store, fs := newTestService(t)
	project := store.addProject("Acme")

	uploads := []Upload{
		{Name: "a.png", Data: []byte("aaa")},
		{Name: "b.png", Data: []byte("bbb")},
	}

	count, err := svc.Create(context.Background(), project.ID, uploads)
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.Len(t, store.images, 2)
	assert.Equal(t, 2, filesOnDisk(t, fs.Dir))

	for _, img := range store.images {
		assert.Equal(t, project.ID, img.ProjectID)
		assert.NotEmpty(t, img.Path)
	}
}

func TestCreate_InsertFailureCleansUpFile(t *testing.T) {
	svc, store, fs := newTestService(t)
	project := store.addProject("Acme")
	store.insertErr = errors.New("insert failed")

	uploads := []Upload{{Name: "a.png", Data: []byte("a")}}
	count, err := svc.Create(context.Background(), project.ID, uploads)

	assert.Error(t, err)
	assert.Zero(t, count)
	assert.Zero(t, filesOnDisk(t, fs.Dir), "content for the failed row must be removed")
}

func TestList_NewestFirstWithClientName(t *testing.T) {
	svc, store, _ := newTestService(t)
	project := store.addProject("Acme")

	_, err := svc.Create(context.Background(), project.ID, []Upload{{Name: "a.png", Data: []byte("a")}})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), project.ID, []Upload{{Name: "b.png", Data: []byte("b")}})
	require.NoError(t, err)

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first: b.png before a.png
	assert.Contains(t, entries[0].Image, "b.png")
	assert.Contains(t, entries[1].Image, "a.png")

	for _, e := range entries {
		assert.Equal(t, project.ID, e.ProjectID)
		assert.Equal(t, "Acme", e.ClientName)
		assert.Contains(t, e.Image, "/uploads/")
	}
}

func TestDelete_RemovesRowAndFile(t *testing.T) {
	svc, store, fs := newTestService(t)
	project := store.addProject("Acme")

	_, err := svc.Create(context.Background(), project.ID, []Upload{{Name: "a.png", Data: []byte("a")}})
	require.NoError(t, err)

	var imageID int64
	for id := range store.images {
		imageID = id
	}

	err = svc.Delete(context.Background(), imageID)
	require.NoError(t, err)

	assert.Empty(t, store.images)
	assert.Zero(t, filesOnDisk(t, fs.Dir))
}

func TestDelete_NotFound(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.addProject("Acme")

	err := svc.Delete(context.Background(), 99)
	assert.True(t, errors.Is(err, database.ErrNotFound))
	assert.Empty(t, store.images)
}

func TestDelete_MissingFileStillSucceeds(t *testing.T) {
	svc, store, fs := newTestService(t)
	project := store.addProject("Acme")

	_, err := svc.Create(context.Background(), project.ID, []Upload{{Name: "a.png", Data: []byte("a")}})
	require.NoError(t, err)

	var img *models.GalleryImage
	for _, i := range store.images {
		img = i
	}

	// Someone removed the file out of band.
	require.NoError(t, fs.Delete(storage.Locator{Path: img.Path}))

	err = svc.Delete(context.Background(), img.ID)
	assert.NoError(t, err)
	assert.Empty(t, store.images)
}

func TestReplace_NewContent(t *testing.T) {
	svc, store, fs := newTestService(t)
	project := store.addProject("Acme")

	_, err := svc.Create(context.Background(), project.ID, []Upload{{Name: "old.png", Data: []byte("old")}})
	require.NoError(t, err)

	var img *models.GalleryImage
	for _, i := range store.images {
		img = i
	}
	oldPath := img.Path

	err = svc.Replace(context.Background(), img.ID, nil, &Upload{Name: "new.png", Data: []byte("new")})
	require.NoError(t, err)

	updated := store.images[img.ID]
	assert.NotEqual(t, oldPath, updated.Path)
	assert.Contains(t, updated.Path, "new.png")

	// Old content gone, new content present.
	assert.Equal(t, 1, filesOnDisk(t, fs.Dir))
	assert.Error(t, fileExists(fs, oldPath))
	assert.NoError(t, fileExists(fs, updated.Path))
}

func TestReplace_NewOwnerOnly(t *testing.T) {
	svc, store, fs := newTestService(t)
	project := store.addProject("Acme")
	other := store.addProject("Globex")

	_, err := svc.Create(context.Background(), project.ID, []Upload{{Name: "a.png", Data: []byte("a")}})
	require.NoError(t, err)

	var img *models.GalleryImage
	for _, i := range store.images {
		img = i
	}
	oldPath := img.Path

	err = svc.Replace(context.Background(), img.ID, &other.ID, nil)
	require.NoError(t, err)

	updated := store.images[img.ID]
	assert.Equal(t, other.ID, updated.ProjectID)
	assert.Equal(t, oldPath, updated.Path, "content untouched when only the owner changes")
	assert.Equal(t, 1, filesOnDisk(t, fs.Dir))
}

func TestReplace_NoOp(t *testing.T) {
	svc, store, fs := newTestService(t)
	project := store.addProject("Acme")

	_, err := svc.Create(context.Background(), project.ID, []Upload{{Name: "a.png", Data: []byte("a")}})
	require.NoError(t, err)

	var img *models.GalleryImage
	for _, i := range store.images {
		img = i
	}

	err = svc.Replace(context.Background(), img.ID, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, filesOnDisk(t, fs.Dir))
}

func TestReplace_NotFound(t *testing.T) {
	svc, store, fs := newTestService(t)
	store.addProject("Acme")

	err := svc.Replace(context.Background(), 99, nil, &Upload{Name: "new.png", Data: []byte("new")})

	assert.True(t, errors.Is(err, database.ErrNotFound))
	assert.Zero(t, filesOnDisk(t, fs.Dir), "received file must be discarded when the row is absent")
}

func TestReplace_UpdateFailureCleansUpNewContent(t *testing.T) {
	svc, store, fs := newTestService(t)
	project := store.addProject("Acme")

	_, err := svc.Create(context.Background(), project.ID, []Upload{{Name: "old.png", Data: []byte("old")}})
	require.NoError(t, err)

	var img *models.GalleryImage
	for _, i := range store.images {
		img = i
	}
	oldPath := img.Path

	store.updateErr = errors.New("update failed")

	err = svc.Replace(context.Background(), img.ID, nil, &Upload{Name: "new.png", Data: []byte("new")})
	assert.Error(t, err)

	// The row still points at the old content, which must still exist.
	assert.Equal(t, oldPath, store.images[img.ID].Path)
	assert.Equal(t, 1, filesOnDisk(t, fs.Dir))
	assert.NoError(t, fileExists(fs, oldPath))
}

func TestDeleteProject_Cascade(t *testing.T) {
	svc, store, fs := newTestService(t)
	project := store.addProject("Acme")
	other := store.addProject("Globex")

	_, err := svc.Create(context.Background(), project.ID, []Upload{
		{Name: "a.png", Data: []byte("a")},
		{Name: "b.png", Data: []byte("b")},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), other.ID, []Upload{{Name: "c.png", Data: []byte("c")}})
	require.NoError(t, err)

	err = svc.DeleteProject(context.Background(), project.ID)
	require.NoError(t, err)

	_, ok := store.projects[project.ID]
	assert.False(t, ok)

	for _, img := range store.images {
		assert.Equal(t, other.ID, img.ProjectID, "only the other project's images remain")
	}
	assert.Equal(t, 1, filesOnDisk(t, fs.Dir))
}

func TestListByProject(t *testing.T) {
	svc, store, _ := newTestService(t)
	withImages := store.addProject("Acme")
	empty := store.addProject("Globex")

	_, err := svc.Create(context.Background(), withImages.ID, []Upload{{Name: "a.png", Data: []byte("a")}})
	require.NoError(t, err)

	result, err := svc.ListByProject(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)

	byID := map[int64]models.ProjectWithGallery{}
	for _, p := range result {
		byID[p.ID] = p
	}

	assert.Len(t, byID[withImages.ID].Gallery, 1)
	assert.NotNil(t, byID[empty.ID].Gallery)
	assert.Empty(t, byID[empty.ID].Gallery)
}

func fileExists(fs *storage.Filesystem, path string) error {
	_, err := os.Stat(fmt.Sprintf("%s/%s", fs.Dir, path))
	return err
}
