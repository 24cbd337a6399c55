package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Filesystem stores image content as files under a single directory
// and hands out paths relative to it. URLPrefix is the path under
// which the directory is served as static content.
type Filesystem struct {
	Dir       string
	URLPrefix string
}

func NewFilesystem(dir string) (*Filesystem, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Filesystem{Dir: dir, URLPrefix: "/uploads"}, nil
}

func (f *Filesystem) Name() string { return "filesystem" }

// Store writes the content under a collision-resistant name derived
// from the upload time, a random fragment and the sanitized original
// name. Uniqueness is a naming convention, not a lock.
func (f *Filesystem) Store(data []byte, originalName string) (Locator, error) {
	name := fmt.Sprintf("%d_%s_%s",
		time.Now().UnixNano(),
		uuid.New().String()[:8],
		sanitizeFilename(originalName),
	)

	if err := os.WriteFile(filepath.Join(f.Dir, name), data, 0o644); err != nil {
		return Locator{}, fmt.Errorf("failed to write upload: %w", err)
	}

	return Locator{Path: name}, nil
}

func (f *Filesystem) Resolve(loc Locator) (string, error) {
	if loc.Path == "" {
		return "", errors.New("locator has no path")
	}
	return f.URLPrefix + "/" + loc.Path, nil
}

// Delete removes the backing file. A file that is already gone is
// treated as deleted.
func (f *Filesystem) Delete(loc Locator) error {
	if loc.Path == "" {
		return nil
	}

	err := os.Remove(filepath.Join(f.Dir, loc.Path))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", loc.Path, err)
	}
	return nil
}

// sanitizeFilename strips path components and replaces anything
// outside a conservative character set. Uploaded names are attacker
// controlled and must never influence the directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	s := strings.Trim(b.String(), ".")
	if s == "" {
		return "upload"
	}
	return s
}
