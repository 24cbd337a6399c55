// Package storage abstracts where image bytes are durably kept. Two
// mutually exclusive strategies exist: a filesystem directory (the row
// stores a relative path) and inline database storage (the row stores
// the bytes). One backend is selected at startup and never mixed.
package storage

// Locator identifies stored content. Exactly one field is populated:
// Path for the filesystem backend, Data for the inline backend.
type Locator struct {
	Path string
	Data []byte
}

// Inline reports whether the locator carries the bytes themselves
// rather than a path reference.
func (l Locator) Inline() bool {
	return l.Path == ""
}

// Backend stores, resolves and deletes image content.
type Backend interface {
	// Store persists the content and returns its locator. The original
	// filename is only a naming hint; backends must not trust it.
	Store(data []byte, originalName string) (Locator, error)

	// Resolve turns a locator into a transportable representation: a
	// fetchable URL path for filesystem storage, or a base64 data URI
	// for inline storage.
	Resolve(loc Locator) (string, error)

	// Delete removes the physical content. Deleting content that is
	// already gone is not an error; callers rely on idempotent cleanup.
	Delete(loc Locator) error

	Name() string
}
