package models

import "time"

// GalleryImage is one stored image row. Exactly one of Path and Data
// is populated, matching the deployment's storage strategy.
type GalleryImage struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	Path       string    `json:"path,omitempty"`
	Data       []byte    `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// GalleryEntry is the listing shape: the row joined with the owning
// project's display name, with the stored content resolved to a
// transportable form (a URL path, or a base64 data URI for inline
// storage).
type GalleryEntry struct {
	GalleryID  int64     `json:"gallery_id"`
	ProjectID  int64     `json:"project_id"`
	ClientName string    `json:"client_name"`
	Image      string    `json:"image"`
	UploadedAt time.Time `json:"uploaded_at"`
}
