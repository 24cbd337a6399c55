package models

import "time"

// Project is a client engagement record. ClientName, Description and
// Status are required for any persisted row; EndUser and Duration are
// optional and default to empty.
type Project struct {
	ID          int64     `json:"id"`
	ClientName  string    `json:"client_name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	EndUser     string    `json:"end_user,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SaveProjectRequest creates a new project when ID is zero or absent,
// otherwise updates the existing row in place.
type SaveProjectRequest struct {
	ID          int64  `json:"id"`
	ClientName  string `json:"client_name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Status      string `json:"status" binding:"required"`
	EndUser     string `json:"end_user"`
	Duration    string `json:"duration"`
}

// ProjectWithGallery is a project with its gallery entries nested,
// newest image first.
type ProjectWithGallery struct {
	Project
	Gallery []GalleryEntry `json:"gallery"`
}
