package database

import (
	"time"
)

// Project represents a construction site owning a set of photos.
type Project struct {
	ID           string
	Name         string
	Address      string
	ManagerName  string
	ManagerPhone string
	ManagerEmail string
	CreatedAt    time.Time
}

// Photo represents one uploaded image belonging to exactly one project.
// Filename is the display name shown to users; Filepath is where the
// bytes live on disk. The two are kept in sync by the rename path.
type Photo struct {
	ID          string
	ProjectID   string
	Filename    string
	Filepath    string
	UploadedAt  time.Time
	TakenAt     *time.Time // date the photo was taken, if known
	Location    string
	Description string
}

// PhotoFields carries a partial update applied to one or more photos.
// Nil fields are left untouched. TakenAt is a double pointer so a batch
// edit can distinguish "don't touch" (nil) from "clear the date"
// (pointer to nil).
type PhotoFields struct {
	TakenAt     **time.Time
	Location    *string
	Description *string
}

// PhotoOrder selects the listing order for a project's photos.
type PhotoOrder string

const (
	// OrderUploadedDesc lists newest uploads first (gallery view).
	OrderUploadedDesc PhotoOrder = "uploaded_desc"
	// OrderUploadedAsc lists oldest uploads first (album export).
	OrderUploadedAsc PhotoOrder = "uploaded_asc"
)
