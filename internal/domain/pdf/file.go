package pdf

import (
	"time"

	"github.com/google/uuid"
)

// GeneratedFile represents one PDF artifact on disk. The identifier doubles
// as the filename stem and the URL path segment; it is never reused for a
// different file within a process lifetime.
type GeneratedFile struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Size      int64
}

// Age returns how long ago the file was written.
func (f GeneratedFile) Age(now time.Time) time.Duration {
	return now.Sub(f.CreatedAt)
}

// Expired reports whether the file has outlived the retention window.
func (f GeneratedFile) Expired(now time.Time, retention time.Duration) bool {
	return f.Age(now) >= retention
}

// Filename returns the on-disk name for the file.
func (f GeneratedFile) Filename() string {
	return f.ID.String() + ".pdf"
}
