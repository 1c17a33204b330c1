package model

import "time"

// File kinds, used in storage keys
const (
	FileKindPost       = "posts"
	FileKindAssignment = "assignments"
	FileKindSubmission = "submissions"
)

// File is an uploaded object plus the public URL stored for it
type File struct {
	ID           string    `db:"id" json:"id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	UploaderID   string    `db:"uploader_id" json:"uploader_id"`
	PostID       *string   `db:"post_id" json:"post_id,omitempty"`
	AssignmentID *string   `db:"assignment_id" json:"assignment_id,omitempty"`
	SubmissionID *string   `db:"submission_id" json:"submission_id,omitempty"`
	Name         string    `db:"name" json:"name"`
	StoragePath  string    `db:"storage_path" json:"storage_path"`
	URL          string    `db:"url" json:"url"`
	ContentType  string    `db:"content_type" json:"content_type"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
