package model

import "time"

// Assignment is gradable coursework
type Assignment struct {
	ID           string     `db:"id" json:"id"`
	ClassID      string     `db:"class_id" json:"class_id"`
	AuthorID     string     `db:"author_id" json:"author_id"`
	Title        string     `db:"title" json:"title"`
	Instructions string     `db:"instructions" json:"instructions"`
	DueAt        *time.Time `db:"due_at" json:"due_at,omitempty"`
	MaxPoints    int        `db:"max_points" json:"max_points"`
	Files        []File     `json:"files"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsPastDue reports whether at is after the due date.
func (a *Assignment) IsPastDue(at time.Time) bool {
	return a.DueAt != nil && at.After(*a.DueAt)
}

// Submission is a student's work for an assignment
type Submission struct {
	ID           string     `db:"id" json:"id"`
	AssignmentID string     `db:"assignment_id" json:"assignment_id"`
	ClassID      string     `db:"class_id" json:"class_id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	StudentName  string     `db:"student_name" json:"student_name,omitempty"`
	Content      string     `db:"content" json:"content"`
	Late         bool       `db:"late" json:"late"`
	Grade        *int       `db:"grade" json:"grade,omitempty"`
	Feedback     string     `db:"feedback" json:"feedback"`
	GradedBy     *string    `db:"graded_by" json:"graded_by,omitempty"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	Files        []File     `json:"files"`
	SubmittedAt  time.Time  `db:"submitted_at" json:"submitted_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
