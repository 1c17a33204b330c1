package dto

import "time"

// Post and assignment writes arrive as multipart forms; these mirror the
// text fields so the same validation rules apply.

type PostFormDTO struct {
	Title        string `validate:"required,max=200"`
	Body         string `validate:"max=20000"`
	ReplaceFiles bool
}

type AssignmentFormDTO struct {
	Title        string     `validate:"required,max=200"`
	Instructions string     `validate:"max=20000"`
	DueAt        *time.Time `validate:"omitempty"`
	MaxPoints    int        `validate:"gte=0"`
	ReplaceFiles bool
}

// AssignmentPatchDTO holds only the fields present in the request. An empty
// due_at clears the deadline.
type AssignmentPatchDTO struct {
	Title        *string `validate:"omitempty,max=200"`
	Instructions *string `validate:"omitempty,max=20000"`
	DueAt        *time.Time
	ClearDueAt   bool
	MaxPoints    *int
	ReplaceFiles bool
}

type SubmissionFormDTO struct {
	Content string `validate:"max=20000"`
}

// GradeDTO is used to grade a submission
type GradeDTO struct {
	Grade    *int   `json:"grade" validate:"required,gte=0"`
	Feedback string `json:"feedback" validate:"max=5000"`
}

type QuestionCreateDTO struct {
	Title string `json:"title" validate:"required,max=300"`
	Body  string `json:"body" validate:"max=10000"`
}

type AnswerCreateDTO struct {
	Body string `json:"body" validate:"required,max=10000"`
}

type PlaylistCreateDTO struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type PlaylistFileDTO struct {
	FileID string `json:"file_id" validate:"required,uuid"`
}
