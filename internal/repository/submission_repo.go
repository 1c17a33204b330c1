package repository

import (
	"context"

	"classroom/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubmissionRepository interface {
	UpsertSubmission(ctx context.Context, s *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	GetSubmissionByStudent(ctx context.Context, assignmentID, studentID string) (*model.Submission, error)
	ListSubmissionsByAssignmentID(ctx context.Context, assignmentID string) ([]model.Submission, error)
	GradeSubmission(ctx context.Context, s *model.Submission) error
	DeleteSubmissionsByAssignmentID(ctx context.Context, assignmentID string) error
	DeleteSubmissionsByClassID(ctx context.Context, classID string) error
}

type submissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepo{pool: pool}
}

const submissionSelect = `
	SELECT s.id, s.assignment_id, s.class_id, s.student_id, COALESCE(p.full_name, ''), s.content, s.late,
	       s.grade, s.feedback, s.graded_by, s.graded_at, s.submitted_at, s.updated_at
	FROM submissions s
	LEFT JOIN profiles p ON p.id = s.student_id
`

func scanSubmission(row pgx.Row, s *model.Submission) error {
	return row.Scan(&s.ID, &s.AssignmentID, &s.ClassID, &s.StudentID, &s.StudentName, &s.Content, &s.Late,
		&s.Grade, &s.Feedback, &s.GradedBy, &s.GradedAt, &s.SubmittedAt, &s.UpdatedAt)
}

// UpsertSubmission stores a student's work. Resubmitting replaces content,
// refreshes the late flag and clears any previous grade.
func (r *submissionRepo) UpsertSubmission(ctx context.Context, s *model.Submission) error {
	query := `
		INSERT INTO submissions (assignment_id, class_id, student_id, content, late)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT submissions_assignment_student_key DO UPDATE
		SET content = EXCLUDED.content,
		    late = EXCLUDED.late,
		    grade = NULL,
		    feedback = '',
		    graded_by = NULL,
		    graded_at = NULL,
		    submitted_at = NOW(),
		    updated_at = NOW()
		RETURNING id, submitted_at, updated_at
	`
	s.Grade, s.GradedBy, s.GradedAt, s.Feedback = nil, nil, nil, ""
	return r.pool.QueryRow(ctx, query, s.AssignmentID, s.ClassID, s.StudentID, s.Content, s.Late).
		Scan(&s.ID, &s.SubmittedAt, &s.UpdatedAt)
}

func (r *submissionRepo) getOne(ctx context.Context, where string, args ...any) (*model.Submission, error) {
	var s model.Submission
	if err := scanSubmission(r.pool.QueryRow(ctx, submissionSelect+` WHERE `+where, args...), &s); err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	return r.getOne(ctx, `s.id = $1`, id)
}

func (r *submissionRepo) GetSubmissionByStudent(ctx context.Context, assignmentID, studentID string) (*model.Submission, error) {
	return r.getOne(ctx, `s.assignment_id = $1 AND s.student_id = $2`, assignmentID, studentID)
}

func (r *submissionRepo) ListSubmissionsByAssignmentID(ctx context.Context, assignmentID string) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx, submissionSelect+` WHERE s.assignment_id = $1 ORDER BY s.submitted_at ASC`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := scanSubmission(rows, &s); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

func (r *submissionRepo) GradeSubmission(ctx context.Context, s *model.Submission) error {
	query := `
		UPDATE submissions
		SET grade = $1, feedback = $2, graded_by = $3, graded_at = NOW(), updated_at = NOW()
		WHERE id = $4
		RETURNING graded_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query, s.Grade, s.Feedback, s.GradedBy, s.ID).Scan(&s.GradedAt, &s.UpdatedAt)
	if noRow(err) {
		return ErrNotFound
	}
	return err
}

func (r *submissionRepo) DeleteSubmissionsByAssignmentID(ctx context.Context, assignmentID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE assignment_id = $1`, assignmentID)
	return err
}

func (r *submissionRepo) DeleteSubmissionsByClassID(ctx context.Context, classID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE class_id = $1`, classID)
	return err
}
