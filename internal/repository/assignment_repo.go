package repository

import (
	"context"

	"classroom/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, a *model.Assignment) error
	GetAssignmentByID(ctx context.Context, id string) (*model.Assignment, error)
	ListAssignmentsByClassID(ctx context.Context, classID string) ([]model.Assignment, error)
	UpdateAssignment(ctx context.Context, a *model.Assignment) error
	DeleteAssignment(ctx context.Context, id string) error
	DeleteAssignmentsByClassID(ctx context.Context, classID string) error
}

type assignmentRepo struct {
	pool *pgxpool.Pool
}

func NewAssignmentRepo(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepo{pool: pool}
}

const assignmentColumns = `id, class_id, author_id, title, instructions, due_at, max_points, created_at, updated_at`

func scanAssignment(row pgx.Row, a *model.Assignment) error {
	return row.Scan(&a.ID, &a.ClassID, &a.AuthorID, &a.Title, &a.Instructions, &a.DueAt, &a.MaxPoints, &a.CreatedAt, &a.UpdatedAt)
}

func (r *assignmentRepo) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	query := `
		INSERT INTO assignments (class_id, author_id, title, instructions, due_at, max_points)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + assignmentColumns
	return scanAssignment(r.pool.QueryRow(ctx, query, a.ClassID, a.AuthorID, a.Title, a.Instructions, a.DueAt, a.MaxPoints), a)
}

func (r *assignmentRepo) GetAssignmentByID(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	if err := scanAssignment(r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id), &a); err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ListAssignmentsByClassID orders by due date, undated work last
func (r *assignmentRepo) ListAssignmentsByClassID(ctx context.Context, classID string) ([]model.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE class_id = $1 ORDER BY due_at ASC NULLS LAST, created_at DESC`
	rows, err := r.pool.Query(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []model.Assignment{}
	for rows.Next() {
		var a model.Assignment
		if err := scanAssignment(rows, &a); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *assignmentRepo) UpdateAssignment(ctx context.Context, a *model.Assignment) error {
	query := `
		UPDATE assignments
		SET title = $1, instructions = $2, due_at = $3, max_points = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + assignmentColumns
	err := scanAssignment(r.pool.QueryRow(ctx, query, a.Title, a.Instructions, a.DueAt, a.MaxPoints, a.ID), a)
	if noRow(err) {
		return ErrNotFound
	}
	return err
}

func (r *assignmentRepo) DeleteAssignment(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return mapMissing(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assignmentRepo) DeleteAssignmentsByClassID(ctx context.Context, classID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE class_id = $1`, classID)
	return err
}
