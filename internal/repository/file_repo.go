package repository

import (
	"context"

	"classroom/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FileRepository interface {
	CreateFile(ctx context.Context, f *model.File) error
	GetFileByID(ctx context.Context, id string) (*model.File, error)
	ListFilesByClassID(ctx context.Context, classID string) ([]model.File, error)
	ListFilesByPostID(ctx context.Context, postID string) ([]model.File, error)
	ListFilesByAssignmentID(ctx context.Context, assignmentID string) ([]model.File, error)
	ListFilesBySubmissionID(ctx context.Context, submissionID string) ([]model.File, error)
	DeleteFiles(ctx context.Context, ids []string) error
}

type fileRepo struct {
	pool *pgxpool.Pool
}

func NewFileRepo(pool *pgxpool.Pool) FileRepository {
	return &fileRepo{pool: pool}
}

const fileColumns = `f.id, f.class_id, f.uploader_id, f.post_id, f.assignment_id, f.submission_id, f.name, f.storage_path, f.url, f.content_type, f.size_bytes, f.created_at`

func fileFields(f *model.File) []any {
	return []any{&f.ID, &f.ClassID, &f.UploaderID, &f.PostID, &f.AssignmentID, &f.SubmissionID,
		&f.Name, &f.StoragePath, &f.URL, &f.ContentType, &f.SizeBytes, &f.CreatedAt}
}

func (r *fileRepo) CreateFile(ctx context.Context, f *model.File) error {
	query := `
		INSERT INTO files AS f (class_id, uploader_id, post_id, assignment_id, submission_id, name, storage_path, url, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + fileColumns
	return r.pool.QueryRow(ctx, query, f.ClassID, f.UploaderID, f.PostID, f.AssignmentID, f.SubmissionID,
		f.Name, f.StoragePath, f.URL, f.ContentType, f.SizeBytes).Scan(fileFields(f)...)
}

func (r *fileRepo) GetFileByID(ctx context.Context, id string) (*model.File, error) {
	var f model.File
	if err := r.pool.QueryRow(ctx, `SELECT `+fileColumns+` FROM files f WHERE f.id = $1`, id).Scan(fileFields(&f)...); err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) list(ctx context.Context, where string, arg any) ([]model.File, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+fileColumns+` FROM files f WHERE `+where+` ORDER BY f.created_at ASC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []model.File{}
	for rows.Next() {
		var f model.File
		if err := rows.Scan(fileFields(&f)...); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// ListFilesByClassID returns every file of a class regardless of its parent
func (r *fileRepo) ListFilesByClassID(ctx context.Context, classID string) ([]model.File, error) {
	return r.list(ctx, `f.class_id = $1`, classID)
}

func (r *fileRepo) ListFilesByPostID(ctx context.Context, postID string) ([]model.File, error) {
	return r.list(ctx, `f.post_id = $1`, postID)
}

func (r *fileRepo) ListFilesByAssignmentID(ctx context.Context, assignmentID string) ([]model.File, error) {
	return r.list(ctx, `f.assignment_id = $1`, assignmentID)
}

func (r *fileRepo) ListFilesBySubmissionID(ctx context.Context, submissionID string) ([]model.File, error) {
	return r.list(ctx, `f.submission_id = $1`, submissionID)
}

func (r *fileRepo) DeleteFiles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id = ANY($1::uuid[])`, ids)
	return err
}
