package repository

import (
	"context"

	"classroom/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostRepository interface {
	CreatePost(ctx context.Context, p *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListPostsByClassID(ctx context.Context, classID string) ([]model.Post, error)
	UpdatePost(ctx context.Context, p *model.Post) error
	DeletePost(ctx context.Context, id string) error
	DeletePostsByClassID(ctx context.Context, classID string) error
}

type postRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) PostRepository {
	return &postRepo{pool: pool}
}

const postColumns = `id, class_id, author_id, title, body, created_at, updated_at`

func scanPost(row pgx.Row, p *model.Post) error {
	return row.Scan(&p.ID, &p.ClassID, &p.AuthorID, &p.Title, &p.Body, &p.CreatedAt, &p.UpdatedAt)
}

func (r *postRepo) CreatePost(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (class_id, author_id, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + postColumns
	return scanPost(r.pool.QueryRow(ctx, query, p.ClassID, p.AuthorID, p.Title, p.Body), p)
}

func (r *postRepo) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id), &p); err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListPostsByClassID returns the class stream, newest first
func (r *postRepo) ListPostsByClassID(ctx context.Context, classID string) ([]model.Post, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM posts WHERE class_id = $1 ORDER BY created_at DESC`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postRepo) UpdatePost(ctx context.Context, p *model.Post) error {
	query := `
		UPDATE posts SET title = $1, body = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + postColumns
	err := scanPost(r.pool.QueryRow(ctx, query, p.Title, p.Body, p.ID), p)
	if noRow(err) {
		return ErrNotFound
	}
	return err
}

func (r *postRepo) DeletePost(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return mapMissing(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepo) DeletePostsByClassID(ctx context.Context, classID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE class_id = $1`, classID)
	return err
}
