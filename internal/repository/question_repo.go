package repository

import (
	"context"

	"classroom/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository covers both questions and their answers
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, q *model.Question) error
	GetQuestionByID(ctx context.Context, id string) (*model.Question, error)
	ListQuestionsByClassID(ctx context.Context, classID string) ([]model.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	DeleteQuestionsByClassID(ctx context.Context, classID string) error

	CreateAnswer(ctx context.Context, a *model.Answer) error
	GetAnswerByID(ctx context.Context, id string) (*model.Answer, error)
	ListAnswersByClassID(ctx context.Context, classID string) ([]model.Answer, error)
	DeleteAnswer(ctx context.Context, id string) error
	DeleteAnswersByQuestionID(ctx context.Context, questionID string) error
	DeleteAnswersByClassID(ctx context.Context, classID string) error
}

type questionRepo struct {
	pool *pgxpool.Pool
}

func NewQuestionRepo(pool *pgxpool.Pool) QuestionRepository {
	return &questionRepo{pool: pool}
}

const questionSelect = `
	SELECT q.id, q.class_id, q.author_id, COALESCE(p.full_name, ''), q.title, q.body, q.created_at
	FROM questions q
	LEFT JOIN profiles p ON p.id = q.author_id
`

const answerSelect = `
	SELECT a.id, a.question_id, a.class_id, a.author_id, COALESCE(p.full_name, ''), a.body, a.created_at
	FROM answers a
	LEFT JOIN profiles p ON p.id = a.author_id
`

func scanQuestion(row pgx.Row, q *model.Question) error {
	return row.Scan(&q.ID, &q.ClassID, &q.AuthorID, &q.AuthorName, &q.Title, &q.Body, &q.CreatedAt)
}

func scanAnswer(row pgx.Row, a *model.Answer) error {
	return row.Scan(&a.ID, &a.QuestionID, &a.ClassID, &a.AuthorID, &a.AuthorName, &a.Body, &a.CreatedAt)
}

func (r *questionRepo) CreateQuestion(ctx context.Context, q *model.Question) error {
	query := `
		INSERT INTO questions (class_id, author_id, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, q.ClassID, q.AuthorID, q.Title, q.Body).Scan(&q.ID, &q.CreatedAt)
}

func (r *questionRepo) GetQuestionByID(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question
	if err := scanQuestion(r.pool.QueryRow(ctx, questionSelect+` WHERE q.id = $1`, id), &q); err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *questionRepo) ListQuestionsByClassID(ctx context.Context, classID string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx, questionSelect+` WHERE q.class_id = $1 ORDER BY q.created_at DESC`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *questionRepo) DeleteQuestion(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return mapMissing(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepo) DeleteQuestionsByClassID(ctx context.Context, classID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE class_id = $1`, classID)
	return err
}

func (r *questionRepo) CreateAnswer(ctx context.Context, a *model.Answer) error {
	query := `
		INSERT INTO answers (question_id, class_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, a.QuestionID, a.ClassID, a.AuthorID, a.Body).Scan(&a.ID, &a.CreatedAt)
}

func (r *questionRepo) GetAnswerByID(ctx context.Context, id string) (*model.Answer, error) {
	var a model.Answer
	if err := scanAnswer(r.pool.QueryRow(ctx, answerSelect+` WHERE a.id = $1`, id), &a); err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ListAnswersByClassID returns answers oldest first so threads read top-down
func (r *questionRepo) ListAnswersByClassID(ctx context.Context, classID string) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx, answerSelect+` WHERE a.class_id = $1 ORDER BY a.created_at ASC`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []model.Answer{}
	for rows.Next() {
		var a model.Answer
		if err := scanAnswer(rows, &a); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (r *questionRepo) DeleteAnswer(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM answers WHERE id = $1`, id)
	if err != nil {
		return mapMissing(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepo) DeleteAnswersByQuestionID(ctx context.Context, questionID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM answers WHERE question_id = $1`, questionID)
	return err
}

func (r *questionRepo) DeleteAnswersByClassID(ctx context.Context, classID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM answers WHERE class_id = $1`, classID)
	return err
}
