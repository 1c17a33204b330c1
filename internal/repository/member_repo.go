package repository

import (
	"context"

	"classroom/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository interface {
	AddMember(ctx context.Context, classID, userID, role string) error
	GetMember(ctx context.Context, classID, userID string) (*model.ClassMember, error)
	ListMembers(ctx context.Context, classID string) ([]model.ClassMember, error)
	UpdateRole(ctx context.Context, classID, userID, role string) error
	RemoveMember(ctx context.Context, classID, userID string) error
	DeleteMembersByClassID(ctx context.Context, classID string) error
}

type memberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepo(pool *pgxpool.Pool) MemberRepository {
	return &memberRepo{pool: pool}
}

const memberSelect = `
	SELECT m.class_id, m.user_id, m.role, COALESCE(p.full_name, ''), COALESCE(p.email, ''), COALESCE(p.avatar_url, ''), m.joined_at
	FROM class_members m
	LEFT JOIN profiles p ON p.id = m.user_id
`

func scanMember(row pgx.Row, m *model.ClassMember) error {
	return row.Scan(&m.ClassID, &m.UserID, &m.Role, &m.FullName, &m.Email, &m.AvatarURL, &m.JoinedAt)
}

// AddMember inserts a membership row; an existing membership is ErrDuplicate.
func (r *memberRepo) AddMember(ctx context.Context, classID, userID, role string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO class_members (class_id, user_id, role) VALUES ($1, $2, $3)`, classID, userID, role)
	return mapDuplicate(err)
}

func (r *memberRepo) GetMember(ctx context.Context, classID, userID string) (*model.ClassMember, error) {
	var m model.ClassMember
	err := scanMember(r.pool.QueryRow(ctx, memberSelect+` WHERE m.class_id = $1 AND m.user_id = $2`, classID, userID), &m)
	if err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListMembers returns teachers first, then TAs, then students, each by name
func (r *memberRepo) ListMembers(ctx context.Context, classID string) ([]model.ClassMember, error) {
	query := memberSelect + `
		WHERE m.class_id = $1
		ORDER BY CASE m.role WHEN 'teacher' THEN 0 WHEN 'ta' THEN 1 ELSE 2 END, p.full_name ASC
	`
	rows, err := r.pool.Query(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []model.ClassMember{}
	for rows.Next() {
		var m model.ClassMember
		if err := scanMember(rows, &m); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *memberRepo) UpdateRole(ctx context.Context, classID, userID, role string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE class_members SET role = $1 WHERE class_id = $2 AND user_id = $3`, role, classID, userID)
	if err != nil {
		return mapMissing(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memberRepo) RemoveMember(ctx context.Context, classID, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM class_members WHERE class_id = $1 AND user_id = $2`, classID, userID)
	if err != nil {
		return mapMissing(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memberRepo) DeleteMembersByClassID(ctx context.Context, classID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM class_members WHERE class_id = $1`, classID)
	return err
}
