package repository

import (
	"context"

	"classroom/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository interface {
	GetProfileByID(ctx context.Context, id string) (*model.Profile, error)
	UpsertProfile(ctx context.Context, p *model.Profile) error
	UpdateProfile(ctx context.Context, p *model.Profile) error
	SetRole(ctx context.Context, id, role string) error
}

type profileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepo{pool: pool}
}

const profileColumns = `id, email, full_name, avatar_url, role, created_at, updated_at`

func scanProfile(row pgx.Row, p *model.Profile) error {
	return row.Scan(&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.Role, &p.CreatedAt, &p.UpdatedAt)
}

func (r *profileRepo) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id), &p)
	if err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// UpsertProfile inserts the profile or refreshes email/name/avatar. The role
// of an existing profile is never touched here.
func (r *profileRepo) UpsertProfile(ctx context.Context, p *model.Profile) error {
	if p.Role == "" {
		p.Role = model.ProfileRoleStudent
	}
	query := `
		INSERT INTO profiles (id, email, full_name, avatar_url, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    full_name = CASE WHEN EXCLUDED.full_name = '' THEN profiles.full_name ELSE EXCLUDED.full_name END,
		    avatar_url = CASE WHEN EXCLUDED.avatar_url = '' THEN profiles.avatar_url ELSE EXCLUDED.avatar_url END,
		    updated_at = NOW()
		RETURNING ` + profileColumns
	return scanProfile(r.pool.QueryRow(ctx, query, p.ID, p.Email, p.FullName, p.AvatarURL, p.Role), p)
}

func (r *profileRepo) UpdateProfile(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $1, avatar_url = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + profileColumns
	err := scanProfile(r.pool.QueryRow(ctx, query, p.FullName, p.AvatarURL, p.ID), p)
	if noRow(err) {
		return ErrNotFound
	}
	return err
}

func (r *profileRepo) SetRole(ctx context.Context, id, role string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE profiles SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
	if err != nil {
		return mapMissing(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
