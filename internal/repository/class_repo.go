package repository

import (
	"context"

	"classroom/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// JoinCodeConstraint names the unique constraint guarding classes.join_code.
const JoinCodeConstraint = "classes_join_code_key"

// ClassRepository defines the interface for interacting with class data
type ClassRepository interface {
	CreateClass(ctx context.Context, c *model.Class) error
	GetClassByID(ctx context.Context, id string) (*model.Class, error)
	GetClassByJoinCode(ctx context.Context, code string) (*model.Class, error)
	ListClassesByUserID(ctx context.Context, userID string) ([]model.MemberClass, error)
	ListAllClasses(ctx context.Context) ([]model.ClassSummary, error)
	UpdateClass(ctx context.Context, c *model.Class) error
	UpdateJoinCode(ctx context.Context, id, code string) error
	DeleteClass(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*model.PlatformStats, error)
}

type classRepo struct {
	pool *pgxpool.Pool
}

// NewClassRepo creates a new ClassRepository
func NewClassRepo(pool *pgxpool.Pool) ClassRepository {
	return &classRepo{pool: pool}
}

const classColumns = `c.id, c.owner_id, c.name, c.description, c.section, c.join_code, c.created_at, c.updated_at`

func classFields(c *model.Class) []any {
	return []any{&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.Section, &c.JoinCode, &c.CreatedAt, &c.UpdatedAt}
}

// CreateClass inserts a class. A join code collision is reported as ErrDuplicate.
func (r *classRepo) CreateClass(ctx context.Context, c *model.Class) error {
	query := `
		INSERT INTO classes AS c (owner_id, name, description, section, join_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + classColumns
	err := r.pool.QueryRow(ctx, query, c.OwnerID, c.Name, c.Description, c.Section, c.JoinCode).Scan(classFields(c)...)
	return mapDuplicate(err)
}

func (r *classRepo) getOne(ctx context.Context, where string, arg any) (*model.Class, error) {
	var c model.Class
	err := r.pool.QueryRow(ctx, `SELECT `+classColumns+` FROM classes c WHERE `+where, arg).Scan(classFields(&c)...)
	if err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *classRepo) GetClassByID(ctx context.Context, id string) (*model.Class, error) {
	return r.getOne(ctx, `c.id = $1`, id)
}

func (r *classRepo) GetClassByJoinCode(ctx context.Context, code string) (*model.Class, error) {
	return r.getOne(ctx, `c.join_code = $1`, code)
}

// ListClassesByUserID returns the classes a user belongs to with their role
func (r *classRepo) ListClassesByUserID(ctx context.Context, userID string) ([]model.MemberClass, error) {
	query := `
		SELECT ` + classColumns + `, m.role,
		       (SELECT COUNT(*) FROM class_members cm WHERE cm.class_id = c.id)
		FROM classes c
		JOIN class_members m ON m.class_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.MemberClass{}
	for rows.Next() {
		var mc model.MemberClass
		dest := append(classFields(&mc.Class), &mc.Role, &mc.MemberCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		classes = append(classes, mc)
	}
	return classes, rows.Err()
}

func (r *classRepo) ListAllClasses(ctx context.Context) ([]model.ClassSummary, error) {
	query := `
		SELECT ` + classColumns + `, COALESCE(p.full_name, ''),
		       (SELECT COUNT(*) FROM class_members cm WHERE cm.class_id = c.id)
		FROM classes c
		LEFT JOIN profiles p ON p.id = c.owner_id
		ORDER BY c.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.ClassSummary{}
	for rows.Next() {
		var cs model.ClassSummary
		dest := append(classFields(&cs.Class), &cs.OwnerName, &cs.MemberCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		classes = append(classes, cs)
	}
	return classes, rows.Err()
}

func (r *classRepo) UpdateClass(ctx context.Context, c *model.Class) error {
	query := `
		UPDATE classes AS c
		SET name = $1, description = $2, section = $3, updated_at = NOW()
		WHERE c.id = $4
		RETURNING ` + classColumns
	err := r.pool.QueryRow(ctx, query, c.Name, c.Description, c.Section, c.ID).Scan(classFields(c)...)
	if noRow(err) {
		return ErrNotFound
	}
	return err
}

func (r *classRepo) UpdateJoinCode(ctx context.Context, id, code string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE classes SET join_code = $1, updated_at = NOW() WHERE id = $2`, code, id)
	if err != nil {
		return mapDuplicate(mapMissing(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *classRepo) DeleteClass(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return mapMissing(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *classRepo) GetStats(ctx context.Context) (*model.PlatformStats, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM profiles),
		       (SELECT COUNT(*) FROM classes),
		       (SELECT COUNT(*) FROM class_members),
		       (SELECT COUNT(*) FROM submissions)
	`
	var s model.PlatformStats
	if err := r.pool.QueryRow(ctx, query).Scan(&s.Profiles, &s.Classes, &s.Members, &s.Submissions); err != nil {
		return nil, err
	}
	return &s, nil
}
