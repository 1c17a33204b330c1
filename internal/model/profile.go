package model

import "time"

// Profile roles
const (
	ProfileRoleAdmin   = "admin"
	ProfileRoleTeacher = "teacher"
	ProfileRoleStudent = "student"
)

// Profile mirrors an auth user in the profiles table
type Profile struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	AvatarURL string    `db:"avatar_url" json:"avatar_url"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == ProfileRoleAdmin
}
