package model

import "time"

// Class member roles
const (
	MemberRoleTeacher = "teacher"
	MemberRoleTA      = "ta"
	MemberRoleStudent = "student"
)

// Class text limits, in characters
const (
	MaxClassNameLength    = 120
	MaxClassSectionLength = 60
)

// ValidMemberRole reports whether role can be stored in class_members.role.
func ValidMemberRole(role string) bool {
	switch role {
	case MemberRoleTeacher, MemberRoleTA, MemberRoleStudent:
		return true
	}
	return false
}

// Class is a course/section owning posts, assignments and members
type Class struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Section     string    `db:"section" json:"section"`
	JoinCode    string    `db:"join_code" json:"join_code"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ClassMember is a row of class_members joined with the member's profile
type ClassMember struct {
	ClassID   string    `db:"class_id" json:"class_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Role      string    `db:"role" json:"role"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	AvatarURL string    `db:"avatar_url" json:"avatar_url"`
	JoinedAt  time.Time `db:"joined_at" json:"joined_at"`
}

// MemberClass is a class as seen by one of its members
type MemberClass struct {
	Class
	Role        string `db:"role" json:"role"`
	MemberCount int    `db:"member_count" json:"member_count"`
}

// ClassSummary is a class row for the admin dashboard
type ClassSummary struct {
	Class
	OwnerName   string `db:"owner_name" json:"owner_name"`
	MemberCount int    `db:"member_count" json:"member_count"`
}

// PlatformStats holds the admin dashboard counters
type PlatformStats struct {
	Profiles    int `json:"profiles"`
	Classes     int `json:"classes"`
	Members     int `json:"members"`
	Submissions int `json:"submissions"`
}
