package service

import (
	"context"
	"fmt"

	"classroom/internal/model"
	"classroom/internal/repository"
)

// EventEmitter publishes best-effort domain events.
type EventEmitter interface {
	Emit(ctx context.Context, eventType, classID, actorID string, data any)
}

// classAccess is what a caller may do inside one class.
type classAccess struct {
	Class   *model.Class
	Member  *model.ClassMember // nil for admins who are not enrolled
	IsAdmin bool
}

// Role is the caller's class role, or empty for a non-enrolled admin.
func (a *classAccess) Role() string {
	if a.Member == nil {
		return ""
	}
	return a.Member.Role
}

// CanManage covers membership changes and editing or deleting the class.
func (a *classAccess) CanManage() bool {
	return a.IsAdmin || a.Role() == model.MemberRoleTeacher
}

// IsStaff covers creating content and grading.
func (a *classAccess) IsStaff() bool {
	switch a.Role() {
	case model.MemberRoleTeacher, model.MemberRoleTA:
		return true
	}
	return a.IsAdmin
}

// Repositories bundles the table accessors shared by the services.
type Repositories struct {
	Profiles    repository.ProfileRepository
	Classes     repository.ClassRepository
	Members     repository.MemberRepository
	Posts       repository.PostRepository
	Assignments repository.AssignmentRepository
	Submissions repository.SubmissionRepository
	Files       repository.FileRepository
	Questions   repository.QuestionRepository
	Playlists   repository.PlaylistRepository
}

type accessChecker struct {
	profiles repository.ProfileRepository
	classes  repository.ClassRepository
	members  repository.MemberRepository
}

func newAccessChecker(repos Repositories) *accessChecker {
	return &accessChecker{profiles: repos.Profiles, classes: repos.Classes, members: repos.Members}
}

// load resolves the caller's standing in a class. Non-members who are not
// admins get ErrNotMember.
func (c *accessChecker) load(ctx context.Context, userID, classID string) (*classAccess, error) {
	class, err := c.classes.GetClassByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("getting class: %w", err)
	}
	if class == nil {
		return nil, ErrClassNotFound
	}
	member, err := c.members.GetMember(ctx, classID, userID)
	if err != nil {
		return nil, fmt.Errorf("getting membership: %w", err)
	}
	access := &classAccess{Class: class, Member: member}
	if member == nil {
		admin, err := c.isAdmin(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, ErrNotMember
		}
		access.IsAdmin = true
		return access, nil
	}
	// Profile role only matters when the class role is not already enough.
	if member.Role != model.MemberRoleTeacher {
		if access.IsAdmin, err = c.isAdmin(ctx, userID); err != nil {
			return nil, err
		}
	}
	return access, nil
}

func (c *accessChecker) isAdmin(ctx context.Context, userID string) (bool, error) {
	p, err := c.profiles.GetProfileByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("getting profile: %w", err)
	}
	return p != nil && p.IsAdmin(), nil
}

func (c *accessChecker) requireStaff(ctx context.Context, userID, classID string) (*classAccess, error) {
	a, err := c.load(ctx, userID, classID)
	if err != nil {
		return nil, err
	}
	if !a.IsStaff() {
		return nil, ErrForbidden
	}
	return a, nil
}

func (c *accessChecker) requireManager(ctx context.Context, userID, classID string) (*classAccess, error) {
	a, err := c.load(ctx, userID, classID)
	if err != nil {
		return nil, err
	}
	if !a.CanManage() {
		return nil, ErrForbidden
	}
	return a, nil
}
