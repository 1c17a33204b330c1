package service

import (
	"context"
	"errors"
	"fmt"

	"classroom/internal/model"
	"classroom/internal/pubsub"
	"classroom/internal/repository"

	"github.com/rs/zerolog"
)

type MemberService interface {
	ListMembers(ctx context.Context, callerID, classID string) ([]model.ClassMember, error)
	ChangeRole(ctx context.Context, callerID, classID, targetUserID, newRole string) (*model.ClassMember, error)
	RemoveMember(ctx context.Context, callerID, classID, targetUserID string) error
}

type memberService struct {
	members repository.MemberRepository
	access  *accessChecker
	events  EventEmitter
	logger  zerolog.Logger
}

func NewMemberService(repos Repositories, events EventEmitter, logger zerolog.Logger) MemberService {
	return &memberService{
		members: repos.Members,
		access:  newAccessChecker(repos),
		events:  events,
		logger:  logger.With().Str("service", "MemberService").Logger(),
	}
}

func (s *memberService) ListMembers(ctx context.Context, callerID, classID string) ([]model.ClassMember, error) {
	if _, err := s.access.load(ctx, callerID, classID); err != nil {
		return nil, err
	}
	members, err := s.members.ListMembers(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	return members, nil
}

// target loads the member being acted on and refuses the class owner.
func (s *memberService) target(ctx context.Context, a *classAccess, targetUserID string) (*model.ClassMember, error) {
	if targetUserID == a.Class.OwnerID {
		return nil, ErrOwnerProtected
	}
	m, err := s.members.GetMember(ctx, a.Class.ID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("getting member: %w", err)
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

func (s *memberService) ChangeRole(ctx context.Context, callerID, classID, targetUserID, newRole string) (*model.ClassMember, error) {
	if !model.ValidMemberRole(newRole) {
		return nil, validation("role must be one of teacher, ta, student")
	}
	a, err := s.access.requireManager(ctx, callerID, classID)
	if err != nil {
		return nil, err
	}
	m, err := s.target(ctx, a, targetUserID)
	if err != nil {
		return nil, err
	}
	if m.Role == newRole {
		return m, nil
	}

	previous := m.Role
	if err := s.members.UpdateRole(ctx, classID, targetUserID, newRole); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("updating role: %w", err)
	}
	m.Role = newRole

	s.logger.Info().Str("class_id", classID).Str("user_id", targetUserID).Str("from", previous).Str("to", newRole).Msg("Member role changed")
	s.events.Emit(ctx, pubsub.EventMemberRoleChange, classID, callerID, map[string]string{
		"user_id": targetUserID,
		"from":    previous,
		"to":      newRole,
	})
	return m, nil
}

func (s *memberService) RemoveMember(ctx context.Context, callerID, classID, targetUserID string) error {
	a, err := s.access.requireManager(ctx, callerID, classID)
	if err != nil {
		return err
	}
	if _, err := s.target(ctx, a, targetUserID); err != nil {
		return err
	}
	if err := s.members.RemoveMember(ctx, classID, targetUserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("removing member: %w", err)
	}
	return nil
}
