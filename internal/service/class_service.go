package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"classroom/internal/model"
	"classroom/internal/pubsub"
	"classroom/internal/repository"
	"classroom/internal/util"

	"github.com/rs/zerolog"
)

const joinCodeAttempts = 5

// ClassService defines the interface for class lifecycle operations
type ClassService interface {
	CreateClass(ctx context.Context, ownerID, name, description, section string) (*model.Class, error)
	GetClass(ctx context.Context, callerID, classID string) (*model.Class, error)
	ListClassesForUser(ctx context.Context, userID string) ([]model.MemberClass, error)
	UpdateClass(ctx context.Context, callerID, classID, name, description, section string) (*model.Class, error)
	RegenerateJoinCode(ctx context.Context, callerID, classID string) (string, error)
	JoinClass(ctx context.Context, userID, joinCode string) (*model.Class, error)
	LeaveClass(ctx context.Context, userID, classID string) error
	// DeleteClass cascades through every child table. The report is returned
	// even when the final class delete fails.
	DeleteClass(ctx context.Context, callerID, classID string) (*model.DeletionReport, error)
}

type classService struct {
	repos  Repositories
	access *accessChecker
	files  FileService
	events EventEmitter
	logger zerolog.Logger
	// newJoinCode is swapped in tests to force collisions
	newJoinCode func() (string, error)
}

// NewClassService creates a new ClassService
func NewClassService(repos Repositories, files FileService, events EventEmitter, logger zerolog.Logger) ClassService {
	return &classService{
		repos:       repos,
		access:      newAccessChecker(repos),
		files:       files,
		events:      events,
		logger:      logger.With().Str("service", "ClassService").Logger(),
		newJoinCode: util.GenerateJoinCode,
	}
}

func validateClassFields(name, description, section string) (string, string, string, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	section = strings.TrimSpace(section)
	switch {
	case name == "":
		return "", "", "", validation("class name is required")
	case len([]rune(name)) > model.MaxClassNameLength:
		return "", "", "", validation(fmt.Sprintf("class name must be at most %d characters", model.MaxClassNameLength))
	case len([]rune(section)) > model.MaxClassSectionLength:
		return "", "", "", validation(fmt.Sprintf("section must be at most %d characters", model.MaxClassSectionLength))
	}
	return name, description, section, nil
}

func (s *classService) CreateClass(ctx context.Context, ownerID, name, description, section string) (*model.Class, error) {
	name, description, section, err := validateClassFields(name, description, section)
	if err != nil {
		return nil, err
	}

	class := &model.Class{OwnerID: ownerID, Name: name, Description: description, Section: section}
	for attempt := 1; ; attempt++ {
		if class.JoinCode, err = s.newJoinCode(); err != nil {
			return nil, fmt.Errorf("generating join code: %w", err)
		}
		err = s.repos.Classes.CreateClass(ctx, class)
		if err == nil {
			break
		}
		if repository.IsConstraintViolation(err, repository.JoinCodeConstraint) && attempt < joinCodeAttempts {
			s.logger.Debug().Int("attempt", attempt).Msg("Join code collision, retrying")
			continue
		}
		s.logger.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to create class")
		return nil, fmt.Errorf("creating class: %w", err)
	}

	if err := s.repos.Members.AddMember(ctx, class.ID, ownerID, model.MemberRoleTeacher); err != nil {
		s.logger.Error().Err(err).Str("class_id", class.ID).Msg("Failed to enroll owner, removing class")
		if delErr := s.repos.Classes.DeleteClass(ctx, class.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("class_id", class.ID).Msg("Failed to remove class without owner")
		}
		return nil, fmt.Errorf("enrolling owner: %w", err)
	}

	s.logger.Info().Str("class_id", class.ID).Str("owner_id", ownerID).Msg("Class created")
	return class, nil
}

func (s *classService) GetClass(ctx context.Context, callerID, classID string) (*model.Class, error) {
	a, err := s.access.load(ctx, callerID, classID)
	if err != nil {
		return nil, err
	}
	if !a.IsStaff() {
		a.Class.JoinCode = ""
	}
	return a.Class, nil
}

func (s *classService) ListClassesForUser(ctx context.Context, userID string) ([]model.MemberClass, error) {
	classes, err := s.repos.Classes.ListClassesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing classes: %w", err)
	}
	return classes, nil
}

func (s *classService) UpdateClass(ctx context.Context, callerID, classID, name, description, section string) (*model.Class, error) {
	a, err := s.access.requireManager(ctx, callerID, classID)
	if err != nil {
		return nil, err
	}
	if a.Class.Name, a.Class.Description, a.Class.Section, err = validateClassFields(name, description, section); err != nil {
		return nil, err
	}
	if err := s.repos.Classes.UpdateClass(ctx, a.Class); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("updating class: %w", err)
	}
	return a.Class, nil
}

func (s *classService) RegenerateJoinCode(ctx context.Context, callerID, classID string) (string, error) {
	if _, err := s.access.requireManager(ctx, callerID, classID); err != nil {
		return "", err
	}
	for attempt := 1; ; attempt++ {
		code, err := s.newJoinCode()
		if err != nil {
			return "", fmt.Errorf("generating join code: %w", err)
		}
		err = s.repos.Classes.UpdateJoinCode(ctx, classID, code)
		switch {
		case err == nil:
			return code, nil
		case errors.Is(err, repository.ErrNotFound):
			return "", ErrClassNotFound
		case repository.IsConstraintViolation(err, repository.JoinCodeConstraint) && attempt < joinCodeAttempts:
			continue
		default:
			return "", fmt.Errorf("updating join code: %w", err)
		}
	}
}

func (s *classService) JoinClass(ctx context.Context, userID, joinCode string) (*model.Class, error) {
	code := util.NormalizeJoinCode(joinCode)
	if len(code) != util.JoinCodeLength {
		return nil, ErrInvalidJoinCode
	}
	class, err := s.repos.Classes.GetClassByJoinCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("looking up join code: %w", err)
	}
	if class == nil {
		return nil, ErrInvalidJoinCode
	}
	if err := s.repos.Members.AddMember(ctx, class.ID, userID, model.MemberRoleStudent); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("joining class: %w", err)
	}
	s.events.Emit(ctx, pubsub.EventMemberJoined, class.ID, userID, map[string]string{"role": model.MemberRoleStudent})
	return class, nil
}

func (s *classService) LeaveClass(ctx context.Context, userID, classID string) error {
	class, err := s.repos.Classes.GetClassByID(ctx, classID)
	if err != nil {
		return fmt.Errorf("getting class: %w", err)
	}
	if class == nil {
		return ErrClassNotFound
	}
	if class.OwnerID == userID {
		return ErrOwnerProtected
	}
	if err := s.repos.Members.RemoveMember(ctx, classID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("leaving class: %w", err)
	}
	return nil
}

// Deletion step names, in execution order
const (
	StepPostFiles       = "post_files"
	StepPosts           = "posts"
	StepAssignmentFiles = "assignment_files"
	StepSubmissions     = "submissions"
	StepAssignments     = "assignments"
	StepAnswers         = "answers"
	StepQuestions       = "questions"
	StepPlaylistFiles   = "playlist_files"
	StepPlaylists       = "playlists"
	StepMembers         = "members"
	StepClass           = "class"
)

func (s *classService) DeleteClass(ctx context.Context, callerID, classID string) (*model.DeletionReport, error) {
	if _, err := s.access.requireManager(ctx, callerID, classID); err != nil {
		return nil, err
	}

	report := &model.DeletionReport{ClassID: classID}
	log := s.logger.With().Str("class_id", classID).Logger()
	step := func(name string, fn func() error) {
		err := fn()
		if err != nil {
			log.Error().Err(err).Str("step", name).Msg("Class deletion step failed, continuing")
		}
		report.Record(name, err)
	}

	// Files are listed once; both file steps work from the same snapshot.
	files, listErr := s.repos.Files.ListFilesByClassID(ctx, classID)
	var postFiles, otherFiles []model.File
	for _, f := range files {
		if f.PostID != nil {
			postFiles = append(postFiles, f)
		} else {
			otherFiles = append(otherFiles, f)
		}
	}

	step(StepPostFiles, func() error {
		if listErr != nil {
			return fmt.Errorf("listing files: %w", listErr)
		}
		return s.files.Remove(ctx, postFiles)
	})
	step(StepPosts, func() error { return s.repos.Posts.DeletePostsByClassID(ctx, classID) })
	step(StepAssignmentFiles, func() error {
		if listErr != nil {
			return fmt.Errorf("listing files: %w", listErr)
		}
		return s.files.Remove(ctx, otherFiles)
	})
	step(StepSubmissions, func() error { return s.repos.Submissions.DeleteSubmissionsByClassID(ctx, classID) })
	step(StepAssignments, func() error { return s.repos.Assignments.DeleteAssignmentsByClassID(ctx, classID) })
	step(StepAnswers, func() error { return s.repos.Questions.DeleteAnswersByClassID(ctx, classID) })
	step(StepQuestions, func() error { return s.repos.Questions.DeleteQuestionsByClassID(ctx, classID) })
	step(StepPlaylistFiles, func() error { return s.repos.Playlists.DeletePlaylistFilesByClassID(ctx, classID) })
	step(StepPlaylists, func() error { return s.repos.Playlists.DeletePlaylistsByClassID(ctx, classID) })
	step(StepMembers, func() error { return s.repos.Members.DeleteMembersByClassID(ctx, classID) })

	err := s.repos.Classes.DeleteClass(ctx, classID)
	report.Record(StepClass, err)
	if err != nil {
		log.Error().Err(err).Strs("failed_steps", report.Failed()).Msg("Failed to delete class row")
		if errors.Is(err, repository.ErrNotFound) {
			return report, ErrClassNotFound
		}
		return report, fmt.Errorf("deleting class: %w", err)
	}
	report.Deleted = true

	log.Info().Strs("failed_steps", report.Failed()).Msg("Class deleted")
	s.events.Emit(ctx, pubsub.EventClassDeleted, classID, callerID, map[string]any{"failed_steps": report.Failed()})
	return report, nil
}
