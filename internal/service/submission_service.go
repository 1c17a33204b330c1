package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"classroom/internal/model"
	"classroom/internal/pubsub"
	"classroom/internal/repository"

	"github.com/rs/zerolog"
)

// SubmissionService covers student work and grading
type SubmissionService interface {
	// Submit creates or replaces the caller's submission. New uploads replace
	// the previous attachments; a resubmission clears any grade.
	Submit(ctx context.Context, studentID, assignmentID, content string, uploads []Upload) (*model.Submission, error)
	ListSubmissions(ctx context.Context, callerID, assignmentID string) ([]model.Submission, error)
	MySubmission(ctx context.Context, studentID, assignmentID string) (*model.Submission, error)
	Grade(ctx context.Context, graderID, submissionID string, grade int, feedback string) (*model.Submission, error)
}

type submissionService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	files       repository.FileRepository
	store       FileService
	access      *accessChecker
	events      EventEmitter
	logger      zerolog.Logger
	now         func() time.Time
}

func NewSubmissionService(repos Repositories, store FileService, events EventEmitter, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		assignments: repos.Assignments,
		submissions: repos.Submissions,
		files:       repos.Files,
		store:       store,
		access:      newAccessChecker(repos),
		events:      events,
		logger:      logger.With().Str("service", "SubmissionService").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) assignment(ctx context.Context, assignmentID string) (*model.Assignment, error) {
	a, err := s.assignments.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("getting assignment: %w", err)
	}
	if a == nil {
		return nil, ErrAssignmentNotFound
	}
	return a, nil
}

func (s *submissionService) Submit(ctx context.Context, studentID, assignmentID, content string, uploads []Upload) (*model.Submission, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(uploads) == 0 {
		return nil, validation("a submission needs content or at least one file")
	}
	a, err := s.assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	access, err := s.access.load(ctx, studentID, a.ClassID)
	if err != nil {
		return nil, err
	}
	if access.Role() != model.MemberRoleStudent {
		return nil, ErrForbidden
	}

	sub := &model.Submission{
		AssignmentID: a.ID,
		ClassID:      a.ClassID,
		StudentID:    studentID,
		Content:      content,
		Late:         a.IsPastDue(s.now()),
	}
	if err := s.submissions.UpsertSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("saving submission: %w", err)
	}

	existing, err := s.files.ListFilesBySubmissionID(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("listing submission files: %w", err)
	}
	if len(uploads) > 0 {
		if err := s.store.Remove(ctx, existing); err != nil {
			return nil, err
		}
		if existing, err = s.store.Attach(ctx, a.ClassID, studentID, FileParent{Kind: model.FileKindSubmission, ID: sub.ID}, uploads); err != nil {
			return nil, err
		}
	}
	sub.Files = existing

	s.logger.Debug().Str("submission_id", sub.ID).Bool("late", sub.Late).Msg("Submission saved")
	return sub, nil
}

func (s *submissionService) withFiles(ctx context.Context, subs []model.Submission) error {
	for i := range subs {
		files, err := s.files.ListFilesBySubmissionID(ctx, subs[i].ID)
		if err != nil {
			return fmt.Errorf("listing submission files: %w", err)
		}
		subs[i].Files = files
	}
	return nil
}

func (s *submissionService) ListSubmissions(ctx context.Context, callerID, assignmentID string) ([]model.Submission, error) {
	a, err := s.assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireStaff(ctx, callerID, a.ClassID); err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListSubmissionsByAssignmentID(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	if err := s.withFiles(ctx, subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *submissionService) MySubmission(ctx context.Context, studentID, assignmentID string) (*model.Submission, error) {
	a, err := s.assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.load(ctx, studentID, a.ClassID); err != nil {
		return nil, err
	}
	sub, err := s.submissions.GetSubmissionByStudent(ctx, a.ID, studentID)
	if err != nil {
		return nil, fmt.Errorf("getting submission: %w", err)
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	subs := []model.Submission{*sub}
	if err := s.withFiles(ctx, subs); err != nil {
		return nil, err
	}
	return &subs[0], nil
}

func (s *submissionService) Grade(ctx context.Context, graderID, submissionID string, grade int, feedback string) (*model.Submission, error) {
	sub, err := s.submissions.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("getting submission: %w", err)
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	a, err := s.assignment(ctx, sub.AssignmentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireStaff(ctx, graderID, a.ClassID); err != nil {
		return nil, err
	}
	if grade < 0 || grade > a.MaxPoints {
		return nil, validation(fmt.Sprintf("grade must be between 0 and %d", a.MaxPoints))
	}

	sub.Grade = &grade
	sub.Feedback = strings.TrimSpace(feedback)
	sub.GradedBy = &graderID
	if err := s.submissions.GradeSubmission(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("grading submission: %w", err)
	}

	s.events.Emit(ctx, pubsub.EventSubmissionGraded, a.ClassID, graderID, map[string]any{
		"submission_id": sub.ID,
		"assignment_id": a.ID,
		"student_id":    sub.StudentID,
		"grade":         grade,
		"max_points":    a.MaxPoints,
	})
	return sub, nil
}
