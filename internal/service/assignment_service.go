package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"classroom/internal/model"
	"classroom/internal/repository"

	"github.com/rs/zerolog"
)

// DefaultMaxPoints applies when an assignment is created without a maximum
const DefaultMaxPoints = 100

var titleTooLong = fmt.Sprintf("title must be at most %d characters", model.MaxTitleLength)

// AssignmentInput carries the fields of a new assignment
type AssignmentInput struct {
	Title        string
	Instructions string
	DueAt        *time.Time
	MaxPoints    int // zero means DefaultMaxPoints
}

// AssignmentPatch carries a partial update. Nil fields keep the stored value;
// ClearDueAt removes the deadline.
type AssignmentPatch struct {
	Title        *string
	Instructions *string
	DueAt        *time.Time
	ClearDueAt   bool
	MaxPoints    *int
}

func validateAssignment(title string, maxPoints int) error {
	if title == "" {
		return validation("title is required")
	}
	if len([]rune(title)) > model.MaxTitleLength {
		return validation(titleTooLong)
	}
	if maxPoints <= 0 {
		return validation("max points must be greater than zero")
	}
	return nil
}

func (in *AssignmentInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Instructions = strings.TrimSpace(in.Instructions)
	if in.MaxPoints == 0 {
		in.MaxPoints = DefaultMaxPoints
	}
	return validateAssignment(in.Title, in.MaxPoints)
}

// apply writes the patch onto a and validates the result.
func (p AssignmentPatch) apply(a *model.Assignment) error {
	if p.Title != nil {
		a.Title = strings.TrimSpace(*p.Title)
	}
	if p.Instructions != nil {
		a.Instructions = strings.TrimSpace(*p.Instructions)
	}
	switch {
	case p.ClearDueAt:
		a.DueAt = nil
	case p.DueAt != nil:
		due := *p.DueAt
		a.DueAt = &due
	}
	if p.MaxPoints != nil {
		a.MaxPoints = *p.MaxPoints
	}
	return validateAssignment(a.Title, a.MaxPoints)
}

type AssignmentService interface {
	CreateAssignment(ctx context.Context, callerID, classID string, in AssignmentInput, uploads []Upload) (*model.Assignment, error)
	ListAssignments(ctx context.Context, callerID, classID string) ([]model.Assignment, error)
	GetAssignment(ctx context.Context, callerID, assignmentID string) (*model.Assignment, error)
	UpdateAssignment(ctx context.Context, callerID, assignmentID string, patch AssignmentPatch, replaceFiles bool, uploads []Upload) (*model.Assignment, error)
	// DeleteAssignment removes submissions and every attached file first.
	DeleteAssignment(ctx context.Context, callerID, assignmentID string) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	files       repository.FileRepository
	store       FileService
	access      *accessChecker
	logger      zerolog.Logger
}

func NewAssignmentService(repos Repositories, store FileService, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: repos.Assignments,
		submissions: repos.Submissions,
		files:       repos.Files,
		store:       store,
		access:      newAccessChecker(repos),
		logger:      logger.With().Str("service", "AssignmentService").Logger(),
	}
}

func (s *assignmentService) CreateAssignment(ctx context.Context, callerID, classID string, in AssignmentInput, uploads []Upload) (*model.Assignment, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := s.access.requireStaff(ctx, callerID, classID); err != nil {
		return nil, err
	}

	a := &model.Assignment{
		ClassID:      classID,
		AuthorID:     callerID,
		Title:        in.Title,
		Instructions: in.Instructions,
		DueAt:        in.DueAt,
		MaxPoints:    in.MaxPoints,
	}
	if err := s.assignments.CreateAssignment(ctx, a); err != nil {
		return nil, fmt.Errorf("creating assignment: %w", err)
	}
	files, err := s.store.Attach(ctx, classID, callerID, FileParent{Kind: model.FileKindAssignment, ID: a.ID}, uploads)
	if err != nil {
		s.logger.Error().Err(err).Str("assignment_id", a.ID).Msg("Assignment created but attachments failed")
		return nil, err
	}
	a.Files = files
	return a, nil
}

func (s *assignmentService) ListAssignments(ctx context.Context, callerID, classID string) ([]model.Assignment, error) {
	if _, err := s.access.load(ctx, callerID, classID); err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListAssignmentsByClassID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	files, err := s.files.ListFilesByClassID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("listing assignment files: %w", err)
	}
	byAssignment := map[string][]model.File{}
	for _, f := range files {
		if f.AssignmentID != nil {
			byAssignment[*f.AssignmentID] = append(byAssignment[*f.AssignmentID], f)
		}
	}
	for i := range assignments {
		assignments[i].Files = byAssignment[assignments[i].ID]
		if assignments[i].Files == nil {
			assignments[i].Files = []model.File{}
		}
	}
	return assignments, nil
}

func (s *assignmentService) get(ctx context.Context, assignmentID string) (*model.Assignment, error) {
	a, err := s.assignments.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("getting assignment: %w", err)
	}
	if a == nil {
		return nil, ErrAssignmentNotFound
	}
	return a, nil
}

func (s *assignmentService) GetAssignment(ctx context.Context, callerID, assignmentID string) (*model.Assignment, error) {
	a, err := s.get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.load(ctx, callerID, a.ClassID); err != nil {
		return nil, err
	}
	if a.Files, err = s.files.ListFilesByAssignmentID(ctx, a.ID); err != nil {
		return nil, fmt.Errorf("listing assignment files: %w", err)
	}
	return a, nil
}

func (s *assignmentService) UpdateAssignment(ctx context.Context, callerID, assignmentID string, patch AssignmentPatch, replaceFiles bool, uploads []Upload) (*model.Assignment, error) {
	a, err := s.get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireStaff(ctx, callerID, a.ClassID); err != nil {
		return nil, err
	}

	previousMax := a.MaxPoints
	if err := patch.apply(a); err != nil {
		return nil, err
	}
	if a.MaxPoints < previousMax {
		if err := s.checkGradesFit(ctx, a); err != nil {
			return nil, err
		}
	}

	if err := s.assignments.UpdateAssignment(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("updating assignment: %w", err)
	}

	existing, err := s.files.ListFilesByAssignmentID(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("listing assignment files: %w", err)
	}
	if replaceFiles {
		if err := s.store.Remove(ctx, existing); err != nil {
			return nil, err
		}
		existing = nil
	}
	added, err := s.store.Attach(ctx, a.ClassID, callerID, FileParent{Kind: model.FileKindAssignment, ID: a.ID}, uploads)
	if err != nil {
		return nil, err
	}
	a.Files = append(existing, added...)
	return a, nil
}

// checkGradesFit rejects a maximum below a grade already given.
func (s *assignmentService) checkGradesFit(ctx context.Context, a *model.Assignment) error {
	subs, err := s.submissions.ListSubmissionsByAssignmentID(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("listing submissions: %w", err)
	}
	for _, sub := range subs {
		if sub.Grade != nil && *sub.Grade > a.MaxPoints {
			return validation(fmt.Sprintf("max points cannot be below an existing grade of %d", *sub.Grade))
		}
	}
	return nil
}

func (s *assignmentService) DeleteAssignment(ctx context.Context, callerID, assignmentID string) error {
	a, err := s.get(ctx, assignmentID)
	if err != nil {
		return err
	}
	if _, err := s.access.requireStaff(ctx, callerID, a.ClassID); err != nil {
		return err
	}

	submissions, err := s.submissions.ListSubmissionsByAssignmentID(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("listing submissions: %w", err)
	}
	var files []model.File
	for _, sub := range submissions {
		subFiles, err := s.files.ListFilesBySubmissionID(ctx, sub.ID)
		if err != nil {
			return fmt.Errorf("listing submission files: %w", err)
		}
		files = append(files, subFiles...)
	}
	own, err := s.files.ListFilesByAssignmentID(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("listing assignment files: %w", err)
	}
	if err := s.store.Remove(ctx, append(files, own...)); err != nil {
		return err
	}
	if err := s.submissions.DeleteSubmissionsByAssignmentID(ctx, a.ID); err != nil {
		return fmt.Errorf("deleting submissions: %w", err)
	}
	if err := s.assignments.DeleteAssignment(ctx, a.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("deleting assignment: %w", err)
	}
	s.logger.Info().Str("assignment_id", a.ID).Int("submissions", len(submissions)).Msg("Assignment deleted")
	return nil
}
