package service

import (
	"context"
	"errors"
	"fmt"

	"classroom/internal/model"
	"classroom/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	bulkDeleteConcurrency = 4
	maxBulkDelete         = 100
)

// BulkDeleteResult is the outcome of one class in a bulk delete
type BulkDeleteResult struct {
	ClassID string                `json:"class_id"`
	Report  *model.DeletionReport `json:"report,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// AdminService is restricted to profiles with the admin role
type AdminService interface {
	Stats(ctx context.Context, callerID string) (*model.PlatformStats, error)
	ListClasses(ctx context.Context, callerID string) ([]model.ClassSummary, error)
	// DeleteClasses runs class deletions in parallel; one failure does not
	// stop the others.
	DeleteClasses(ctx context.Context, callerID string, classIDs []string) ([]BulkDeleteResult, error)
	SetProfileRole(ctx context.Context, callerID, userID, role string) error
}

type adminService struct {
	profiles repository.ProfileRepository
	classes  repository.ClassRepository
	classSvc ClassService
	logger   zerolog.Logger
}

func NewAdminService(repos Repositories, classSvc ClassService, logger zerolog.Logger) AdminService {
	return &adminService{
		profiles: repos.Profiles,
		classes:  repos.Classes,
		classSvc: classSvc,
		logger:   logger.With().Str("service", "AdminService").Logger(),
	}
}

func (s *adminService) requireAdmin(ctx context.Context, callerID string) error {
	p, err := s.profiles.GetProfileByID(ctx, callerID)
	if err != nil {
		return fmt.Errorf("getting profile: %w", err)
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *adminService) Stats(ctx context.Context, callerID string) (*model.PlatformStats, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	stats, err := s.classes.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	return stats, nil
}

func (s *adminService) ListClasses(ctx context.Context, callerID string) ([]model.ClassSummary, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	classes, err := s.classes.ListAllClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing classes: %w", err)
	}
	return classes, nil
}

func (s *adminService) DeleteClasses(ctx context.Context, callerID string, classIDs []string) ([]BulkDeleteResult, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(classIDs))
	seen := map[string]bool{}
	for _, id := range classIDs {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, validation("at least one class id is required")
	}
	if len(ids) > maxBulkDelete {
		return nil, validation(fmt.Sprintf("at most %d classes can be deleted at once", maxBulkDelete))
	}

	results := make([]BulkDeleteResult, len(ids))
	var g errgroup.Group
	g.SetLimit(bulkDeleteConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			report, err := s.classSvc.DeleteClass(ctx, callerID, id)
			results[i] = BulkDeleteResult{ClassID: id, Report: report}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	s.logger.Info().Int("requested", len(ids)).Int("failed", failed).Msg("Bulk class delete finished")
	return results, nil
}

func (s *adminService) SetProfileRole(ctx context.Context, callerID, userID, role string) error {
	switch role {
	case model.ProfileRoleAdmin, model.ProfileRoleTeacher, model.ProfileRoleStudent:
	default:
		return validation("role must be one of admin, teacher, student")
	}
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	if callerID == userID && role != model.ProfileRoleAdmin {
		return validation("admins cannot remove their own admin role")
	}
	if err := s.profiles.SetRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("setting profile role: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("role", role).Msg("Profile role changed")
	return nil
}
