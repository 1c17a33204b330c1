package service

import (
	"context"
	"fmt"
	"io"

	"classroom/internal/model"
	"classroom/internal/repository"
	"classroom/internal/storage"

	"github.com/rs/zerolog"
)

// Upload is one file received from a multipart form
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileParent says which row new files hang off.
type FileParent struct {
	Kind string // model.FileKind*
	ID   string
}

type FileService interface {
	// Attach uploads each file and records it. It stops at the first failure
	// and returns the files stored so far.
	Attach(ctx context.Context, classID, uploaderID string, parent FileParent, uploads []Upload) ([]model.File, error)
	// Remove deletes objects and rows. Object removal is best-effort.
	Remove(ctx context.Context, files []model.File) error
	ListClassFiles(ctx context.Context, callerID, classID string) ([]model.File, error)
}

type fileService struct {
	files   repository.FileRepository
	storage storage.ObjectStorage
	access  *accessChecker
	logger  zerolog.Logger
}

func NewFileService(repos Repositories, objects storage.ObjectStorage, logger zerolog.Logger) FileService {
	return &fileService{
		files:   repos.Files,
		storage: objects,
		access:  newAccessChecker(repos),
		logger:  logger.With().Str("service", "FileService").Logger(),
	}
}

func (s *fileService) Attach(ctx context.Context, classID, uploaderID string, parent FileParent, uploads []Upload) ([]model.File, error) {
	stored := make([]model.File, 0, len(uploads))
	for _, u := range uploads {
		contentType := u.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		key := storage.ObjectKey(classID, parent.Kind, parent.ID, u.Name)
		url, err := s.storage.Upload(ctx, key, contentType, u.Body, u.Size)
		if err != nil {
			s.logger.Error().Err(err).Str("class_id", classID).Str("name", u.Name).Msg("Failed to upload file")
			return stored, fmt.Errorf("uploading %s: %w", u.Name, err)
		}

		f := model.File{
			ClassID:     classID,
			UploaderID:  uploaderID,
			Name:        u.Name,
			StoragePath: key,
			URL:         url,
			ContentType: contentType,
			SizeBytes:   u.Size,
		}
		parentID := parent.ID
		switch parent.Kind {
		case model.FileKindPost:
			f.PostID = &parentID
		case model.FileKindAssignment:
			f.AssignmentID = &parentID
		case model.FileKindSubmission:
			f.SubmissionID = &parentID
		}
		if err := s.files.CreateFile(ctx, &f); err != nil {
			if rmErr := s.storage.Remove(ctx, key); rmErr != nil {
				s.logger.Warn().Err(rmErr).Str("key", key).Msg("Failed to remove orphaned object")
			}
			return stored, fmt.Errorf("recording %s: %w", u.Name, err)
		}
		stored = append(stored, f)
	}
	return stored, nil
}

func (s *fileService) Remove(ctx context.Context, files []model.File) error {
	if len(files) == 0 {
		return nil
	}
	keys := make([]string, 0, len(files))
	ids := make([]string, 0, len(files))
	for _, f := range files {
		keys = append(keys, f.StoragePath)
		ids = append(ids, f.ID)
	}
	if err := s.storage.Remove(ctx, keys...); err != nil {
		s.logger.Warn().Err(err).Int("count", len(keys)).Msg("Failed to remove objects from storage")
	}
	if err := s.files.DeleteFiles(ctx, ids); err != nil {
		return fmt.Errorf("deleting file rows: %w", err)
	}
	return nil
}

// ListClassFiles returns every post and assignment file of the class.
// Submission files stay private to the student and staff.
func (s *fileService) ListClassFiles(ctx context.Context, callerID, classID string) ([]model.File, error) {
	if _, err := s.access.load(ctx, callerID, classID); err != nil {
		return nil, err
	}
	all, err := s.files.ListFilesByClassID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("listing class files: %w", err)
	}
	shared := make([]model.File, 0, len(all))
	for _, f := range all {
		if f.SubmissionID == nil {
			shared = append(shared, f)
		}
	}
	return shared, nil
}
