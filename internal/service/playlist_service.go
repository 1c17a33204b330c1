package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"classroom/internal/model"
	"classroom/internal/repository"

	"github.com/rs/zerolog"
)

type PlaylistService interface {
	CreatePlaylist(ctx context.Context, callerID, classID, title, description string) (*model.Playlist, error)
	// ListPlaylists returns the class playlists with files ordered by position
	ListPlaylists(ctx context.Context, callerID, classID string) ([]model.Playlist, error)
	AddFile(ctx context.Context, callerID, playlistID, fileID string) (*model.PlaylistFile, error)
	RemoveFile(ctx context.Context, callerID, playlistID, fileID string) error
	DeletePlaylist(ctx context.Context, callerID, playlistID string) error
}

type playlistService struct {
	playlists repository.PlaylistRepository
	files     repository.FileRepository
	access    *accessChecker
	logger    zerolog.Logger
}

func NewPlaylistService(repos Repositories, logger zerolog.Logger) PlaylistService {
	return &playlistService{
		playlists: repos.Playlists,
		files:     repos.Files,
		access:    newAccessChecker(repos),
		logger:    logger.With().Str("service", "PlaylistService").Logger(),
	}
}

func (s *playlistService) CreatePlaylist(ctx context.Context, callerID, classID, title, description string) (*model.Playlist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validation("title is required")
	}
	if _, err := s.access.requireStaff(ctx, callerID, classID); err != nil {
		return nil, err
	}
	p := &model.Playlist{
		ClassID:     classID,
		CreatorID:   callerID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Files:       []model.PlaylistFile{},
	}
	if err := s.playlists.CreatePlaylist(ctx, p); err != nil {
		return nil, fmt.Errorf("creating playlist: %w", err)
	}
	return p, nil
}

func (s *playlistService) ListPlaylists(ctx context.Context, callerID, classID string) ([]model.Playlist, error) {
	if _, err := s.access.load(ctx, callerID, classID); err != nil {
		return nil, err
	}
	playlists, err := s.playlists.ListPlaylistsByClassID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	entries, err := s.playlists.ListPlaylistFilesByClassID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("listing playlist files: %w", err)
	}
	byPlaylist := map[string][]model.PlaylistFile{}
	for _, e := range entries {
		byPlaylist[e.PlaylistID] = append(byPlaylist[e.PlaylistID], e)
	}
	for i := range playlists {
		playlists[i].Files = byPlaylist[playlists[i].ID]
		if playlists[i].Files == nil {
			playlists[i].Files = []model.PlaylistFile{}
		}
	}
	return playlists, nil
}

func (s *playlistService) forStaff(ctx context.Context, callerID, playlistID string) (*model.Playlist, error) {
	p, err := s.playlists.GetPlaylistByID(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("getting playlist: %w", err)
	}
	if p == nil {
		return nil, ErrPlaylistNotFound
	}
	if _, err := s.access.requireStaff(ctx, callerID, p.ClassID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *playlistService) AddFile(ctx context.Context, callerID, playlistID, fileID string) (*model.PlaylistFile, error) {
	p, err := s.forStaff(ctx, callerID, playlistID)
	if err != nil {
		return nil, err
	}
	f, err := s.files.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("getting file: %w", err)
	}
	// Files from other classes are reported as missing.
	if f == nil || f.ClassID != p.ClassID || f.SubmissionID != nil {
		return nil, ErrFileNotFound
	}
	position, err := s.playlists.AddFile(ctx, p.ID, f.ID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyInPlaylist
		}
		return nil, fmt.Errorf("adding file to playlist: %w", err)
	}
	return &model.PlaylistFile{PlaylistID: p.ID, Position: position, File: *f}, nil
}

func (s *playlistService) RemoveFile(ctx context.Context, callerID, playlistID, fileID string) error {
	p, err := s.forStaff(ctx, callerID, playlistID)
	if err != nil {
		return err
	}
	if err := s.playlists.RemoveFile(ctx, p.ID, fileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("removing file from playlist: %w", err)
	}
	return nil
}

func (s *playlistService) DeletePlaylist(ctx context.Context, callerID, playlistID string) error {
	p, err := s.forStaff(ctx, callerID, playlistID)
	if err != nil {
		return err
	}
	if err := s.playlists.DeletePlaylistFilesByPlaylistID(ctx, p.ID); err != nil {
		return fmt.Errorf("clearing playlist: %w", err)
	}
	if err := s.playlists.DeletePlaylist(ctx, p.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlaylistNotFound
		}
		return fmt.Errorf("deleting playlist: %w", err)
	}
	return nil
}
