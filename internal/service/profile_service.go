package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"classroom/internal/model"
	"classroom/internal/repository"
)

// ProfileService defines the interface for profile operations
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	// UpsertProfile records the identity returned by the OAuth exchange
	UpsertProfile(ctx context.Context, userID, email, fullName, avatarURL string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, userID, fullName, avatarURL string) (*model.Profile, error)
}

type profileService struct {
	repo repository.ProfileRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo repository.ProfileRepository) ProfileService {
	return &profileService{repo: repo}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.repo.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (s *profileService) UpsertProfile(ctx context.Context, userID, email, fullName, avatarURL string) (*model.Profile, error) {
	if userID == "" {
		return nil, validation("user id is required")
	}
	p := &model.Profile{
		ID:        userID,
		Email:     strings.TrimSpace(email),
		FullName:  strings.TrimSpace(fullName),
		AvatarURL: strings.TrimSpace(avatarURL),
	}
	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("upserting profile: %w", err)
	}
	return p, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID, fullName, avatarURL string) (*model.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	avatarURL = strings.TrimSpace(avatarURL)
	if fullName == "" {
		return nil, validation("full name is required")
	}
	if avatarURL != "" {
		if u, err := url.Parse(avatarURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, validation("avatar url must be an http(s) URL")
		}
	}
	p := &model.Profile{ID: userID, FullName: fullName, AvatarURL: avatarURL}
	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return p, nil
}
