package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"classroom/internal/model"
	"classroom/internal/util"

	"github.com/rs/zerolog"
)

// Session is the token pair issued by the hosted auth server
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	User         AuthUser  `json:"user"`
	ExpiresAt    time.Time `json:"-"`
}

// AuthUser is the subset of the auth user object we read
type AuthUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u AuthUser) metadata(keys ...string) string {
	for _, k := range keys {
		if v, ok := u.UserMetadata[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// FullName reads the display name the OAuth provider supplied.
func (u AuthUser) FullName() string { return u.metadata("full_name", "name") }

func (u AuthUser) AvatarURL() string { return u.metadata("avatar_url", "picture") }

// AuthService drives the PKCE OAuth flow against hosted auth
type AuthService interface {
	// AuthorizeURL is where the browser is sent to sign in.
	AuthorizeURL(redirectTo, codeChallenge string) string
	// CompleteLogin exchanges the callback code and records the profile.
	CompleteLogin(ctx context.Context, code, verifier string) (*Session, *model.Profile, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, accessToken string) error
}

type authService struct {
	baseURL  string
	anonKey  string
	provider string
	client   *http.Client
	profiles ProfileService
	logger   zerolog.Logger
}

func NewAuthService(supabaseURL, anonKey, provider string, profiles ProfileService, logger zerolog.Logger) AuthService {
	return &authService{
		baseURL:  strings.TrimRight(supabaseURL, "/"),
		anonKey:  anonKey,
		provider: provider,
		client:   &http.Client{Timeout: 15 * time.Second},
		profiles: profiles,
		logger:   logger.With().Str("service", "AuthService").Logger(),
	}
}

func (s *authService) AuthorizeURL(redirectTo, codeChallenge string) string {
	q := url.Values{}
	q.Set("provider", s.provider)
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", "s256")
	return s.baseURL + "/auth/v1/authorize?" + q.Encode()
}

func (s *authService) CompleteLogin(ctx context.Context, code, verifier string) (*Session, *model.Profile, error) {
	if code == "" || verifier == "" {
		return nil, nil, fmt.Errorf("%w: missing auth code or verifier", ErrUnauthorized)
	}
	session, err := s.token(ctx, "pkce", map[string]string{"auth_code": code, "code_verifier": verifier})
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.profiles.UpsertProfile(ctx, session.User.ID, session.User.Email, session.User.FullName(), session.User.AvatarURL())
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", session.User.ID).Msg("Failed to upsert profile after login")
		return nil, nil, err
	}
	s.logger.Info().Str("user_id", profile.ID).Msg("User signed in")
	return session, profile, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: missing refresh token", ErrUnauthorized)
	}
	return s.token(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

func (s *authService) token(ctx context.Context, grantType string, body map[string]string) (*Session, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}
	endpoint := fmt.Sprintf("%s/auth/v1/token?grant_type=%s", s.baseURL, url.QueryEscape(grantType))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.anonKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling auth server: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.Warn().Int("status_code", resp.StatusCode).Str("grant_type", grantType).Str("error_body", string(errorBody)).Msg("Auth server rejected token request")
		return nil, rejection(resp.StatusCode, errorBody)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: decoding session: %v", ErrUpstream, err)
	}
	if session.AccessToken == "" || session.User.ID == "" {
		return nil, fmt.Errorf("%w: auth server returned an empty session", ErrUpstream)
	}
	session.ExpiresAt = time.Now().Add(time.Duration(session.ExpiresIn) * time.Second)
	return &session, nil
}

// Logout revokes the session upstream. Cookies are cleared by the caller
// whatever the outcome.
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: calling auth server: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("logging out: %w", rejection(resp.StatusCode, errorBody))
	}
	return nil
}

// rejection classifies a failed auth server reply. A server error whose body
// still describes a bad session counts as unauthorized.
func rejection(status int, body []byte) error {
	if status >= http.StatusInternalServerError && !util.IsAuthError(errors.New(string(body))) {
		return fmt.Errorf("%w: auth server returned status %d", ErrUpstream, status)
	}
	return fmt.Errorf("%w: auth server returned status %d", ErrUnauthorized, status)
}
