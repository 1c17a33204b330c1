package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"classroom/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeURL(t *testing.T) {
	svc := NewAuthService("https://proj.supabase.co/", "anon", "google", nil, zerolog.Nop())
	raw := svc.AuthorizeURL("http://localhost:8080/auth/callback", "challenge123")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "proj.supabase.co", u.Host)
	assert.Equal(t, "/auth/v1/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "google", q.Get("provider"))
	assert.Equal(t, "http://localhost:8080/auth/callback", q.Get("redirect_to"))
	assert.Equal(t, "challenge123", q.Get("code_challenge"))
	assert.Equal(t, "s256", q.Get("code_challenge_method"))
}

func TestCompleteLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if body["auth_code"] != "good" || body["code_verifier"] != "verifier" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access",
			"refresh_token": "refresh",
			"token_type":    "bearer",
			"expires_in":    3600,
			"user": map[string]any{
				"id":    "user-1",
				"email": "ada@example.com",
				"user_metadata": map[string]any{
					"name":    "Ada Lovelace",
					"picture": "https://img.test/ada.png",
				},
			},
		})
	}))
	defer srv.Close()

	db := newMemDB()
	svc := NewAuthService(srv.URL, "anon", "google", NewProfileService(db), zerolog.Nop())

	session, profile, err := svc.CompleteLogin(context.Background(), "good", "verifier")
	require.NoError(t, err)
	assert.Equal(t, "access", session.AccessToken)
	assert.Equal(t, "refresh", session.RefreshToken)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
	assert.Equal(t, "https://img.test/ada.png", profile.AvatarURL)
	assert.Equal(t, model.ProfileRoleStudent, profile.Role)

	_, _, err = svc.CompleteLogin(context.Background(), "bad", "verifier")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.CompleteLogin(context.Background(), "", "verifier")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthServerOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewAuthService(srv.URL, "anon", "google", nil, zerolog.Nop())
	_, err := svc.Refresh(context.Background(), "refresh")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestAuthServerErrorBodies(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusInternalServerError, `{"msg":"invalid JWT: token is expired"}`, ErrUnauthorized},
		{http.StatusInternalServerError, `{"msg":"database unavailable"}`, ErrUpstream},
		{http.StatusBadRequest, `{"error":"invalid_grant"}`, ErrUnauthorized},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(tc.body))
		}))
		svc := NewAuthService(srv.URL, "anon", "google", nil, zerolog.Nop())
		_, err := svc.Refresh(context.Background(), "refresh")
		assert.ErrorIs(t, err, tc.want, tc.body)
		srv.Close()
	}
}

func TestSecretVersionName(t *testing.T) {
	assert.Equal(t, "projects/p/secrets/hf-token/versions/latest", secretVersionName("p", "hf-token"))
	assert.Equal(t, "projects/p/secrets/hf-token/versions/3", secretVersionName("p", "hf-token/versions/3"))
	assert.Equal(t, "projects/o/secrets/x/versions/latest", secretVersionName("p", "projects/o/secrets/x"))
	assert.Equal(t, "projects/o/secrets/x/versions/2", secretVersionName("p", "projects/o/secrets/x/versions/2"))
}

type stubSecrets struct{ value string }

func (s stubSecrets) GetSecret(ctx context.Context, name string) (string, error) { return s.value, nil }
func (s stubSecrets) Close() error { return nil }

func TestResolveInferenceToken(t *testing.T) {
	ctx := context.Background()
	tok, err := ResolveInferenceToken(ctx, "literal", "secret", stubSecrets{"from-sm"})
	require.NoError(t, err)
	assert.Equal(t, "literal", tok)

	tok, err = ResolveInferenceToken(ctx, "", "secret", stubSecrets{"from-sm"})
	require.NoError(t, err)
	assert.Equal(t, "from-sm", tok)

	_, err = ResolveInferenceToken(ctx, "", "secret", nil)
	assert.Error(t, err)
}
