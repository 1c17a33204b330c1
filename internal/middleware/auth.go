package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"classroom/internal/util"

	"github.com/rs/zerolog"
)

// Injected key type to avoid context collisions
type contextKey string

const (
	UserContextKey  = contextKey("user")
	EmailContextKey = contextKey("email")
)

// AccessTokenCookie and RefreshTokenCookie hold the hosted-auth session.
const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"
)

var errNoToken = errors.New("authorization header missing")

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, UserContextKey, userID)
	return context.WithValue(ctx, EmailContextKey, email)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserContextKey).(string)
	return id, ok && id != ""
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(EmailContextKey).(string)
	return email
}

// tokenFrom reads the bearer header first and falls back to the session cookie.
func tokenFrom(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", errors.New("invalid authorization header")
		}
		return parts[1], nil
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", errNoToken
}

func authenticate(r *http.Request, verifier *util.JWTVerifier) (*http.Request, error) {
	tokenString, err := tokenFrom(r)
	if err != nil {
		return nil, err
	}
	claims, err := verifier.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return r.WithContext(WithUser(r.Context(), claims.Subject, claims.Email)), nil
}

// AuthMiddleware rejects API requests without a valid session with 401.
func AuthMiddleware(verifier *util.JWTVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("service", "AuthMiddleware").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authed, err := authenticate(r, verifier)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Unauthenticated request")
				if errors.Is(err, errNoToken) {
					http.Error(w, "Authorization header missing", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Invalid token: "+err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, authed)
		})
	}
}

// RequireSession gates browser routes: without a valid session the request is
// redirected to the login page with the original path in "next".
func RequireSession(verifier *util.JWTVerifier, loginPath string, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("service", "Gatekeeper").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == loginPath || strings.HasPrefix(r.URL.Path, "/assets/") {
				next.ServeHTTP(w, r)
				return
			}
			authed, err := authenticate(r, verifier)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Redirecting to login")
				RedirectToLogin(w, r, loginPath)
				return
			}
			next.ServeHTTP(w, authed)
		})
	}
}

// RedirectToLogin sends the browser to the login page, remembering where it was going.
func RedirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath
	if r.URL.Path != "/" && r.URL.Path != loginPath {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusFound)
}
