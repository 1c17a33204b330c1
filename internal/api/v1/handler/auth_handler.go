package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"classroom/internal/middleware"
	"classroom/internal/service"
	"classroom/internal/util"

	"github.com/rs/zerolog"
)

const (
	verifierCookie = "sb-pkce-verifier"
	nextCookie     = "sb-login-next"
	refreshMaxAge  = 30 * 24 * time.Hour
	loginFlowTTL   = 10 * time.Minute
)

// AuthHandler runs the browser side of the OAuth PKCE flow
type AuthHandler struct {
	authService   service.AuthService
	publicBaseURL string
	loginPath     string
	secureCookies bool
	logger        zerolog.Logger
}

func NewAuthHandler(authService service.AuthService, publicBaseURL, loginPath string, secureCookies bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		publicBaseURL: publicBaseURL,
		loginPath:     loginPath,
		secureCookies: secureCookies,
		logger:        logger.With().Str("handler", "AuthHandler").Logger(),
	}
}

// RegisterRoutes mounts the auth routes. They sit outside the API auth
// middleware.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/login", h.login)
	mux.HandleFunc("GET /auth/callback", h.callback)
	mux.HandleFunc("POST /auth/logout", h.logout)
	mux.HandleFunc("POST /auth/refresh", h.refresh)
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value, path string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) setSession(w http.ResponseWriter, s *service.Session) {
	h.setCookie(w, middleware.AccessTokenCookie, s.AccessToken, "/", time.Duration(s.ExpiresIn)*time.Second)
	h.setCookie(w, middleware.RefreshTokenCookie, s.RefreshToken, "/", refreshMaxAge)
}

func (h *AuthHandler) clearSession(w http.ResponseWriter) {
	h.clearCookie(w, middleware.AccessTokenCookie, "/")
	h.clearCookie(w, middleware.RefreshTokenCookie, "/")
}

func (h *AuthHandler) loginError(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, h.loginPath+"?error="+url.QueryEscape(reason), http.StatusFound)
}

// safeNext only accepts local absolute paths so the login flow cannot be
// used as an open redirect.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// login godoc
// @Summary Start sign-in
// @Description Stores a PKCE verifier cookie and redirects to the OAuth provider.
// @Tags auth
// @Param next query string false "Local path to return to"
// @Success 302
// @Router /auth/login [get]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	verifier, err := util.NewPKCEVerifier()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to generate PKCE verifier")
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}
	h.setCookie(w, verifierCookie, verifier, "/auth", loginFlowTTL)
	if next := r.URL.Query().Get("next"); next != "" {
		h.setCookie(w, nextCookie, safeNext(next), "/auth", loginFlowTTL)
	}
	redirectTo := h.publicBaseURL + "/auth/callback"
	http.Redirect(w, r, h.authService.AuthorizeURL(redirectTo, util.PKCEChallenge(verifier)), http.StatusFound)
}

// callback godoc
// @Summary OAuth callback
// @Description Exchanges the code, records the profile and sets the session cookies.
// @Tags auth
// @Param code query string false "Authorization code"
// @Param error query string false "Provider error"
// @Success 302
// @Router /auth/callback [get]
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		reason := q.Get("error_description")
		if reason == "" {
			reason = providerErr
		}
		h.logger.Warn().Str("error", providerErr).Str("description", q.Get("error_description")).Msg("OAuth provider returned an error")
		h.loginError(w, r, reason)
		return
	}

	var verifier string
	if c, err := r.Cookie(verifierCookie); err == nil {
		verifier = c.Value
	}
	next := "/"
	if c, err := r.Cookie(nextCookie); err == nil {
		next = safeNext(c.Value)
	}
	h.clearCookie(w, verifierCookie, "/auth")
	h.clearCookie(w, nextCookie, "/auth")

	session, _, err := h.authService.CompleteLogin(r.Context(), q.Get("code"), verifier)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Login could not be completed")
		h.loginError(w, r, "Sign-in failed, please try again")
		return
	}
	h.setSession(w, session)
	http.Redirect(w, r, next, http.StatusFound)
}

// logout godoc
// @Summary Sign out
// @Description Revokes the session upstream when possible and always clears the cookies.
// @Tags auth
// @Success 303
// @Router /auth/logout [post]
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.AccessTokenCookie); err == nil && c.Value != "" {
		if err := h.authService.Logout(r.Context(), c.Value); err != nil {
			h.logger.Warn().Err(err).Msg("Upstream logout failed")
		}
	}
	h.clearSession(w)
	http.Redirect(w, r, h.loginPath, http.StatusSeeOther)
}

// refresh godoc
// @Summary Refresh the session
// @Description Trades the refresh cookie for a new token pair.
// @Tags auth
// @Success 204
// @Failure 401 {string} string "Session expired"
// @Router /auth/refresh [post]
func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if c, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
		refreshToken = c.Value
	}
	session, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusUnauthorized {
			h.clearSession(w)
			http.Error(w, "Session expired", status)
			return
		}
		writeServiceError(w, h.logger, err, "Failed to refresh session")
		return
	}
	h.setSession(w, session)
	w.WriteHeader(http.StatusNoContent)
}
