package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"classroom/internal/middleware"
	"classroom/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Route registration signature shared by every handler.
type authMiddleware = func(http.Handler) http.Handler

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requireUser writes a 401 when the auth middleware did not run.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
	}
	return userID, ok
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidJoinCode):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrOwnerProtected):
		return http.StatusForbidden
	case errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrClassNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrAnswerNotFound),
		errors.Is(err, service.ErrPlaylistNotFound),
		errors.Is(err, service.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrAlreadyInPlaylist):
		return http.StatusConflict
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeServiceError answers with the mapped status. Internal errors are
// logged and hidden behind action.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg(action)
		http.Error(w, action, status)
		return
	}
	http.Error(w, err.Error(), status)
}
