package handler

import (
	"net/http"

	"classroom/internal/api/v1/dto"
	"classroom/internal/middleware"
	"classroom/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ViewHandler serves the page payloads and the caller's profile
type ViewHandler struct {
	dashboardService service.DashboardService
	profileService   service.ProfileService
	validate         *validator.Validate
	logger           zerolog.Logger
}

func NewViewHandler(dashboardService service.DashboardService, profileService service.ProfileService, validate *validator.Validate, logger zerolog.Logger) *ViewHandler {
	return &ViewHandler{
		dashboardService: dashboardService,
		profileService:   profileService,
		validate:         validate,
		logger:           logger.With().Str("handler", "ViewHandler").Logger(),
	}
}

func (h *ViewHandler) RegisterRoutes(mux *http.ServeMux, authMw authMiddleware) {
	mux.Handle("GET /home", authMw(http.HandlerFunc(h.home)))
	mux.Handle("GET /classes/{id}/dashboard", authMw(http.HandlerFunc(h.classDashboard)))
	mux.Handle("GET /admin/dashboard", authMw(http.HandlerFunc(h.adminDashboard)))
	mux.Handle("GET /profile", authMw(http.HandlerFunc(h.getProfile)))
	mux.Handle("PATCH /profile", authMw(http.HandlerFunc(h.updateProfile)))
}

// home godoc
// @Summary Home page
// @Description The caller's profile and classes with their class role.
// @Tags views
// @Produce json
// @Success 200 {object} service.Home
// @Router /home [get]
func (h *ViewHandler) home(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	home, err := h.dashboardService.Home(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load home")
		return
	}
	writeJSON(w, http.StatusOK, home)
}

// classDashboard godoc
// @Summary Class page
// @Tags views
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} service.ClassDashboard
// @Failure 403 {string} string "Not a member"
// @Router /classes/{id}/dashboard [get]
func (h *ViewHandler) classDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	d, err := h.dashboardService.ClassDashboard(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load class")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// adminDashboard godoc
// @Summary Admin page
// @Tags views
// @Produce json
// @Success 200 {object} service.AdminDashboard
// @Failure 403 {string} string "Forbidden"
// @Router /admin/dashboard [get]
func (h *ViewHandler) adminDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	d, err := h.dashboardService.AdminDashboard(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load admin dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// getProfile godoc
// @Summary Current user
// @Description The profile of the signed-in user. A missing profile row is created from the session claims.
// @Tags profile
// @Produce json
// @Success 200 {object} model.Profile
// @Router /profile [get]
func (h *ViewHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	p, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		if statusFor(err) != http.StatusNotFound {
			writeServiceError(w, h.logger, err, "Failed to retrieve profile")
			return
		}
		p, err = h.profileService.UpsertProfile(r.Context(), userID, middleware.EmailFromContext(r.Context()), "", "")
		if err != nil {
			writeServiceError(w, h.logger, err, "Failed to create profile")
			return
		}
	}
	writeJSON(w, http.StatusOK, p)
}

// updateProfile godoc
// @Summary Update my profile
// @Tags profile
// @Accept json
// @Produce json
// @Param body body dto.ProfileUpdateDTO true "Profile fields"
// @Success 200 {object} model.Profile
// @Router /profile [patch]
func (h *ViewHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.ProfileUpdateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	p, err := h.profileService.UpdateProfile(r.Context(), userID, req.FullName, req.AvatarURL)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
