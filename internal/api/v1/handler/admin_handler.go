package handler

import (
	"net/http"

	"classroom/internal/api/v1/dto"
	"classroom/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// AdminHandler exposes platform administration. The service enforces the
// admin role.
type AdminHandler struct {
	adminService service.AdminService
	validate     *validator.Validate
	logger       zerolog.Logger
}

func NewAdminHandler(adminService service.AdminService, validate *validator.Validate, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		validate:     validate,
		logger:       logger.With().Str("handler", "AdminHandler").Logger(),
	}
}

func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux, authMw authMiddleware) {
	mux.Handle("GET /admin/stats", authMw(http.HandlerFunc(h.stats)))
	mux.Handle("GET /admin/classes", authMw(http.HandlerFunc(h.listClasses)))
	mux.Handle("POST /admin/classes/delete", authMw(http.HandlerFunc(h.deleteClasses)))
	mux.Handle("PUT /admin/profiles/{userId}/role", authMw(http.HandlerFunc(h.setRole)))
}

// stats godoc
// @Summary Platform counters
// @Tags admin
// @Produce json
// @Success 200 {object} model.PlatformStats
// @Failure 403 {string} string "Forbidden"
// @Router /admin/stats [get]
func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	s, err := h.adminService.Stats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// listClasses godoc
// @Summary All classes
// @Tags admin
// @Produce json
// @Success 200 {array} model.ClassSummary
// @Router /admin/classes [get]
func (h *AdminHandler) listClasses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	classes, err := h.adminService.ListClasses(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list classes")
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

// deleteClasses godoc
// @Summary Delete classes in bulk
// @Description Each class is deleted independently; the response carries one result per class.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.BulkDeleteDTO true "Class IDs"
// @Success 200 {object} dto.BulkDeleteResponseDTO
// @Router /admin/classes/delete [post]
func (h *AdminHandler) deleteClasses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.BulkDeleteDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	results, err := h.adminService.DeleteClasses(r.Context(), userID, req.ClassIDs)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete classes")
		return
	}
	writeJSON(w, http.StatusOK, dto.BulkDeleteResponseDTO{Results: results})
}

// setRole godoc
// @Summary Set a profile's platform role
// @Tags admin
// @Accept json
// @Param userId path string true "User ID"
// @Param body body dto.SetRoleDTO true "Role"
// @Success 204
// @Router /admin/profiles/{userId}/role [put]
func (h *AdminHandler) setRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.SetRoleDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	if err := h.adminService.SetProfileRole(r.Context(), userID, r.PathValue("userId"), req.Role); err != nil {
		writeServiceError(w, h.logger, err, "Failed to set role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
