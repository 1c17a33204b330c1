package handler

import (
	"net/http"

	"classroom/internal/api/v1/dto"
	"classroom/internal/model"
	"classroom/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ClassHandler handles class and membership endpoints
type ClassHandler struct {
	classService  service.ClassService
	memberService service.MemberService
	fileService   service.FileService
	validate      *validator.Validate
	logger        zerolog.Logger
}

// NewClassHandler creates a new ClassHandler
func NewClassHandler(classService service.ClassService, memberService service.MemberService, fileService service.FileService, validate *validator.Validate, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		classService:  classService,
		memberService: memberService,
		fileService:   fileService,
		validate:      validate,
		logger:        logger.With().Str("handler", "ClassHandler").Logger(),
	}
}

// RegisterRoutes mounts class routes
func (h *ClassHandler) RegisterRoutes(mux *http.ServeMux, authMw authMiddleware) {
	mux.Handle("POST /classes", authMw(http.HandlerFunc(h.createClass)))
	mux.Handle("GET /classes", authMw(http.HandlerFunc(h.listClasses)))
	mux.Handle("POST /classes/join", authMw(http.HandlerFunc(h.joinClass)))
	mux.Handle("GET /classes/{id}", authMw(http.HandlerFunc(h.getClass)))
	mux.Handle("PATCH /classes/{id}", authMw(http.HandlerFunc(h.updateClass)))
	mux.Handle("DELETE /classes/{id}", authMw(http.HandlerFunc(h.deleteClass)))
	mux.Handle("POST /classes/{id}/join-code", authMw(http.HandlerFunc(h.regenerateJoinCode)))
	mux.Handle("POST /classes/{id}/leave", authMw(http.HandlerFunc(h.leaveClass)))
	mux.Handle("GET /classes/{id}/files", authMw(http.HandlerFunc(h.listFiles)))
	mux.Handle("GET /classes/{id}/members", authMw(http.HandlerFunc(h.listMembers)))
	mux.Handle("PATCH /classes/{id}/members/{userId}", authMw(http.HandlerFunc(h.changeRole)))
	mux.Handle("DELETE /classes/{id}/members/{userId}", authMw(http.HandlerFunc(h.removeMember)))
}

// createClass godoc
// @Summary Create a class
// @Description Creates a class owned by the caller, who is enrolled as its teacher.
// @Tags classes
// @Accept json
// @Produce json
// @Param class body dto.ClassCreateDTO true "Class creation request"
// @Success 201 {object} model.Class
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 500 {string} string "Failed to create class"
// @Router /classes [post]
func (h *ClassHandler) createClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.ClassCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	class, err := h.classService.CreateClass(r.Context(), userID, req.Name, req.Description, req.Section)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create class")
		return
	}
	writeJSON(w, http.StatusCreated, class)
}

// listClasses godoc
// @Summary List my classes
// @Tags classes
// @Produce json
// @Success 200 {array} model.MemberClass
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Router /classes [get]
func (h *ClassHandler) listClasses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	classes, err := h.classService.ListClassesForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list classes")
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

// joinClass godoc
// @Summary Join a class
// @Description Enrolls the caller as a student using the class join code.
// @Tags classes
// @Accept json
// @Produce json
// @Param body body dto.JoinClassDTO true "Join code"
// @Success 200 {object} model.Class
// @Failure 400 {string} string "Invalid join code"
// @Failure 404 {string} string "Class not found"
// @Failure 409 {string} string "Already a member"
// @Router /classes/join [post]
func (h *ClassHandler) joinClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.JoinClassDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	class, err := h.classService.JoinClass(r.Context(), userID, req.JoinCode)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to join class")
		return
	}
	writeJSON(w, http.StatusOK, class)
}

// getClass godoc
// @Summary Get a class
// @Tags classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} model.Class
// @Failure 403 {string} string "Not a member"
// @Failure 404 {string} string "Class not found"
// @Router /classes/{id} [get]
func (h *ClassHandler) getClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	class, err := h.classService.GetClass(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to retrieve class")
		return
	}
	writeJSON(w, http.StatusOK, class)
}

// updateClass godoc
// @Summary Update a class
// @Tags classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param class body dto.ClassUpdateDTO true "Class fields"
// @Success 200 {object} model.Class
// @Failure 403 {string} string "Forbidden"
// @Router /classes/{id} [patch]
func (h *ClassHandler) updateClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.ClassUpdateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	class, err := h.classService.UpdateClass(r.Context(), userID, r.PathValue("id"), req.Name, req.Description, req.Section)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to update class")
		return
	}
	writeJSON(w, http.StatusOK, class)
}

// deleteClass godoc
// @Summary Delete a class
// @Description Removes the class and everything in it. Each step is reported; only the final class delete fails the request.
// @Tags classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} model.DeletionReport
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Class not found"
// @Failure 500 {object} dto.DeletionResponseDTO
// @Router /classes/{id} [delete]
func (h *ClassHandler) deleteClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	classID := r.PathValue("id")
	report, err := h.classService.DeleteClass(r.Context(), userID, classID)
	if err != nil {
		if report == nil {
			writeServiceError(w, h.logger, err, "Failed to delete class")
			return
		}
		h.logger.Error().Err(err).Str("class_id", classID).Msg("Class delete did not complete")
		writeJSON(w, http.StatusInternalServerError, dto.DeletionResponseDTO{Report: report, Error: "Failed to delete class"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// regenerateJoinCode godoc
// @Summary Regenerate the join code
// @Tags classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} dto.JoinCodeResponseDTO
// @Failure 403 {string} string "Forbidden"
// @Router /classes/{id}/join-code [post]
func (h *ClassHandler) regenerateJoinCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	code, err := h.classService.RegenerateJoinCode(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to regenerate join code")
		return
	}
	writeJSON(w, http.StatusOK, dto.JoinCodeResponseDTO{JoinCode: code})
}

// leaveClass godoc
// @Summary Leave a class
// @Tags classes
// @Param id path string true "Class ID"
// @Success 204
// @Failure 403 {string} string "The class owner cannot leave"
// @Router /classes/{id}/leave [post]
func (h *ClassHandler) leaveClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.classService.LeaveClass(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, h.logger, err, "Failed to leave class")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listFiles godoc
// @Summary List class files
// @Description Files attached to posts and assignments of the class.
// @Tags classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {array} model.File
// @Router /classes/{id}/files [get]
func (h *ClassHandler) listFiles(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	files, err := h.fileService.ListClassFiles(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list files")
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// listMembers godoc
// @Summary List class members
// @Tags members
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {array} model.ClassMember
// @Router /classes/{id}/members [get]
func (h *ClassHandler) listMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	members, err := h.memberService.ListMembers(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list members")
		return
	}
	if members == nil {
		members = []model.ClassMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

// changeRole godoc
// @Summary Change a member's role
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param userId path string true "Member user ID"
// @Param body body dto.ChangeRoleDTO true "New role"
// @Success 200 {object} model.ClassMember
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Member not found"
// @Router /classes/{id}/members/{userId} [patch]
func (h *ClassHandler) changeRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.ChangeRoleDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	member, err := h.memberService.ChangeRole(r.Context(), userID, r.PathValue("id"), r.PathValue("userId"), req.Role)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to change role")
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// removeMember godoc
// @Summary Remove a member
// @Tags members
// @Param id path string true "Class ID"
// @Param userId path string true "Member user ID"
// @Success 204
// @Failure 403 {string} string "Forbidden"
// @Router /classes/{id}/members/{userId} [delete]
func (h *ClassHandler) removeMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.memberService.RemoveMember(r.Context(), userID, r.PathValue("id"), r.PathValue("userId")); err != nil {
		writeServiceError(w, h.logger, err, "Failed to remove member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
