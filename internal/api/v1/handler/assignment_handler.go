package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"classroom/internal/api/v1/dto"
	"classroom/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// AssignmentHandler handles assignments, submissions and grading
type AssignmentHandler struct {
	assignmentService service.AssignmentService
	submissionService service.SubmissionService
	validate          *validator.Validate
	maxUploadBytes    int64
	logger            zerolog.Logger
}

func NewAssignmentHandler(assignmentService service.AssignmentService, submissionService service.SubmissionService, validate *validator.Validate, maxUploadBytes int64, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		submissionService: submissionService,
		validate:          validate,
		maxUploadBytes:    maxUploadBytes,
		logger:            logger.With().Str("handler", "AssignmentHandler").Logger(),
	}
}

func (h *AssignmentHandler) RegisterRoutes(mux *http.ServeMux, authMw authMiddleware) {
	mux.Handle("POST /classes/{id}/assignments", authMw(http.HandlerFunc(h.createAssignment)))
	mux.Handle("GET /classes/{id}/assignments", authMw(http.HandlerFunc(h.listAssignments)))
	mux.Handle("GET /assignments/{assignmentId}", authMw(http.HandlerFunc(h.getAssignment)))
	mux.Handle("PATCH /assignments/{assignmentId}", authMw(http.HandlerFunc(h.updateAssignment)))
	mux.Handle("DELETE /assignments/{assignmentId}", authMw(http.HandlerFunc(h.deleteAssignment)))

	mux.Handle("POST /assignments/{assignmentId}/submissions", authMw(http.HandlerFunc(h.submit)))
	mux.Handle("GET /assignments/{assignmentId}/submissions", authMw(http.HandlerFunc(h.listSubmissions)))
	mux.Handle("GET /assignments/{assignmentId}/submissions/me", authMw(http.HandlerFunc(h.mySubmission)))
	mux.Handle("POST /submissions/{submissionId}/grade", authMw(http.HandlerFunc(h.grade)))
}

// parseDue reads due_at as RFC 3339.
func parseDue(raw string) (*time.Time, error) {
	due, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.New("due_at must be an RFC 3339 timestamp")
	}
	return &due, nil
}

func parsePoints(raw string) (int, error) {
	points, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("max_points must be an integer")
	}
	return points, nil
}

// readForm parses the assignment fields of a create. An empty due_at means no
// deadline.
func (h *AssignmentHandler) readForm(w http.ResponseWriter, r *http.Request) (*form, *dto.AssignmentFormDTO, bool) {
	f, ok := parseForm(w, r, h.maxUploadBytes)
	if !ok {
		return nil, nil, false
	}
	fail := func(msg string) (*form, *dto.AssignmentFormDTO, bool) {
		f.Close()
		http.Error(w, msg, http.StatusBadRequest)
		return nil, nil, false
	}

	req := &dto.AssignmentFormDTO{
		Title:        f.Value("title"),
		Instructions: f.Value("instructions"),
		ReplaceFiles: f.Bool("replace_files"),
	}
	var err error
	if raw := f.Value("due_at"); raw != "" {
		if req.DueAt, err = parseDue(raw); err != nil {
			return fail("Validation failed: " + err.Error())
		}
	}
	if raw := f.Value("max_points"); raw != "" {
		if req.MaxPoints, err = parsePoints(raw); err != nil {
			return fail("Validation failed: " + err.Error())
		}
	}
	if err := h.validate.Struct(req); err != nil {
		return fail("Validation failed: " + err.Error())
	}
	return f, req, true
}

// readPatch parses an update. Only the fields present in the form change;
// a present but empty due_at clears the deadline.
func (h *AssignmentHandler) readPatch(w http.ResponseWriter, r *http.Request) (*form, *dto.AssignmentPatchDTO, bool) {
	f, ok := parseForm(w, r, h.maxUploadBytes)
	if !ok {
		return nil, nil, false
	}
	fail := func(msg string) (*form, *dto.AssignmentPatchDTO, bool) {
		f.Close()
		http.Error(w, msg, http.StatusBadRequest)
		return nil, nil, false
	}

	req := &dto.AssignmentPatchDTO{ReplaceFiles: f.Bool("replace_files")}
	if f.Has("title") {
		title := f.Value("title")
		req.Title = &title
	}
	if f.Has("instructions") {
		instructions := f.Value("instructions")
		req.Instructions = &instructions
	}
	if f.Has("due_at") {
		raw := f.Value("due_at")
		if raw == "" {
			req.ClearDueAt = true
		} else {
			due, err := parseDue(raw)
			if err != nil {
				return fail("Validation failed: " + err.Error())
			}
			req.DueAt = due
		}
	}
	if f.Has("max_points") {
		points, err := parsePoints(f.Value("max_points"))
		if err != nil {
			return fail("Validation failed: " + err.Error())
		}
		req.MaxPoints = &points
	}
	if err := h.validate.Struct(req); err != nil {
		return fail("Validation failed: " + err.Error())
	}
	return f, req, true
}

func assignmentInput(req *dto.AssignmentFormDTO) service.AssignmentInput {
	return service.AssignmentInput{
		Title:        req.Title,
		Instructions: req.Instructions,
		DueAt:        req.DueAt,
		MaxPoints:    req.MaxPoints,
	}
}

func assignmentPatch(req *dto.AssignmentPatchDTO) service.AssignmentPatch {
	return service.AssignmentPatch{
		Title:        req.Title,
		Instructions: req.Instructions,
		DueAt:        req.DueAt,
		ClearDueAt:   req.ClearDueAt,
		MaxPoints:    req.MaxPoints,
	}
}

// createAssignment godoc
// @Summary Create an assignment
// @Description Staff only. max_points defaults to 100.
// @Tags assignments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Class ID"
// @Param title formData string true "Title"
// @Param instructions formData string false "Instructions"
// @Param due_at formData string false "Deadline (RFC 3339)"
// @Param max_points formData int false "Maximum points"
// @Param files formData file false "Attachments"
// @Success 201 {object} model.Assignment
// @Failure 400 {string} string "Validation failed"
// @Failure 403 {string} string "Forbidden"
// @Router /classes/{id}/assignments [post]
func (h *AssignmentHandler) createAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	f, req, ok := h.readForm(w, r)
	if !ok {
		return
	}
	defer f.Close()

	a, err := h.assignmentService.CreateAssignment(r.Context(), userID, r.PathValue("id"), assignmentInput(req), f.Uploads)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create assignment")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// listAssignments godoc
// @Summary List assignments
// @Tags assignments
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {array} model.Assignment
// @Router /classes/{id}/assignments [get]
func (h *AssignmentHandler) listAssignments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	list, err := h.assignmentService.ListAssignments(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list assignments")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// getAssignment godoc
// @Summary Get an assignment
// @Tags assignments
// @Produce json
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {object} model.Assignment
// @Failure 404 {string} string "Assignment not found"
// @Router /assignments/{assignmentId} [get]
func (h *AssignmentHandler) getAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	a, err := h.assignmentService.GetAssignment(r.Context(), userID, r.PathValue("assignmentId"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to retrieve assignment")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// updateAssignment godoc
// @Summary Update an assignment
// @Description Only the fields sent are changed. An empty due_at clears the deadline; max_points may not drop below an existing grade.
// @Tags assignments
// @Accept multipart/form-data
// @Produce json
// @Param assignmentId path string true "Assignment ID"
// @Param title formData string false "Title"
// @Param instructions formData string false "Instructions"
// @Param due_at formData string false "Deadline (RFC 3339)"
// @Param max_points formData int false "Maximum points"
// @Param replace_files formData bool false "Replace attachments"
// @Success 200 {object} model.Assignment
// @Router /assignments/{assignmentId} [patch]
func (h *AssignmentHandler) updateAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	f, req, ok := h.readPatch(w, r)
	if !ok {
		return
	}
	defer f.Close()

	a, err := h.assignmentService.UpdateAssignment(r.Context(), userID, r.PathValue("assignmentId"), assignmentPatch(req), req.ReplaceFiles, f.Uploads)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to update assignment")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// deleteAssignment godoc
// @Summary Delete an assignment
// @Description Submissions and every attached file are removed first.
// @Tags assignments
// @Param assignmentId path string true "Assignment ID"
// @Success 204
// @Router /assignments/{assignmentId} [delete]
func (h *AssignmentHandler) deleteAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.assignmentService.DeleteAssignment(r.Context(), userID, r.PathValue("assignmentId")); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete assignment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// submit godoc
// @Summary Submit work
// @Description Students only. Resubmitting replaces the content and attachments and clears the grade.
// @Tags submissions
// @Accept multipart/form-data
// @Produce json
// @Param assignmentId path string true "Assignment ID"
// @Param content formData string false "Text answer"
// @Param files formData file false "Attachments"
// @Success 200 {object} model.Submission
// @Failure 400 {string} string "Validation failed"
// @Failure 403 {string} string "Forbidden"
// @Router /assignments/{assignmentId}/submissions [post]
func (h *AssignmentHandler) submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	f, ok := parseForm(w, r, h.maxUploadBytes)
	if !ok {
		return
	}
	defer f.Close()

	req := dto.SubmissionFormDTO{Content: f.Value("content")}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	sub, err := h.submissionService.Submit(r.Context(), userID, r.PathValue("assignmentId"), req.Content, f.Uploads)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to submit")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// listSubmissions godoc
// @Summary List submissions
// @Description Staff only.
// @Tags submissions
// @Produce json
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {array} model.Submission
// @Router /assignments/{assignmentId}/submissions [get]
func (h *AssignmentHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	subs, err := h.submissionService.ListSubmissions(r.Context(), userID, r.PathValue("assignmentId"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list submissions")
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// mySubmission godoc
// @Summary Get my submission
// @Tags submissions
// @Produce json
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {object} model.Submission
// @Failure 404 {string} string "Submission not found"
// @Router /assignments/{assignmentId}/submissions/me [get]
func (h *AssignmentHandler) mySubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sub, err := h.submissionService.MySubmission(r.Context(), userID, r.PathValue("assignmentId"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to retrieve submission")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// grade godoc
// @Summary Grade a submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param submissionId path string true "Submission ID"
// @Param body body dto.GradeDTO true "Grade and feedback"
// @Success 200 {object} model.Submission
// @Failure 400 {string} string "Grade out of range"
// @Failure 403 {string} string "Forbidden"
// @Router /submissions/{submissionId}/grade [post]
func (h *AssignmentHandler) grade(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.GradeDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	sub, err := h.submissionService.Grade(r.Context(), userID, r.PathValue("submissionId"), *req.Grade, req.Feedback)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to grade submission")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
