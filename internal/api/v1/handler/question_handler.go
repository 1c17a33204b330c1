package handler

import (
	"net/http"

	"classroom/internal/api/v1/dto"
	"classroom/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// QuestionHandler handles the class Q&A board
type QuestionHandler struct {
	questionService service.QuestionService
	validate        *validator.Validate
	logger          zerolog.Logger
}

func NewQuestionHandler(questionService service.QuestionService, validate *validator.Validate, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		validate:        validate,
		logger:          logger.With().Str("handler", "QuestionHandler").Logger(),
	}
}

func (h *QuestionHandler) RegisterRoutes(mux *http.ServeMux, authMw authMiddleware) {
	mux.Handle("POST /classes/{id}/questions", authMw(http.HandlerFunc(h.askQuestion)))
	mux.Handle("GET /classes/{id}/questions", authMw(http.HandlerFunc(h.listQuestions)))
	mux.Handle("DELETE /questions/{questionId}", authMw(http.HandlerFunc(h.deleteQuestion)))
	mux.Handle("POST /questions/{questionId}/answers", authMw(http.HandlerFunc(h.answer)))
	mux.Handle("DELETE /answers/{answerId}", authMw(http.HandlerFunc(h.deleteAnswer)))
}

// askQuestion godoc
// @Summary Ask a question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param body body dto.QuestionCreateDTO true "Question"
// @Success 201 {object} model.Question
// @Router /classes/{id}/questions [post]
func (h *QuestionHandler) askQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.QuestionCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	q, err := h.questionService.AskQuestion(r.Context(), userID, r.PathValue("id"), req.Title, req.Body)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create question")
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// listQuestions godoc
// @Summary List questions with answers
// @Tags questions
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {array} model.Question
// @Router /classes/{id}/questions [get]
func (h *QuestionHandler) listQuestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	qs, err := h.questionService.ListQuestions(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list questions")
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

// answer godoc
// @Summary Answer a question
// @Tags questions
// @Accept json
// @Produce json
// @Param questionId path string true "Question ID"
// @Param body body dto.AnswerCreateDTO true "Answer"
// @Success 201 {object} model.Answer
// @Router /questions/{questionId}/answers [post]
func (h *QuestionHandler) answer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.AnswerCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	a, err := h.questionService.Answer(r.Context(), userID, r.PathValue("questionId"), req.Body)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to answer question")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// deleteQuestion godoc
// @Summary Delete a question
// @Description Author or staff. Answers are deleted first.
// @Tags questions
// @Param questionId path string true "Question ID"
// @Success 204
// @Router /questions/{questionId} [delete]
func (h *QuestionHandler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.questionService.DeleteQuestion(r.Context(), userID, r.PathValue("questionId")); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete question")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteAnswer godoc
// @Summary Delete an answer
// @Tags questions
// @Param answerId path string true "Answer ID"
// @Success 204
// @Router /answers/{answerId} [delete]
func (h *QuestionHandler) deleteAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.questionService.DeleteAnswer(r.Context(), userID, r.PathValue("answerId")); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete answer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
