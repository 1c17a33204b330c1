package handler

import (
	"io"
	"net/http"

	"classroom/internal/api/v1/dto"
	"classroom/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const maxChatBodyBytes = 64 << 10

type ChatHandler struct {
	chatService service.ChatService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewChatHandler(chatService service.ChatService, validate *validator.Validate, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validate:    validate,
		logger:      logger.With().Str("handler", "ChatHandler").Logger(),
	}
}

func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux, authMw authMiddleware) {
	mux.Handle("POST /chat", authMw(http.HandlerFunc(h.chat)))
}

// chat godoc
// @Summary Ask the assistant
// @Description Forwards the message to the inference endpoint and relays the cleaned reply as plain text.
// @Tags chat
// @Accept json
// @Produce plain
// @Param body body dto.ChatRequestDTO true "Message"
// @Success 200 {string} string "Reply"
// @Failure 400 {string} string "Validation failed"
// @Failure 429 {string} string "Rate limit exceeded"
// @Failure 502 {string} string "Upstream service error"
// @Router /chat [post]
func (h *ChatHandler) chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	var req dto.ChatRequestDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	reply, err := h.chatService.Reply(r.Context(), userID, req.Message)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get a reply")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, reply)
}
