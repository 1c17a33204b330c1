package handler

import (
	"net/http"

	"classroom/internal/api/v1/dto"
	"classroom/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// PostHandler handles class announcements
type PostHandler struct {
	postService    service.PostService
	validate       *validator.Validate
	maxUploadBytes int64
	logger         zerolog.Logger
}

func NewPostHandler(postService service.PostService, validate *validator.Validate, maxUploadBytes int64, logger zerolog.Logger) *PostHandler {
	return &PostHandler{
		postService:    postService,
		validate:       validate,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("handler", "PostHandler").Logger(),
	}
}

func (h *PostHandler) RegisterRoutes(mux *http.ServeMux, authMw authMiddleware) {
	mux.Handle("POST /classes/{id}/posts", authMw(http.HandlerFunc(h.createPost)))
	mux.Handle("GET /classes/{id}/posts", authMw(http.HandlerFunc(h.listPosts)))
	mux.Handle("PATCH /posts/{postId}", authMw(http.HandlerFunc(h.updatePost)))
	mux.Handle("DELETE /posts/{postId}", authMw(http.HandlerFunc(h.deletePost)))
}

func (h *PostHandler) readForm(w http.ResponseWriter, r *http.Request) (*form, *dto.PostFormDTO, bool) {
	f, ok := parseForm(w, r, h.maxUploadBytes)
	if !ok {
		return nil, nil, false
	}
	req := &dto.PostFormDTO{
		Title:        f.Value("title"),
		Body:         f.Value("body"),
		ReplaceFiles: f.Bool("replace_files"),
	}
	if err := h.validate.Struct(req); err != nil {
		f.Close()
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}
	return f, req, true
}

// createPost godoc
// @Summary Create a post
// @Description Staff only. Attachments are sent as multipart "files" parts.
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Class ID"
// @Param title formData string true "Title"
// @Param body formData string false "Body"
// @Param files formData file false "Attachments"
// @Success 201 {object} model.Post
// @Failure 400 {string} string "Validation failed"
// @Failure 403 {string} string "Forbidden"
// @Failure 413 {string} string "Upload exceeds the maximum size"
// @Router /classes/{id}/posts [post]
func (h *PostHandler) createPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	f, req, ok := h.readForm(w, r)
	if !ok {
		return
	}
	defer f.Close()

	post, err := h.postService.CreatePost(r.Context(), userID, r.PathValue("id"), req.Title, req.Body, f.Uploads)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// listPosts godoc
// @Summary List posts
// @Tags posts
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {array} model.Post
// @Router /classes/{id}/posts [get]
func (h *PostHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	posts, err := h.postService.ListPosts(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// updatePost godoc
// @Summary Update a post
// @Description With replace_files=true the existing attachments are removed first.
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param postId path string true "Post ID"
// @Param title formData string true "Title"
// @Param body formData string false "Body"
// @Param replace_files formData bool false "Replace attachments"
// @Param files formData file false "Attachments"
// @Success 200 {object} model.Post
// @Router /posts/{postId} [patch]
func (h *PostHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	f, req, ok := h.readForm(w, r)
	if !ok {
		return
	}
	defer f.Close()

	post, err := h.postService.UpdatePost(r.Context(), userID, r.PathValue("postId"), req.Title, req.Body, req.ReplaceFiles, f.Uploads)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// deletePost godoc
// @Summary Delete a post
// @Tags posts
// @Param postId path string true "Post ID"
// @Success 204
// @Router /posts/{postId} [delete]
func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.postService.DeletePost(r.Context(), userID, r.PathValue("postId")); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
