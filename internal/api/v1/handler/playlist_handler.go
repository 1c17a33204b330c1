package handler

import (
	"net/http"

	"classroom/internal/api/v1/dto"
	"classroom/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// PlaylistHandler handles ordered collections of class files
type PlaylistHandler struct {
	playlistService service.PlaylistService
	validate        *validator.Validate
	logger          zerolog.Logger
}

func NewPlaylistHandler(playlistService service.PlaylistService, validate *validator.Validate, logger zerolog.Logger) *PlaylistHandler {
	return &PlaylistHandler{
		playlistService: playlistService,
		validate:        validate,
		logger:          logger.With().Str("handler", "PlaylistHandler").Logger(),
	}
}

func (h *PlaylistHandler) RegisterRoutes(mux *http.ServeMux, authMw authMiddleware) {
	mux.Handle("POST /classes/{id}/playlists", authMw(http.HandlerFunc(h.createPlaylist)))
	mux.Handle("GET /classes/{id}/playlists", authMw(http.HandlerFunc(h.listPlaylists)))
	mux.Handle("DELETE /playlists/{playlistId}", authMw(http.HandlerFunc(h.deletePlaylist)))
	mux.Handle("POST /playlists/{playlistId}/files", authMw(http.HandlerFunc(h.addFile)))
	mux.Handle("DELETE /playlists/{playlistId}/files/{fileId}", authMw(http.HandlerFunc(h.removeFile)))
}

// createPlaylist godoc
// @Summary Create a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param body body dto.PlaylistCreateDTO true "Playlist"
// @Success 201 {object} model.Playlist
// @Router /classes/{id}/playlists [post]
func (h *PlaylistHandler) createPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.PlaylistCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	p, err := h.playlistService.CreatePlaylist(r.Context(), userID, r.PathValue("id"), req.Title, req.Description)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create playlist")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// listPlaylists godoc
// @Summary List playlists
// @Tags playlists
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {array} model.Playlist
// @Router /classes/{id}/playlists [get]
func (h *PlaylistHandler) listPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	list, err := h.playlistService.ListPlaylists(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list playlists")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// addFile godoc
// @Summary Add a file to a playlist
// @Description The file must belong to the playlist's class. It is appended at the end.
// @Tags playlists
// @Accept json
// @Produce json
// @Param playlistId path string true "Playlist ID"
// @Param body body dto.PlaylistFileDTO true "File"
// @Success 201 {object} model.PlaylistFile
// @Failure 409 {string} string "File already in playlist"
// @Router /playlists/{playlistId}/files [post]
func (h *PlaylistHandler) addFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.PlaylistFileDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	entry, err := h.playlistService.AddFile(r.Context(), userID, r.PathValue("playlistId"), req.FileID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to add file to playlist")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// removeFile godoc
// @Summary Remove a file from a playlist
// @Tags playlists
// @Param playlistId path string true "Playlist ID"
// @Param fileId path string true "File ID"
// @Success 204
// @Router /playlists/{playlistId}/files/{fileId} [delete]
func (h *PlaylistHandler) removeFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.playlistService.RemoveFile(r.Context(), userID, r.PathValue("playlistId"), r.PathValue("fileId")); err != nil {
		writeServiceError(w, h.logger, err, "Failed to remove file from playlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deletePlaylist godoc
// @Summary Delete a playlist
// @Tags playlists
// @Param playlistId path string true "Playlist ID"
// @Success 204
// @Router /playlists/{playlistId} [delete]
func (h *PlaylistHandler) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.playlistService.DeletePlaylist(r.Context(), userID, r.PathValue("playlistId")); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete playlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
