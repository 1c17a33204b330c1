package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"classroom/internal/api/v1/handler"
	"classroom/internal/config"
	"classroom/internal/middleware"
	"classroom/internal/service"
	"classroom/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Profiles    service.ProfileService
	Classes     service.ClassService
	Members     service.MemberService
	Files       service.FileService
	Posts       service.PostService
	Assignments service.AssignmentService
	Submissions service.SubmissionService
	Questions   service.QuestionService
	Playlists   service.PlaylistService
	Admin       service.AdminService
	Dashboard   service.DashboardService
	Auth        service.AuthService
	Chat        service.ChatService
}

// New mounts the API under /v1, the auth flow under /auth and the browser
// app everywhere else.
func New(cfg *config.Config, verifier *util.JWTVerifier, svc Services, logger zerolog.Logger) http.Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	maxUpload := cfg.MaxUploadMB << 20

	authMw := middleware.AuthMiddleware(verifier, logger)
	gatekeeper := middleware.RequireSession(verifier, cfg.LoginPath, logger)

	apiV1Mux := http.NewServeMux()
	handler.NewClassHandler(svc.Classes, svc.Members, svc.Files, validate, logger).RegisterRoutes(apiV1Mux, authMw)
	handler.NewPostHandler(svc.Posts, validate, maxUpload, logger).RegisterRoutes(apiV1Mux, authMw)
	handler.NewAssignmentHandler(svc.Assignments, svc.Submissions, validate, maxUpload, logger).RegisterRoutes(apiV1Mux, authMw)
	handler.NewQuestionHandler(svc.Questions, validate, logger).RegisterRoutes(apiV1Mux, authMw)
	handler.NewPlaylistHandler(svc.Playlists, validate, logger).RegisterRoutes(apiV1Mux, authMw)
	handler.NewAdminHandler(svc.Admin, validate, logger).RegisterRoutes(apiV1Mux, authMw)
	handler.NewViewHandler(svc.Dashboard, svc.Profiles, validate, logger).RegisterRoutes(apiV1Mux, authMw)
	handler.NewChatHandler(svc.Chat, validate, logger).RegisterRoutes(apiV1Mux, authMw)

	mux := http.NewServeMux()
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))
	handler.NewAuthHandler(svc.Auth, cfg.PublicBaseURL, cfg.LoginPath, !cfg.IsDevelopment(), logger).RegisterRoutes(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/", gatekeeper(spaHandler(cfg.StaticDir)))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.PublicBaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	logger.Info().Str("environment", cfg.Environment).Msg("Router initialized")
	return middleware.LoggerMiddleware(logger)(c.Handler(mux))
}

// spaHandler serves the built browser app. Unknown paths get index.html so
// client-side routes survive a reload.
func spaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean("/" + r.URL.Path)
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean)))
		if err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(clean, "/assets/") {
			http.NotFound(w, r)
			return
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.Error(w, "Frontend not built", http.StatusNotFound)
			return
		}
		http.ServeFile(w, r, index)
	})
}
