package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"classroom/internal/config"
	"classroom/internal/database"
	"classroom/internal/pubsub"
	"classroom/internal/repository"
	"classroom/internal/service"
	"classroom/internal/storage"
	"classroom/internal/util"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Build connects every backing service and returns the root handler plus a
// cleanup func releasing the clients.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (http.Handler, func(), error) {
		cleanup()
		return nil, nil, err
	}

	verifier, err := util.NewJWTVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("loading SUPABASE_JWT_SECRET: %w", err)
	}

	// 1. Database
	pool, err := database.Connect(ctx, cfg.DBConnectionString, cfg.IsDevelopment(), logger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, pool.Close)
	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, logger); err != nil {
			return fail(err)
		}
	}

	// 2. Object storage
	s3Opts := storage.S3Options{
		Endpoint:  cfg.S3URL,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.StoragePublicURL,
	}
	s3Client, err := storage.NewS3Client(ctx, s3Opts)
	if err != nil {
		return fail(err)
	}
	objects := storage.NewS3Storage(s3Client, s3Opts, logger)

	// 3. Google Cloud clients
	var gcpOpts []option.ClientOption
	if cfg.GCPCredentialsFile != "" {
		gcpOpts = append(gcpOpts, option.WithCredentialsFile(cfg.GCPCredentialsFile))
	}

	var publisher pubsub.Publisher = pubsub.NewLogPublisher(logger)
	if cfg.PubSubEnabled() {
		p, err := pubsub.NewPublisher(ctx, cfg.GCPProjectID, gcpOpts...)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { p.Close() })
		publisher = p
		logger.Info().Str("topic", cfg.EventsTopic).Msg("Publishing domain events to Pub/Sub")
	}
	events := pubsub.NewEmitter(publisher, cfg.EventsTopic, logger)

	var secrets service.SecretManagerService
	if cfg.InferenceToken == "" && cfg.InferenceTokenSecret != "" {
		secrets, err = service.NewSecretManagerService(ctx, cfg.GCPProjectID, gcpOpts...)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { secrets.Close() })
	}
	inferenceToken, err := service.ResolveInferenceToken(ctx, cfg.InferenceToken, cfg.InferenceTokenSecret, secrets)
	if err != nil {
		return fail(fmt.Errorf("resolving inference token: %w", err))
	}

	// 4. Rate limiting
	var limiter repository.RateLimitRepository
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fail(fmt.Errorf("invalid REDIS_URL: %w", err))
		}
		rdb := redis.NewClient(redisOpts)
		closers = append(closers, func() { rdb.Close() })
		limiter = repository.NewRedisRateLimitRepository(rdb)
	} else {
		logger.Warn().Msg("REDIS_URL not set, chat rate limiting disabled")
	}

	// 5. Repositories and services
	repos := service.Repositories{
		Profiles:    repository.NewProfileRepo(pool),
		Classes:     repository.NewClassRepo(pool),
		Members:     repository.NewMemberRepo(pool),
		Posts:       repository.NewPostRepo(pool),
		Assignments: repository.NewAssignmentRepo(pool),
		Submissions: repository.NewSubmissionRepo(pool),
		Files:       repository.NewFileRepo(pool),
		Questions:   repository.NewQuestionRepo(pool),
		Playlists:   repository.NewPlaylistRepo(pool),
	}

	profileSvc := service.NewProfileService(repos.Profiles)
	fileSvc := service.NewFileService(repos, objects, logger)
	classSvc := service.NewClassService(repos, fileSvc, events, logger)
	memberSvc := service.NewMemberService(repos, events, logger)
	postSvc := service.NewPostService(repos, fileSvc, logger)
	assignmentSvc := service.NewAssignmentService(repos, fileSvc, logger)
	submissionSvc := service.NewSubmissionService(repos, fileSvc, events, logger)
	questionSvc := service.NewQuestionService(repos, logger)
	playlistSvc := service.NewPlaylistService(repos, logger)
	adminSvc := service.NewAdminService(repos, classSvc, logger)

	dashboardSvc := service.NewDashboardService(repos, service.DashboardDeps{
		Profiles:    profileSvc,
		Classes:     classSvc,
		Members:     memberSvc,
		Posts:       postSvc,
		Assignments: assignmentSvc,
		Questions:   questionSvc,
		Playlists:   playlistSvc,
		Admin:       adminSvc,
	})
	authSvc := service.NewAuthService(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.OAuthProvider, profileSvc, logger)
	inference := service.NewInferenceClient(cfg.InferenceURL, inferenceToken, time.Duration(cfg.InferenceTimeoutSec)*time.Second, logger)
	chatSvc := service.NewChatService(inference, limiter, cfg.ChatRateLimitPerMinute, cfg.ChatMaxReplyChars, logger)

	svc := Services{
		Profiles:    profileSvc,
		Classes:     classSvc,
		Members:     memberSvc,
		Files:       fileSvc,
		Posts:       postSvc,
		Assignments: assignmentSvc,
		Submissions: submissionSvc,
		Questions:   questionSvc,
		Playlists:   playlistSvc,
		Admin:       adminSvc,
		Dashboard:   dashboardSvc,
		Auth:        authSvc,
		Chat:        chatSvc,
	}

	return New(cfg, verifier, svc, logger), cleanup, nil
}
