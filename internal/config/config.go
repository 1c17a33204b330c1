package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	RunMigrations      bool   `envconfig:"RUN_MIGRATIONS" default:"false"`

	// Hosted auth (Supabase GoTrue)
	SupabaseURL     string `envconfig:"SUPABASE_URL" required:"true"`
	SupabaseAnonKey string `envconfig:"SUPABASE_ANON_KEY" required:"true"`
	// JWTSecret is either the HS256 secret or a PEM public key (RS*/ES*).
	JWTSecret     string `envconfig:"SUPABASE_JWT_SECRET" required:"true"`
	OAuthProvider string `envconfig:"OAUTH_PROVIDER" default:"google"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
	LoginPath     string `envconfig:"LOGIN_PATH" default:"/login"`
	StaticDir     string `envconfig:"STATIC_DIR" default:"./web/dist"`

	// Storage (Supabase S3)
	S3URL            string `envconfig:"S3_URL" required:"true"`
	S3Bucket         string `envconfig:"S3_BUCKET" default:"class-files"`
	S3Region         string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey      string `envconfig:"S3_ACCESS_KEY" required:"true"`
	S3SecretKey      string `envconfig:"S3_SECRET_KEY" required:"true"`
	StoragePublicURL string `envconfig:"STORAGE_PUBLIC_URL" required:"true"`
	MaxUploadMB      int64  `envconfig:"MAX_UPLOAD_MB" default:"25"`

	// Google Cloud
	GCPProjectID       string `envconfig:"GCP_PROJECT_ID"`
	GCPCredentialsFile string `envconfig:"GCP_CREDENTIALS_FILE"`
	EventsTopic        string `envconfig:"EVENTS_TOPIC"`

	// Chat proxy
	InferenceURL           string `envconfig:"INFERENCE_URL" required:"true"`
	InferenceToken         string `envconfig:"INFERENCE_TOKEN"`
	InferenceTokenSecret   string `envconfig:"INFERENCE_TOKEN_SECRET"`
	InferenceTimeoutSec    int    `envconfig:"INFERENCE_TIMEOUT_SEC" default:"60"`
	ChatMaxReplyChars      int    `envconfig:"CHAT_MAX_REPLY_CHARS" default:"1000"`
	ChatRateLimitPerMinute int    `envconfig:"CHAT_RATE_LIMIT_PER_MINUTE" default:"20"`
	RedisURL               string `envconfig:"REDIS_URL"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.SupabaseURL = strings.TrimRight(cfg.SupabaseURL, "/")
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	cfg.StoragePublicURL = strings.TrimRight(cfg.StoragePublicURL, "/")
	return &cfg, nil
}

// IsDevelopment reports whether the service runs against local infrastructure.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// PubSubEnabled reports whether domain events should be published.
func (c *Config) PubSubEnabled() bool {
	return c.GCPProjectID != "" && c.EventsTopic != ""
}
