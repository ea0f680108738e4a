package types

import "time"

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"rescue"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Object storage. STORAGE_BACKEND is either "supabase" or "s3".
	StorageBackend     string `envconfig:"STORAGE_BACKEND" default:"supabase"`
	StorageBucketName  string `envconfig:"STORAGE_BUCKET_NAME" default:"animal-images"`
	SupabaseURL        string `envconfig:"SUPABASE_URL"`
	SupabaseServiceKey string `envconfig:"SUPABASE_SERVICE_KEY"`
	S3PublicBaseURL    string `envconfig:"S3_PUBLIC_BASE_URL"`

	// Reviewer registration
	ProfileRetryAttempts int           `envconfig:"PROFILE_RETRY_ATTEMPTS" default:"3"`
	ProfileRetryDelay    time.Duration `envconfig:"PROFILE_RETRY_DELAY" default:"1s"`

	// Report drafts kept between a failed submission and its retry
	ReportDraftTTL   time.Duration `envconfig:"REPORT_DRAFT_TTL" default:"30m"`
	ReportDraftLimit int           `envconfig:"REPORT_DRAFT_LIMIT" default:"500"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	// Auth Configuration
	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"session_id"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"3600"`
	RefreshMaxAgeSec int    `envconfig:"REFRESH_MAX_AGE_SEC" default:"2592000"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
