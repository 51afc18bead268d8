package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName      string
	AppEnv       string
	AppURL       string
	Port         string
	SupportEmail string
	ContentPath  string

	// Database. sqlite by default; DB_DRIVER=pgx switches to Postgres.
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret            string
	JWTExpiry            time.Duration
	TokenMagicLinkExpiry time.Duration

	// Strava import. Without credentials the import endpoints stay off.
	StravaClientID     string
	StravaClientSecret string

	// Email
	EmailFrom    string
	ResendAPIKey string
	WeeklyDigest bool

	// Outbound webhooks (optional)
	WebhookURL    string
	WebhookSecret string

	// Observability (optional)
	SentryDSN string

	// Object storage. Anything with an S3 API works; uploads are
	// disabled when no bucket is set.
	S3Region               string
	S3Bucket               string
	S3AccessKey            string
	S3SecretKey            string
	S3Endpoint             string        // set for MinIO, R2 and other non-AWS providers
	S3PresignExpiryPublic  time.Duration // avatar links, 7 days
	S3PresignExpiryPrivate time.Duration // attachment links, 1 hour
}

func Load() *Config {
	// .env is a convenience for development; deployments set real
	// environment variables.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, reading environment directly")
	}

	cfg := &Config{
		AppName:      envString("APP_NAME", "HabitEdge"),
		AppEnv:       envRequired("APP_ENV"), // 'development' or 'production'
		AppURL:       envRequired("APP_URL"), // base URL for email links and OAuth redirects
		Port:         envString("PORT", "8090"),
		SupportEmail: envString("SUPPORT_EMAIL", "hello@example.com"),
		ContentPath:  envString("CONTENT_PATH", "content"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/habitedge.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		JWTSecret:            envRequired("JWT_SECRET"),
		JWTExpiry:            envDuration("JWT_EXPIRY", 168*time.Hour),
		TokenMagicLinkExpiry: envDuration("TOKEN_MAGIC_LINK_EXPIRY", 10*time.Minute),

		StravaClientID:     envString("STRAVA_CLIENT_ID", ""),
		StravaClientSecret: envString("STRAVA_CLIENT_SECRET", ""),

		// RESEND_API_KEY may be empty in development; mail then goes
		// to the log instead of out.
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),
		WeeklyDigest: envBool("WEEKLY_DIGEST", false),

		WebhookURL:    envString("WEBHOOK_URL", ""),
		WebhookSecret: envString("WEBHOOK_SECRET", ""),

		SentryDSN: envString("SENTRY_DSN", ""),

		S3Region:               envString("S3_REGION", ""),
		S3Bucket:               envString("S3_BUCKET", ""),
		S3AccessKey:            envString("S3_ACCESS_KEY", ""),
		S3SecretKey:            envString("S3_SECRET_KEY", ""),
		S3Endpoint:             envString("S3_ENDPOINT", ""),
		S3PresignExpiryPublic:  envDuration("S3_PRESIGN_EXPIRY_PUBLIC", 168*time.Hour),
		S3PresignExpiryPrivate: envDuration("S3_PRESIGN_EXPIRY_PRIVATE", 1*time.Hour),
	}

	if cfg.IsProduction() {
		requireProductionSettings(cfg)
	}

	return cfg
}

// requireProductionSettings refuses to boot a production server that
// cannot deliver sign-in mail or would post unsigned webhooks.
func requireProductionSettings(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production requires RESEND_API_KEY",
			"hint", "use APP_ENV=development to log mail locally instead of sending")
		os.Exit(1)
	}
	if cfg.WebhookURL != "" && cfg.WebhookSecret == "" {
		slog.Error("WEBHOOK_URL is set but WEBHOOK_SECRET is missing")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("ignoring invalid bool", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("ignoring invalid duration", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required env var missing", "key", key)
		os.Exit(1)
	}
	return v
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// S3Enabled reports whether an object storage bucket is configured.
// Avatar and attachment uploads are turned off without one.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// StravaEnabled reports whether Strava OAuth credentials are configured.
func (c *Config) StravaEnabled() bool {
	return c.StravaClientID != "" && c.StravaClientSecret != ""
}

// WebhookEnabled reports whether outbound event delivery is configured.
func (c *Config) WebhookEnabled() bool {
	return c.WebhookURL != "" && c.WebhookSecret != ""
}

// Sanitized returns a copy holding only fields safe to put on a
// request context. No secrets and no credentials.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:      c.AppName,
		AppEnv:       c.AppEnv,
		AppURL:       c.AppURL,
		Port:         c.Port,
		SupportEmail: c.SupportEmail,

		EmailFrom: c.EmailFrom,

		StravaClientID: c.StravaClientID,

		S3Endpoint: c.S3Endpoint,
	}
}
