package logger

import (
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the process-wide logger, also installed as slog's default.
var Log *slog.Logger

// Init wires the global logger. Development gets readable text at
// debug level, production gets JSON at info level. With a Sentry DSN
// configured, errors are mirrored to Sentry on top of stdout.
func Init(isDev bool, sentryDSN string) {
	var base slog.Handler
	if isDev {
		base = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		base = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	handler := base

	var sentryErr error
	if sentryDSN != "" {
		env := "production"
		if isDev {
			env = "development"
		}
		sentryErr = sentry.Init(sentry.ClientOptions{
			Dsn:         sentryDSN,
			Environment: env,
		})
		if sentryErr == nil {
			handler = slogmulti.Fanout(base, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)

	// A bad DSN should not take the process down, just note it.
	if sentryErr != nil {
		Log.Warn("sentry disabled", "error", sentryErr)
	}
}
