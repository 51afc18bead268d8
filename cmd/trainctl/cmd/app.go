package cmd

import (
	"github.com/habitedge/habitedge/internal/app"
	"github.com/habitedge/habitedge/internal/config"
	"github.com/habitedge/habitedge/internal/logger"
)

// withApp boots the full app (config, database, migrations) for a
// single command run. trainctl reads the same .env as the server.
func withApp(run func(*app.App) error) error {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return run(a)
}
