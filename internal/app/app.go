package app

import (
	"fmt"

	"github.com/habitedge/habitedge/internal/config"
	"github.com/habitedge/habitedge/internal/db"
	"github.com/habitedge/habitedge/internal/metrics"
	"github.com/habitedge/habitedge/internal/notify"
	"github.com/habitedge/habitedge/internal/repository"
	"github.com/habitedge/habitedge/internal/service"
	"github.com/habitedge/habitedge/internal/storage"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Metrics        *metrics.Metrics
	Hub            *notify.Hub
	AuthService    *service.AuthService
	UserService    *service.UserService
	ProfileService *service.ProfileService
	EmailService   *service.EmailService
	MediaService   *service.MediaService
	TargetService  *service.TargetService
	JournalService *service.JournalService
	StatsService   *service.StatsService
	GuideService   *service.GuideService
	ExportService  *service.ExportService
	StravaService  *service.StravaService
	DigestService  *service.DigestService
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// The schema is current before anything else touches it.
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	mediaRepository := repository.NewMediaRepository(database)
	targetRepository := repository.NewTargetRepository(database)
	journalRepository := repository.NewJournalRepository(database)
	settingsRepository := repository.NewSettingsRepository(database)

	// Object storage is optional; without it uploads are disabled but
	// everything else works.
	var fileStorage storage.Storage
	if cfg.S3Enabled() {
		fileStorage, err = storage.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %v", err)
		}
	}

	m := metrics.New()

	// Event fan-out: websocket hub always, webhook when configured.
	hub := notify.NewHub()
	notifiers := notify.Multi{hub}
	if cfg.WebhookEnabled() {
		webhook, err := notify.NewWebhookSender(cfg.WebhookURL, cfg.WebhookSecret, m)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize webhook sender: %v", err)
		}
		notifiers = append(notifiers, webhook)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	mediaService := service.NewMediaService(mediaRepository, fileStorage)
	profileService := service.NewProfileService(profileRepository, userRepository)
	targetService := service.NewTargetService(targetRepository, notifiers, m)
	journalService := service.NewJournalService(journalRepository, profileService, notifiers, m)
	statsService := service.NewStatsService(targetRepository, journalRepository, profileService)
	authService := service.NewAuthService(
		userRepository,
		profileRepository,
		tokenRepository,
		emailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.TokenMagicLinkExpiry,
	)
	userService := service.NewUserService(
		userRepository,
		profileRepository,
		targetRepository,
		journalRepository,
		mediaService,
		emailService,
	)
	guideService := service.NewGuideService(cfg.ContentPath)
	exportService := service.NewExportService(
		targetRepository,
		journalRepository,
		targetService,
		journalService,
		profileService,
	)
	stravaService := service.NewStravaService(cfg.StravaClientID, cfg.StravaClientSecret, cfg.AppURL, journalService)
	digestService := service.NewDigestService(statsService, userRepository, profileService, emailService, settingsRepository)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Metrics:        m,
		Hub:            hub,
		AuthService:    authService,
		UserService:    userService,
		ProfileService: profileService,
		EmailService:   emailService,
		MediaService:   mediaService,
		TargetService:  targetService,
		JournalService: journalService,
		StatsService:   statsService,
		GuideService:   guideService,
		ExportService:  exportService,
		StravaService:  stravaService,
		DigestService:  digestService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
