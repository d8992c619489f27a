package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/championship-system/broadcast"
	"github.com/Dosada05/championship-system/config"
	"github.com/Dosada05/championship-system/db"
	"github.com/Dosada05/championship-system/handlers"
	"github.com/Dosada05/championship-system/metrics"
	"github.com/Dosada05/championship-system/middleware"
	"github.com/Dosada05/championship-system/repositories"
	api "github.com/Dosada05/championship-system/routes"
	"github.com/Dosada05/championship-system/services"
	"github.com/Dosada05/championship-system/storage"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера (уровень уже проверен в Validate)
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("maintenance", cfg.MaintenanceMode),
		slog.String("public_url", cfg.PublicURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.EnsureSchema(ctx, dbConn); err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	uploader := storage.NewDisabledUploader()
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2Config.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2Config, logger)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("R2 credentials not set, media uploads are disabled")
	}

	// Инициализация WebSocket Hub
	hub := broadcast.NewHub(logger)
	go hub.Run(ctx)
	logger.Info("WebSocket Hub started")

	metricsManager := metrics.NewManager()
	tracer := otel.Tracer("championship-system")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	champRepo := repositories.NewPostgresChampionshipRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	athleteRepo := repositories.NewPostgresAthleteRepository(dbConn)
	sponsorRepo := repositories.NewPostgresSponsorRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo, logger)
	championshipService := services.NewChampionshipService(dbConn, champRepo, userRepo, teamRepo, athleteRepo, sponsorRepo, matchRepo, uploader, logger)
	teamService := services.NewTeamService(dbConn, teamRepo, champRepo, userRepo, athleteRepo, sponsorRepo, uploader, logger)
	athleteService := services.NewAthleteService(athleteRepo, teamRepo, champRepo)
	sponsorService := services.NewSponsorService(sponsorRepo, teamRepo, champRepo, uploader, logger)
	scheduleService := services.NewScheduleService(dbConn, champRepo, teamRepo, matchRepo, hub, metricsManager, tracer, logger)
	matchService := services.NewMatchService(matchRepo, teamRepo, champRepo, hub, metricsManager, tracer, logger)
	publicService := services.NewPublicService(champRepo, teamRepo, athleteRepo, sponsorRepo, matchRepo, uploader, logger)
	siteService := services.NewSiteService(cfg.MaintenanceMode)
	sportService := services.NewSportService()
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg.JWTSecretKey, logger),
		Championship: handlers.NewChampionshipHandler(championshipService),
		Team:         handlers.NewTeamHandler(teamService),
		Roster:       handlers.NewRosterHandler(athleteService, sponsorService),
		Schedule:     handlers.NewScheduleHandler(scheduleService),
		Match:        handlers.NewMatchHandler(matchService),
		Public:       handlers.NewPublicHandler(publicService),
		Site:         handlers.NewSiteHandler(siteService, dbConn, logger),
		Sport:        handlers.NewSportHandler(sportService),
		WebSocket:    handlers.NewWebSocketHandler(hub, publicService, cfg.AllowedOrigins(), logger),
	}
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, h, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.AllowedOrigins(),
		Maintenance:    cfg.MaintenanceMode,
		LoginLimiter:   middleware.PerMinute(cfg.LoginRatePerMinute),
		Metrics:        metricsManager,
		MetricsHandler: metricsManager.Handler(),
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
