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

	"github.com/Dosada05/chess-tournament/config"
	"github.com/Dosada05/chess-tournament/db"
	"github.com/Dosada05/chess-tournament/handlers"
	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/Dosada05/chess-tournament/realtime"
	"github.com/Dosada05/chess-tournament/repositories"
	api "github.com/Dosada05/chess-tournament/routes"
	"github.com/Dosada05/chess-tournament/services"
	"github.com/Dosada05/chess-tournament/state"
	"github.com/Dosada05/chess-tournament/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// @title Chess Tournament API
// @version 1.0
// @description Турниры, регистрация, расписание партий и турнирная таблица.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Bool("r2_enabled", cfg.R2Enabled()))

	if err := run(cfg, logger); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(ctx, dbConn); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info("database schema is up to date")

	// Cloudflare R2 нужен только для экспорта таблиц
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 is not configured, standings export is disabled")
	}

	// Инициализация репозиториев
	tx := repositories.NewTransactor(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)

	// Инициализация сервисов
	tournamentService := services.NewTournamentService(tx, tournamentRepo, registrationRepo, matchRepo, logger)
	registrationService := services.NewRegistrationService(tx, tournamentRepo, registrationRepo, playerRepo, logger)
	playerService := services.NewPlayerService(playerRepo, logger)
	matchService := services.NewMatchService(matchRepo, tournamentRepo, logger)
	standingsService := services.NewStandingsService(tournamentRepo, registrationRepo, matchRepo)
	exportService := services.NewExportService(standingsService, uploader, logger)

	// Снимок состояния и realtime
	store := state.NewStore(state.NewRepositoryLoader(tournamentRepo, playerRepo, registrationRepo, matchRepo), logger)
	if err := store.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load initial state: %w", err)
	}
	defer store.Stop()

	wsHub := realtime.NewHub(logger)
	liveUpdates := services.NewLiveUpdates(wsHub, standingsService, logger)
	listener := realtime.NewListener(cfg.DatabaseURL, logger)
	listener.Subscribe(store)
	listener.Subscribe(liveUpdates)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if _, err := state.ScheduleResync(ctx, scheduler, store, cfg.ResyncInterval, logger); err != nil {
		return fmt.Errorf("failed to schedule resync: %w", err)
	}
	writeLimiter := middleware.NewRateLimiter(cfg.WriteRateLimit, cfg.WriteRateBurst)
	if _, err := middleware.ScheduleSweep(scheduler, writeLimiter, logger); err != nil {
		return fmt.Errorf("failed to schedule rate limiter sweep: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("scheduler shutdown failed", slog.Any("error", err))
		}
	}()
	logger.Info("state resync scheduled", slog.Duration("interval", cfg.ResyncInterval))

	// Настройка маршрутизатора
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey, cfg.JWTIssuer, cfg.AdminUserIDs, logger)
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament:   handlers.NewTournamentHandler(tournamentService, exportService, store),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Match:        handlers.NewMatchHandler(matchService),
		Standings:    handlers.NewStandingsHandler(standingsService, exportService),
		Player:       handlers.NewPlayerHandler(playerService),
		Snapshot:     handlers.NewSnapshotHandler(store, dbConn),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, store, cfg.CORSAllowedOrigins, logger),
	}, authenticator, writeLimiter, cfg.CORSAllowedOrigins, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wsHub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return listener.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			// If shutdown fails, force close.
			_ = server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
		return nil
	})

	return g.Wait()
}
