package app

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

	"medrecord/internal/config"
	"medrecord/internal/database"
	"medrecord/internal/dedup"
	"medrecord/internal/handler"
	"medrecord/internal/ratelimit"
	"medrecord/internal/repository"
	"medrecord/internal/router"
	"medrecord/internal/service"
	"medrecord/internal/session"
)

type App struct {
	server *http.Server
	db     *database.DB
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	patientRepo := repository.NewPatientRepository(pool)
	medicationRepo := repository.NewMedicationRepository(pool)
	lookupRepo := repository.NewLookupRepository(pool)
	slog.Info("database ready")

	authService := service.NewAuthService(userRepo, cfg.BcryptCost)
	resetService := service.NewPasswordResetService(userRepo, authService, cfg.ResetTokenTTL)
	patientService := service.NewPatientService(patientRepo, lookupRepo)
	medicationService := service.NewMedicationService(medicationRepo)

	sessions := session.NewManager(cfg.SessionTTL, cfg.SecureCookies)
	limits := handler.RateLimits{
		LoginMax:       cfg.LoginMaxAttempts,
		LoginWindow:    cfg.LoginWindow,
		RegisterMax:    cfg.RegisterMaxAttempts,
		RegisterWindow: cfg.RegisterWindow,
		ResetMax:       cfg.ResetMaxAttempts,
		ResetWindow:    cfg.ResetWindow,
	}

	gateway := handler.NewGateway(
		authService,
		resetService,
		patientService,
		medicationService,
		sessions,
		ratelimit.New(),
		dedup.New(),
		limits,
	)

	appRouter := router.New(cfg, gateway)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.db.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.db.Close()
	slog.Info("server stopped")
	return nil
}
