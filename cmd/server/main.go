package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"veglia/internal/adapters/exposureapi"
	httpadapter "veglia/internal/adapters/http"
	"veglia/internal/adapters/notify"
	"veglia/internal/adapters/platform"
	pg "veglia/internal/adapters/postgres"
	"veglia/internal/config"
	ports "veglia/internal/ports"
	countriessvc "veglia/internal/services/countries"
	diagsvc "veglia/internal/services/diagnosis"
	exposvc "veglia/internal/services/exposure"
	checkworker "veglia/internal/workers/checkrunner"
)

func main() {
	cfg, err := config.Load()
	logger := config.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()
	if err != nil {
		logger.Warn("config", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required for Postgres adapters")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect error", zap.Error(err))
	}
	defer db.Close()

	// Wire repositories to services (ports)
	var _ ports.StatusRepository = db
	var _ ports.SummaryRepository = db
	var _ ports.CountryRepository = db

	policy := config.NewPolicyProvider(cfg)
	matching := platform.New(cfg.PlatformURL)
	notifier := notify.Logger{Log: logger}

	exposure := exposvc.New(db, db, matching, notifier, policy, logger)
	diagnosis := diagsvc.New(db, db, policy, exposureapi.New(cfg.UploadURL), exposure, logger)
	countries := countriessvc.New(db)

	srv := httpadapter.New(exposure, diagnosis, countries)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	// Optional background check-cycle worker polling the platform bridge
	if cfg.CheckWorker > 0 {
		go checkworker.Run(ctx, matching, exposure, cfg.CheckInterval, logger)
		logger.Info("check worker started", zap.Duration("interval", cfg.CheckInterval))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	logger.Info("listening", zap.String("addr", cfg.ListenAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	}
}
