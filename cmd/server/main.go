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

	httpadapter "duescope/internal/adapters/http"
	pg "duescope/internal/adapters/postgres"
	"duescope/internal/config"
	"duescope/internal/logging"
	"duescope/internal/ports"
	"duescope/internal/services/coverage"
	"duescope/internal/workers/reportrunner"
)

func main() {
	cfg, cfgErr := config.Load()

	log, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfgErr != nil {
		log.Warn("config", zap.Error(cfgErr))
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for Postgres adapters")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Wire repositories to the engine (ports)
	reports := pg.ReportStore{DB: db}
	var _ ports.MemberRepository = db
	var _ ports.InvoiceRepository = db
	var _ ports.ReportRepository = reports

	engine := coverage.New(db, db, db, db, db, log)

	srv := httpadapter.New(engine, reports, log)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	// Optional background report workers
	if cfg.ReportWorkers > 0 {
		proc := reportrunner.Processor{
			Repo:        reports,
			Members:     db,
			Engine:      engine,
			Log:         log,
			Concurrency: cfg.ReportWorkers,
		}
		go reportrunner.Run(ctx, proc, cfg.PollInterval)
		log.Info("report workers started", zap.Int("concurrency", cfg.ReportWorkers))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	log.Info("listening", zap.String("addr", cfg.ListenAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		log.Fatal("server error", zap.Error(err))
	}
}
