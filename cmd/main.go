// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/parking-lot/internal/config"
	"github.com/Shivanand-hulikatti/parking-lot/internal/database"
	"github.com/Shivanand-hulikatti/parking-lot/internal/feed"
	"github.com/Shivanand-hulikatti/parking-lot/internal/handler"
	"github.com/Shivanand-hulikatti/parking-lot/internal/logging"
	"github.com/Shivanand-hulikatti/parking-lot/internal/repository"
	"github.com/Shivanand-hulikatti/parking-lot/internal/repository/memory"
	"github.com/Shivanand-hulikatti/parking-lot/internal/service"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogLevel)

	// Cancelled on SIGINT or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// ── 1. Open storage ───────────────────────────────────────────────────
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// ── 2. Wire up layers ────────────────────────────────────────────────
	hub := feed.NewHub(logger)
	parkingSvc := service.NewParkingService(store, loc, hub, logger)
	tariffSvc := service.NewTariffService(store, logger)
	areaSvc := service.NewAreaService(store, logger)
	vehicleSvc := service.NewVehicleService(store, logger)
	parkingHandler := handler.NewParkingHandler(parkingSvc, tariffSvc, areaSvc, vehicleSvc, logger)

	// ── 3. Build the router ───────────────────────────────────────────────
	router := handler.NewRouter(parkingHandler, hub, []byte(cfg.SecretKey), logger)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		logger.Info(gctx, "server listening", "addr", cfg.ListenAddr, "storage", cfg.Storage, "time_zone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore returns the configured Store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (repository.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn(ctx, "using in-memory storage; data is lost on restart")
		if cfg.SecretKey == config.DevSecretKey {
			logger.Warn(ctx, "using the default secret key; anyone can mint staff tokens")
		}
		return memory.NewStore(), func() {}, nil
	}

	pool, err := database.NewPool(ctx, database.PoolConfig{
		DSN:      cfg.DatabaseDSN,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	db := database.OpenDB(pool)
	release := func() {
		_ = db.Close()
		pool.Close()
	}
	logger.Info(ctx, "connected to PostgreSQL")

	if cfg.RunMigration {
		if err := database.Migrate(ctx, db); err != nil {
			release()
			return nil, nil, err
		}
		logger.Info(ctx, "migrations applied")
	}
	return repository.NewPostgresStore(db), release, nil
}
