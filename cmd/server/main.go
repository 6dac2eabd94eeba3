package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/rohits-web03/modvault/internal/api"
	"github.com/rohits-web03/modvault/internal/api/handlers"
	"github.com/rohits-web03/modvault/internal/catalog"
	"github.com/rohits-web03/modvault/internal/config"
	"github.com/rohits-web03/modvault/internal/logger"
	"github.com/rohits-web03/modvault/internal/repositories"
)

// @title modvault API
// @version 1.0
// @description Catalog of Wabbajack modlists and the mod archives they require.
// @BasePath /
func main() {
	cfg := config.Load()
	logger.Init(cfg.Environment)
	defer logger.Sync()
	log := logger.Log

	if err := cfg.Validate(); err != nil {
		log.Fatalw("Invalid configuration", "error", err)
	}

	// Connect to database
	db, err := repositories.ConnectDatabase(cfg.DB_URL, cfg.SQLitePath(), logger.Named("gorm"))
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalw("Failed to open file store", "backend", cfg.StorageBackend, "error", err)
	}

	engine := catalog.NewEngine(repositories.NewCatalog(db), store, logger.Named("catalog"))
	bootstrapper := catalog.NewBootstrapper(engine, store, cfg.BootstrapWorkers, logger.Named("bootstrap"))
	h := handlers.New(engine, store, bootstrapper, cfg.MaxUploadBytes, logger.Named("http"))

	mux := api.SetupRouter(h, cfg.CorsConfig, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: mux,
		// Bodies can be several gigabytes, so only the headers are timed.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infow("Starting modvault server", "port", cfg.Port, "dataDir", cfg.DataDir, "storage", cfg.StorageBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Could not listen", "port", cfg.Port, "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Graceful shutdown failed", "error", err)
	}
}

func openStore(cfg config.Config) (repositories.BlobStore, error) {
	switch cfg.StorageBackend {
	case config.StorageR2:
		return repositories.NewR2Store(repositories.R2Options{
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			AccountID:       cfg.R2.AccountID,
			BucketName:      cfg.R2.BucketName,
			Region:          cfg.R2.Region,
			Prefix:          cfg.R2.Prefix,
			Endpoint:        cfg.R2.Endpoint,
			TempDir:         filepath.Join(cfg.DataDir, "tmp"),
		})
	default:
		return repositories.NewLocalStore(cfg.DataDir)
	}
}
