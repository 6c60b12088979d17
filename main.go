package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/camden-git/agencybackend/auth"
	"github.com/camden-git/agencybackend/config"
	"github.com/camden-git/agencybackend/database"
	"github.com/camden-git/agencybackend/handlers"
	"github.com/camden-git/agencybackend/media"
	"github.com/camden-git/agencybackend/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Infof("No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := config.SetupLogger(cfg)
	if !cfg.SessionSecretSet {
		log.Warn("SESSION_SECRET is not set; using a random secret, sessions will not survive a restart")
	}

	db, err := database.InitGormDB(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, map[media.AssetType]string{
		media.AssetTypeUpload:    cfg.UploadsSubDir,
		media.AssetTypeThumbnail: cfg.ThumbnailsSubDir,
	}, log)
	if err != nil {
		log.Fatalf("Failed to initialize media store: %v", err)
	}
	mediaProcessor := media.NewProcessor(mediaStore, cfg.ThumbnailMaxSize, log)

	modelRepo := repository.NewModelRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	authenticator := auth.NewAuthenticator(auth.Options{
		Secret:        cfg.SessionSecret,
		SessionMaxAge: cfg.SessionMaxAge,
		TokenTTL:      cfg.TokenTTL,
		CookieSecure:  cfg.CookieSecure,
	}, adminRepo)

	router := handlers.NewRouter(handlers.Routes{
		Models: handlers.NewModelHandler(modelRepo, handlers.Pagination{
			DefaultLimit: cfg.DefaultPageSize,
			MaxLimit:     cfg.MaxPageSize,
		}, log),
		Archives: handlers.NewArchiveHandler(archiveRepo, modelRepo, log),
		Auth:     handlers.NewAuthHandler(adminRepo, authenticator, log),
		Setup:    handlers.NewSetupHandler(adminRepo, log),
		Uploads:  handlers.NewUploadHandler(mediaProcessor, cfg.MaxUploadBytes, "/api/", log),
		Health: handlers.Health(func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}, log),
		Sessions: authenticator,
		Assets: map[string]string{
			cfg.UploadsSubDir:    cfg.UploadsPath,
			cfg.ThumbnailsSubDir: cfg.ThumbnailsPath,
		},
		CORSOrigins: cfg.CORSAllowedOrigins,
		Log:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.WithFields(logrus.Fields{
		"port":      cfg.Port,
		"driver":    cfg.DBDriver,
		"media":     cfg.MediaStoragePath,
		"page_size": cfg.DefaultPageSize,
	}).Info("starting server")

	if err := run(srv, db, cfg.ShutdownTimeout, log); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// run serves until SIGINT or SIGTERM, then drains in-flight requests and
// closes the database.
func run(srv *http.Server, db *gorm.DB, shutdownTimeout time.Duration, log *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server stopped")
	return nil
}
