package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"anoa.com/kudoswall/internal/bootstrap"
	"anoa.com/kudoswall/internal/config"
	"anoa.com/kudoswall/internal/server"
	"anoa.com/kudoswall/pkg/database"
	"anoa.com/kudoswall/pkg/logger"
	"anoa.com/kudoswall/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	db, err := database.Connect(database.Options{
		DSN:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		Debug:    !cfg.IsProduction(),
	})
	if err != nil {
		return err
	}

	if err := bootstrap.Migrate(db); err != nil {
		return err
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedDemoManager(db, zl); err != nil {
			return err
		}
	}

	redisClient := connectRedis(cfg, zl)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(server.Deps{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Meili:  connectMeili(cfg),
		Images: connectImages(cfg, zl),
		Log:    zl,
	})
	if err != nil {
		return err
	}

	jobs := srv.Scheduler()
	jobs.Start()
	defer jobs.Stop()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

// connectRedis returns nil when REDIS_URL is empty or unreachable; the app then
// runs without rate limits, live notifications or the avatar cache.
func connectRedis(cfg *config.Config, zl *zap.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		zl.Warn("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zl.Warn("invalid REDIS_URL, running without redis", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zl.Warn("redis unreachable, running without redis", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

func connectMeili(cfg *config.Config) meilisearch.ServiceManager {
	host := cfg.MeiliSearchHost
	if host == "" {
		return nil
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	return meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
}

func connectImages(cfg *config.Config, zl *zap.Logger) storage.ImageStorage {
	if cfg.CloudinaryURL == "" && cfg.CloudinaryCloudName == "" {
		zl.Info("cloudinary not configured, avatar upload disabled")
		return nil
	}

	images, err := storage.NewCloudinaryStorage(storage.CloudinaryOptions{
		URL:       cfg.CloudinaryURL,
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	})
	if err != nil {
		zl.Warn("cloudinary init failed, avatar upload disabled", zap.Error(err))
		return nil
	}
	return images
}
