package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/photofolio/internal/auth"
	"github.com/photofolio/internal/cache"
	"github.com/photofolio/internal/config"
	"github.com/photofolio/internal/db"
	"github.com/photofolio/internal/handler"
	"github.com/photofolio/internal/logger"
	"github.com/photofolio/internal/migrate"
	"github.com/photofolio/internal/router"
	"github.com/photofolio/internal/service"
	"github.com/photofolio/internal/storage"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLog.Sync()

	if err := cfg.Validate(); err != nil {
		appLog.Fatal("refusing to start with an insecure configuration", "gin_mode", cfg.GinMode, "error", err)
	}
	if cfg.UsesDevSessionSecret() {
		appLog.Warn("using the development session secret, set SESSION_SECRET before deploying")
	}
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Init(db.Options{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN()})
	if err != nil {
		appLog.Fatal("failed to initialize database", "driver", cfg.DatabaseDriver, "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if cfg.AutoMigrate {
		applied, err := migrate.New(gdb, appLog).Up(ctx)
		if err != nil {
			appLog.Fatal("failed to migrate database", "error", err)
		}
		appLog.Info("database ready", "applied", applied)
	} else if pending, err := migrate.New(gdb, appLog).Pending(ctx); err == nil && len(pending) > 0 {
		appLog.Warn("database has pending migrations, run cmd/migrate", "pending", len(pending))
	}

	store, staticDir, staticURL := openBlobStore(ctx, cfg, appLog)
	listing := openCache(ctx, cfg, appLog)
	defer listing.Close()

	provider, err := auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if err != nil {
		if !errors.Is(err, auth.ErrNotConfigured) {
			appLog.Fatal("failed to configure oauth", "error", err)
		}
		appLog.Warn("google oauth is not configured, admin sign-in is disabled")
	}
	policy := auth.NewAdminPolicy(cfg.AdminEmails)
	if policy.Size() == 0 {
		appLog.Warn("ADMIN_EMAILS is empty, nobody can sign in as admin")
	}

	projects := service.NewProjectService(gdb, appLog)
	deps := handler.Deps{
		Projects: projects,
		Assets:   service.NewAssetService(store, projects, appLog, cfg.MaxUploadSize),
		Iconic:   service.NewIconicImageService(gdb),
		Cache:    listing,
		ListTTL:  cfg.ProjectsListTTL,
		Policy:   policy,
		Log:      appLog,
	}
	if provider != nil {
		deps.Provider = provider
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(handler.NewAPI(deps), router.Options{
		SessionSecret:  cfg.SessionSecret,
		SecureCookies:  cfg.GinMode == gin.ReleaseMode,
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      staticDir,
		StaticURL:      staticURL,
		Log:            appLog,
	})
	appLog.Info("server starting", "addr", cfg.ListenAddr, "blob_backend", cfg.BlobBackend)
	if err := r.Run(cfg.ListenAddr); err != nil {
		appLog.Fatal("failed to run server", "error", err)
	}
}

func openBlobStore(ctx context.Context, cfg config.AppConfig, appLog *logger.Logger) (storage.BlobStore, string, string) {
	switch cfg.BlobBackend {
	case "s3", "minio":
		store, err := storage.NewMinIOStore(cfg.S3)
		if err != nil {
			appLog.Fatal("failed to create object store client", "endpoint", cfg.S3.Endpoint, "error", err)
		}
		if err := store.EnsureBucket(ctx, cfg.S3.Region); err != nil {
			appLog.Fatal("failed to prepare bucket", "bucket", cfg.S3.Bucket, "error", err)
		}
		return store, "", ""
	default:
		store, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPath)
		if err != nil {
			appLog.Fatal("failed to prepare upload directory", "dir", cfg.UploadDir, "error", err)
		}
		return store, store.Root(), store.URLPath()
	}
}

func openCache(ctx context.Context, cfg config.AppConfig, appLog *logger.Logger) cache.ListingCache {
	if cfg.RedisURL == "" {
		return cache.NewMemoryCache()
	}
	listing, err := cache.NewRedisCache(ctx, cfg.RedisURL, appLog)
	if err != nil {
		appLog.Warn("redis unavailable, falling back to in-process cache", "error", err)
		return cache.NewMemoryCache()
	}
	return listing
}
