package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"kali/docs"
	"kali/internal/auth"
	"kali/internal/cache"
	"kali/internal/config"
	"kali/internal/db"
	"kali/internal/handler"
	"kali/internal/logger"
	"kali/internal/repository"
	"kali/internal/router"
	"kali/internal/service"
	"kali/internal/storage"
)

// @title Kali User API
// @version 1.0
// @description User accounts with registration, JWT login, profile management and profile pictures.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger.SetDefault(logger.New(os.Stdout, cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}
	if cfg.JWT.Secret == config.DefaultJWTSecret {
		logger.Warn("JWT_SECRET is the development placeholder; tokens can be forged by anyone who knows it", "env", cfg.Env)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		fatal("database init", err)
	}
	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		fatal("migrate", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, continuing without cache", "addr", cfg.RedisAddr, "error", err)
	}

	assets, assetRoot, err := newAssetStore(ctx, cfg)
	if err != nil {
		fatal("asset store init", err)
	}

	hasher, err := auth.NewHasher(cfg.PasswordHashScheme)
	if err != nil {
		fatal("password hasher init", err)
	}
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Leeway)

	userRepo := repository.NewUserRepository(gormDB)

	authService := service.NewAuthService(userRepo, hasher, jwtService, service.AuthOptions{
		TokenTTL:            cfg.JWT.TTL,
		BootstrapAdminEmail: cfg.BootstrapAdminEmail,
	})
	userService := service.NewUserService(userRepo, assets, cacheClient)

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Options{
		JWT:       jwtService,
		AssetRoot: assetRoot,
		Health: func(c echo.Context) error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(c.Request().Context())
		},
	}, handler.NewAuthHandler(authService), handler.NewUserHandler(userService))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server listening", "addr", addr, "swagger", "/swagger/index.html", "assets", cfg.Assets.Backend)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server start", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
}

// newAssetStore returns the configured asset store and, for the local
// backend, the directory to serve statically.
func newAssetStore(ctx context.Context, cfg *config.Config) (storage.AssetStore, string, error) {
	if cfg.Assets.Backend == config.AssetBackendS3 {
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.Assets.S3Bucket,
			Region:    cfg.Assets.S3Region,
			Endpoint:  cfg.Assets.S3Endpoint,
			AccessKey: cfg.Assets.S3AccessKey,
			SecretKey: cfg.Assets.S3SecretKey,
		})
		return store, "", err
	}

	store, err := storage.NewLocalStore(cfg.Assets.Dir)
	if err != nil {
		return nil, "", err
	}
	return store, store.Root(), nil
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
