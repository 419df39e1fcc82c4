package main

import (
	"context"
	"os"

	"kali/internal/auth"
	"kali/internal/config"
	"kali/internal/db"
	"kali/internal/logger"
	"kali/internal/repository"
	"kali/internal/seed"
	"kali/internal/service"
)

func main() {
	cfg := config.Load()
	logger.SetDefault(logger.New(os.Stdout, cfg.LogLevel))

	source := cfg.SeedSource
	if len(os.Args) > 1 {
		source = os.Args[1]
	}
	if source == "" {
		fatal("no seed source", "set SEED_SOURCE or pass a file path or URL")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		fatal("failed to connect to database", err)
	}
	if err := db.Migrate(gormDB, false); err != nil {
		fatal("failed to run migrations", err)
	}

	hasher, err := auth.NewHasher(cfg.PasswordHashScheme)
	if err != nil {
		fatal("failed to build password hasher", err)
	}
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Leeway)
	authService := service.NewAuthService(repository.NewUserRepository(gormDB), hasher, jwtService, service.AuthOptions{
		TokenTTL:            cfg.JWT.TTL,
		BootstrapAdminEmail: cfg.BootstrapAdminEmail,
	})

	ctx := context.Background()

	logger.Info("loading seed users", "source", source)
	users, err := seed.Load(ctx, source)
	if err != nil {
		fatal("failed to load seed users", err)
	}

	res, err := seed.Import(ctx, authService, users)
	if err != nil {
		fatal("failed to seed users", err)
	}

	logger.Info("seed completed", "created", res.Created, "skipped", res.Skipped, "total", len(users))
}

func fatal(msg string, err any) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
