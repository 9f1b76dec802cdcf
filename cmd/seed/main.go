package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/internal/service"
	"github.com/railxam2004/CulT/migrations"
	"github.com/railxam2004/CulT/pkg/config"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	var (
		envFile       = pflag.String("env", "", "path to an env file (defaults to .env and the environment)")
		seedPath      = pflag.StringP("file", "f", "", "seed YAML file (defaults to the built-in catalog)")
		migrate       = pflag.Bool("migrate", true, "apply pending migrations first")
		skipCatalog   = pflag.Bool("skip-catalog", false, "do not load categories and tariffs")
		adminEmail    = pflag.String("admin-email", "", "create or promote this account to admin")
		adminPassword = pflag.String("admin-password", "", "password for a newly created admin")
		adminName     = pflag.String("admin-name", "Administrator", "display name for a newly created admin")
		timeout       = pflag.Duration("timeout", time.Minute, "overall timeout")
	)
	pflag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *envFile != "" {
		cfg, err = config.LoadWithPath(*envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{Level: "info", ServiceName: "seed", Development: cfg.IsDevelopment()}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg, &options{
		seedPath:    *seedPath,
		migrate:     *migrate,
		skipCatalog: *skipCatalog,
		admin: dto.RegisterRequest{
			Email:    strings.ToLower(strings.TrimSpace(*adminEmail)),
			Password: *adminPassword,
			Name:     *adminName,
		},
	}, appLog); err != nil {
		appLog.Error("Seed failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

type options struct {
	seedPath    string
	migrate     bool
	skipCatalog bool
	admin       dto.RegisterRequest
}

func run(ctx context.Context, cfg *config.Config, opts *options, appLog *logger.Logger) error {
	db, err := database.NewPostgres(ctx, database.FromConfig(&cfg.Database, false))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if opts.migrate {
		applied, err := migrations.Apply(ctx, db.Pool())
		if err != nil {
			return err
		}
		appLog.Info("Migrations applied", zap.Int("applied", applied))
	}

	if !opts.skipCatalog {
		seed, err := loadSeed(opts.seedPath)
		if err != nil {
			return err
		}
		catalog := service.NewCatalogService(
			repository.NewPostgresCategoryRepository(db.Pool()),
			repository.NewPostgresTariffRepository(db.Pool()),
		)
		res, err := applySeed(ctx, catalog, seed)
		if err != nil {
			return err
		}
		appLog.Info("Catalog seeded",
			zap.Int("categories_created", res.CategoriesCreated),
			zap.Int("categories_skipped", res.CategoriesSkipped),
			zap.Int("tariffs_created", res.TariffsCreated),
			zap.Int("tariffs_skipped", res.TariffsSkipped),
		)
	}

	if opts.admin.Email != "" {
		users := repository.NewPostgresUserRepository(db.Pool())
		auth := service.NewAuthService(users, &service.AuthServiceConfig{
			JWTSecret: cfg.JWT.Secret,
			Issuer:    cfg.JWT.Issuer,
		})
		user, created, err := ensureAdmin(ctx, auth, users, &opts.admin)
		if err != nil {
			return err
		}
		appLog.Info("Admin account ready", zap.String("user_id", user.ID), zap.String("email", user.Email), zap.Bool("created", created))
	}
	return nil
}
