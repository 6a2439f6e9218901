package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/biplus/ui-api/config"
	s3adapter "github.com/biplus/ui-api/internal/adapters/s3"
	"github.com/biplus/ui-api/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	infra, err := initInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer closeInfrastructure(ctx, infra, logger)

	if infra.DB != nil {
		if cfg.Postgres.RunMigrationsOnStart {
			if err = bootstrap.RunMigrations(ctx, infra.DB, logger); err != nil {
				return err
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	users, err := bootstrap.BuildUserStore(cfg.Directory, infra.DB, logger)
	if err != nil {
		return fmt.Errorf("build user store: %w", err)
	}
	sessions := bootstrap.BuildSessionStore(infra.Redis, cfg.Auth.SessionKeyPrefix)

	services, err := bootstrap.InitServices(bootstrap.ServiceDeps{
		Config:   &cfg,
		Users:    users,
		Sessions: sessions,
		Objects:  infra.Objects,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	server := bootstrap.StartHTTPServer(&bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})

	waitForSignal(logger)

	return bootstrap.ShutdownHTTPServer(bootstrap.ShutdownConfig{
		Context: ctx,
		Server:  server,
		Timeout: cfg.HTTP.ShutdownTimeout,
		Logger:  logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting biplus ui-api",
		"addr", cfg.HTTP.Addr,
		"directory_backend", cfg.Directory.Backend,
		"storage_bucket", cfg.Storage.Bucket,
		"dev_mode", cfg.IsDev)
}

// infrastructure groups the shared connections owned by the server process.
// DB is nil when the identity directory runs on the file backend.
type infrastructure struct {
	DB      *sql.DB
	Redis   *redis.Client
	Objects *s3adapter.ObjectStore
}

// initInfrastructure connects the backing stores concurrently. Any failure
// tears down whatever was already connected.
func initInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (infrastructure, error) {
	var infra infrastructure

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Directory.Backend == config.DirectoryBackendPostgres {
		g.Go(func() error {
			db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
				DBConfig: cfg.Postgres,
				Logger:   logger,
			})
			if err != nil {
				return fmt.Errorf("connect db: %w", err)
			}
			infra.DB = db
			return nil
		})
	}

	g.Go(func() error {
		client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
			RedisConfig: cfg.Redis,
			Logger:      logger,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		infra.Redis = client
		return nil
	})

	g.Go(func() error {
		store, err := bootstrap.BuildObjectStore(gctx, cfg.Storage, logger)
		if err != nil {
			return fmt.Errorf("connect artifact store: %w", err)
		}
		infra.Objects = store
		return nil
	})

	if err := g.Wait(); err != nil {
		closeInfrastructure(ctx, infra, logger)
		return infrastructure{}, err
	}

	return infra, nil
}

func closeInfrastructure(ctx context.Context, infra infrastructure, logger *slog.Logger) {
	if infra.Redis != nil {
		if err := infra.Redis.Close(); err != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", err)
		}
	}
	if infra.DB != nil {
		if err := infra.DB.Close(); err != nil {
			logger.ErrorContext(ctx, "close database failed", "error", err)
		}
	}
}

// waitForSignal blocks until the process receives SIGINT or SIGTERM.
func waitForSignal(logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	sig := <-quit
	logger.Info("shutdown signal received", "signal", sig.String())
}
