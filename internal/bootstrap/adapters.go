package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/biplus/ui-api/config"
	"github.com/biplus/ui-api/internal/adapters/configfile"
	redisadapter "github.com/biplus/ui-api/internal/adapters/redis"
	s3adapter "github.com/biplus/ui-api/internal/adapters/s3"
	"github.com/biplus/ui-api/internal/data"
	"github.com/biplus/ui-api/internal/ports"
	"github.com/redis/go-redis/v9"
)

// BuildUserStore selects the identity directory backend from configuration.
//
//nolint:ireturn // the caller only needs the port; the backend is a config choice.
func BuildUserStore(cfg config.DirectoryConfig, db *sql.DB, logger *slog.Logger) (ports.UserStore, error) {
	switch cfg.Backend {
	case config.DirectoryBackendFile:
		if logger != nil {
			logger.Info("using file identity directory", "path", cfg.FilePath)
		}
		return configfile.NewUserStore(cfg.FilePath), nil
	case config.DirectoryBackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres directory backend requires a database connection")
		}
		return &data.UserRepo{DB: db}, nil
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.Backend)
	}
}

// BuildSessionStore wires the Redis session store with the configured key prefix.
func BuildSessionStore(client redis.UniversalClient, prefix string) *redisadapter.SessionStore {
	if prefix == "" {
		return redisadapter.NewSessionStore(client)
	}
	return redisadapter.NewSessionStoreWithPrefix(client, prefix)
}

// BuildObjectStore wires the artifact store against S3 or an S3-compatible endpoint.
func BuildObjectStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*s3adapter.ObjectStore, error) {
	store, err := s3adapter.New(ctx, s3adapter.Config{
		Bucket:          cfg.Bucket,
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		UsePathStyle:    cfg.UsePathStyle,
	})
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("artifact store connected", "bucket", cfg.Bucket, "endpoint", cfg.Endpoint)
	}
	return store, nil
}
