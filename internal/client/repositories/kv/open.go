package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medigenie/internal/client/migrations"
	"github.com/dmitrijs2005/medigenie/internal/config"
	"github.com/dmitrijs2005/medigenie/internal/dbx"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Store is an opened backend together with its release function.
type Store struct {
	Repository
	Backend string
	close   func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects the backend selected by cfg.StorageBackend and, for SQL
// backends, applies pending migrations.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite, "":
		return openSQL(ctx, "sqlite", cfg.SQLitePath, dbx.SQLite)
	case config.BackendPostgres:
		return openSQL(ctx, "pgx", cfg.PostgresDSN, dbx.Postgres)
	case config.BackendRedis:
		if cfg.RedisPrefix == "" {
			return nil, errors.New("redis prefix must not be empty")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return &Store{Repository: NewRedisRepository(client, cfg.RedisPrefix), Backend: config.BackendRedis, close: client.Close}, nil
	case config.BackendS3:
		repo, err := NewS3Repository(ctx, S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return &Store{Repository: repo, Backend: config.BackendS3}, nil
	case config.BackendMemory:
		return &Store{Repository: NewMemoryRepository(), Backend: config.BackendMemory}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func openSQL(ctx context.Context, driver, dsn string, dialect dbx.Dialect) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := migrations.Up(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{Repository: newSQLRepository(db, dialect), Backend: dialect.String(), close: db.Close}, nil
}
