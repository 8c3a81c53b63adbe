package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory/internal/config"
	"github.com/rl1809/inventory/internal/port"
)

// Backend is an opened repository plus whatever connection it holds.
type Backend struct {
	Name       string
	Repository port.ProductRepository
	close      func() error
}

func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// Open builds the repository selected by cfg.Backend. Database backends are
// pinged and their schema created before Open returns.
func Open(ctx context.Context, cfg config.StorageConfig) (*Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	switch cfg.Backend {
	case config.BackendText:
		return &Backend{Name: cfg.Backend, Repository: NewTextFileAdapter(cfg.Path)}, nil

	case config.BackendJSON:
		return &Backend{Name: cfg.Backend, Repository: NewJSONFileAdapter(cfg.Path)}, nil

	case config.BackendSQLite:
		return openSQL(ctx, cfg.Backend, "sqlite", cfg.Path, NewSQLiteAdapter)

	case config.BackendMySQL:
		return openSQL(ctx, cfg.Backend, "mysql", cfg.DSN, NewMySQLAdapter)

	case config.BackendPostgres:
		return openSQL(ctx, cfg.Backend, "pgx", cfg.DSN, NewPostgresAdapter)

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		return &Backend{Name: cfg.Backend, Repository: NewRedisAdapter(rdb, cfg.Redis.Prefix), close: rdb.Close}, nil

	case config.BackendS3:
		adapter, err := NewS3Adapter(ctx, S3Config{
			Bucket:    cfg.S3.Bucket,
			Key:       cfg.S3.Key,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return &Backend{Name: cfg.Backend, Repository: adapter}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func openSQL(ctx context.Context, name, driver, dsn string, newAdapter func(*sql.DB) *SQLAdapter) (*Backend, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", name, err)
	}

	adapter := newAdapter(db)
	if err := adapter.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &Backend{Name: name, Repository: adapter, close: db.Close}, nil
}
