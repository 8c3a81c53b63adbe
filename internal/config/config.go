package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	BackendText     = "text"
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
)

const (
	DefaultTextFile = "inventario.txt"
	DefaultJSONFile = "inventario.json"
	DefaultSQLite   = "inventario.db"
	DefaultS3Key    = "inventario.json"
	DefaultTimeout  = 5 * time.Second
)

type Config struct {
	Storage  StorageConfig `yaml:"storage"`
	Autosave bool          `yaml:"autosave"`
	Log      LogConfig     `yaml:"log"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

type StorageConfig struct {
	Backend string        `yaml:"backend"`
	Path    string        `yaml:"path"` // text, json and sqlite backends
	DSN     string        `yaml:"dsn"`  // mysql and postgres backends
	Timeout time.Duration `yaml:"timeout"`
	Redis   RedisConfig   `yaml:"redis"`
	S3      S3Config      `yaml:"s3"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

type MetricsConfig struct {
	// File receives prometheus text exposition on exit, for the node
	// exporter textfile collector. Empty disables it.
	File string `yaml:"file"`
}

func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendText,
			Timeout: DefaultTimeout,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "inventory:",
			},
		},
		Autosave: true,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Normalize fills backend-dependent defaults such as the file path.
func (c *Config) Normalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendText
	}
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case BackendText:
			c.Storage.Path = DefaultTextFile
		case BackendJSON:
			c.Storage.Path = DefaultJSONFile
		case BackendSQLite:
			c.Storage.Path = DefaultSQLite
		}
	}
	if c.Storage.Backend == BackendS3 && c.Storage.S3.Key == "" {
		c.Storage.S3.Key = DefaultS3Key
	}
	if c.Storage.Timeout <= 0 {
		c.Storage.Timeout = DefaultTimeout
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendText, BackendJSON, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for %s backend", c.Storage.Backend)
		}
	case BackendMySQL, BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for %s backend", c.Storage.Backend)
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for redis backend")
		}
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
