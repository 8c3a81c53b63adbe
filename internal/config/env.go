package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides overrides config values with environment variables if set.
// Invalid values fail fast instead of being ignored.
func applyEnvOverrides(cfg *Config) error {
	if backend := os.Getenv("INVENTORY_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if path := os.Getenv("INVENTORY_FILE"); path != "" {
		cfg.Storage.Path = path
	}
	if dsn := os.Getenv("INVENTORY_DSN"); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	if timeout := os.Getenv("INVENTORY_TIMEOUT"); timeout != "" {
		t, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid INVENTORY_TIMEOUT %q: %w", timeout, err)
		}
		cfg.Storage.Timeout = t
	}

	// Redis
	if addr := os.Getenv("INVENTORY_REDIS_ADDR"); addr != "" {
		cfg.Storage.Redis.Addr = addr
	}
	if password := os.Getenv("INVENTORY_REDIS_PASSWORD"); password != "" {
		cfg.Storage.Redis.Password = password
	}
	if db := os.Getenv("INVENTORY_REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return fmt.Errorf("invalid INVENTORY_REDIS_DB %q: %w", db, err)
		}
		cfg.Storage.Redis.DB = n
	}
	if prefix, ok := os.LookupEnv("INVENTORY_REDIS_PREFIX"); ok {
		cfg.Storage.Redis.Prefix = prefix
	}

	// S3
	if bucket := os.Getenv("INVENTORY_S3_BUCKET"); bucket != "" {
		cfg.Storage.S3.Bucket = bucket
	}
	if key := os.Getenv("INVENTORY_S3_KEY"); key != "" {
		cfg.Storage.S3.Key = key
	}
	if region := os.Getenv("INVENTORY_S3_REGION"); region != "" {
		cfg.Storage.S3.Region = region
	}
	if endpoint := os.Getenv("INVENTORY_S3_ENDPOINT"); endpoint != "" {
		cfg.Storage.S3.Endpoint = endpoint
	}
	if pathStyle := os.Getenv("INVENTORY_S3_PATH_STYLE"); pathStyle != "" {
		b, err := parseBool(pathStyle)
		if err != nil {
			return fmt.Errorf("invalid INVENTORY_S3_PATH_STYLE %q: %w", pathStyle, err)
		}
		cfg.Storage.S3.PathStyle = b
	}

	if autosave := os.Getenv("INVENTORY_AUTOSAVE"); autosave != "" {
		b, err := parseBool(autosave)
		if err != nil {
			return fmt.Errorf("invalid INVENTORY_AUTOSAVE %q: %w", autosave, err)
		}
		cfg.Autosave = b
	}

	if level := os.Getenv("INVENTORY_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("INVENTORY_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	if file := os.Getenv("INVENTORY_METRICS_FILE"); file != "" {
		cfg.Metrics.File = file
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected a boolean")
	}
}
