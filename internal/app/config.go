package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/pixelbuddy-backend/internal/data/db"
	"github.com/yungbote/pixelbuddy-backend/internal/observability"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/envutil"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/redisx"
)

const configFileEnv = "PIXELBUDDY_CONFIG"

type Config struct {
	Port    string
	LogMode string

	DB db.Config

	ObjectStorageMode   string
	StorageEmulatorHost string
	BucketName          string
	CDNDomain           string
	PublicBaseURL       string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	Redis          redisx.Config
	IdempotencyTTL time.Duration

	MetricsEnabled bool
	Otel           observability.OtelConfig

	ShutdownTimeout time.Duration
}

// LoadConfig reads the environment. When PIXELBUDDY_CONFIG names a YAML
// file its keys fill any variable the environment leaves unset.
func LoadConfig(log *logger.Logger) (Config, error) {
	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		n, err := applyConfigFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load %s: %w", configFileEnv, err)
		}
		log.Info("Applied config file", "path", path, "keys", n)
	}

	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),
		DB: db.Config{
			Driver:     envutil.String("DB_DRIVER", db.DriverPostgres),
			Host:       envutil.String("POSTGRES_HOST", "localhost"),
			Port:       envutil.String("POSTGRES_PORT", "5432"),
			User:       envutil.String("POSTGRES_USER", "postgres"),
			Password:   envutil.String("POSTGRES_PASSWORD", ""),
			Name:       envutil.String("POSTGRES_NAME", "pixelbuddy"),
			SSLMode:    envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath: envutil.String("SQLITE_PATH", "pixelbuddy.db"),
		},
		ObjectStorageMode:   envutil.String("OBJECT_STORAGE_MODE", ""),
		StorageEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
		BucketName:          envutil.String("SCREENSHOT_GCS_BUCKET_NAME", "screenshots"),
		CDNDomain:           envutil.String("SCREENSHOT_CDN_DOMAIN", ""),
		PublicBaseURL:       envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", ""),
		CORSAllowedOrigins:  envutil.List("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MaxBodyBytes:        int64(envutil.Int("MAX_REQUEST_BODY_MB", 64)) << 20,
		Redis: redisx.Config{
			Addr:        envutil.String("REDIS_ADDR", ""),
			Password:    envutil.String("REDIS_PASSWORD", ""),
			DB:          envutil.Int("REDIS_DB", 0),
			DialTimeout: envutil.Duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		},
		IdempotencyTTL: envutil.Duration("IDEMPOTENCY_TTL", 24*time.Hour),
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "pixelbuddy-backend"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: float64(envutil.Int("OTEL_SAMPLE_PERCENT", 100)) / 100,
		},
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 20
	}

	log.Debug("Config loaded",
		"port", cfg.Port,
		"db_driver", cfg.DB.Driver,
		"object_storage_mode", cfg.ObjectStorageMode,
		"bucket", cfg.BucketName,
		"redis_enabled", cfg.Redis.Enabled(),
		"metrics_enabled", cfg.MetricsEnabled,
		"otel_enabled", cfg.Otel.Enabled,
	)
	return cfg, nil
}

// applyConfigFile sets each top-level YAML key as an environment variable
// unless the environment already defines it.
func applyConfigFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return 0, fmt.Errorf("parse yaml: %w", err)
	}
	applied := 0
	for key, val := range values {
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" || val == nil {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		s, err := overlayValue(val)
		if err != nil {
			return applied, fmt.Errorf("key %s: %w", key, err)
		}
		if err := os.Setenv(key, s); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func overlayValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ","), nil
	case map[string]any:
		return "", fmt.Errorf("nested values are not supported")
	default:
		return fmt.Sprint(t), nil
	}
}
