package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(configFileEnv, "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("MAX_REQUEST_BODY_MB", "")
	t.Setenv("SCREENSHOT_GCS_BUCKET_NAME", "")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BucketName != "screenshots" {
		t.Fatalf("bucket: want=screenshots got=%q", cfg.BucketName)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("cors origins: got=%v", cfg.CORSAllowedOrigins)
	}
	if cfg.MaxBodyBytes != 64<<20 {
		t.Fatalf("max body: got=%d", cfg.MaxBodyBytes)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("idempotency ttl: got=%s", cfg.IdempotencyTTL)
	}
}

func TestLoadConfigFileEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pixelbuddy.yaml")
	body := "SCREENSHOT_GCS_BUCKET_NAME: from-file\nPORT: 9090\nCORS_ALLOWED_ORIGINS:\n  - https://a.example\n  - https://b.example\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configFileEnv, path)
	t.Setenv("PORT", "7070")
	// Registered so t.Setenv restores them after the file sets them.
	t.Setenv("SCREENSHOT_GCS_BUCKET_NAME", "")
	os.Unsetenv("SCREENSHOT_GCS_BUCKET_NAME")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	os.Unsetenv("CORS_ALLOWED_ORIGINS")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("port: env should win, got=%q", cfg.Port)
	}
	if cfg.BucketName != "from-file" {
		t.Fatalf("bucket: want=from-file got=%q", cfg.BucketName)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins: got=%v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigFileRejectsNested(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("REDIS:\n  addr: x\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configFileEnv, path)
	t.Setenv("REDIS", "")
	os.Unsetenv("REDIS")

	if _, err := LoadConfig(logger.Nop()); err == nil {
		t.Fatal("expected error for nested yaml value")
	}
}
