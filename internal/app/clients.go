package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pixelbuddy-backend/internal/platform/gcp"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/redisx"
)

type Clients struct {
	Bucket gcp.BucketService
	// Redis is nil when REDIS_ADDR is unset.
	Redis *goredis.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	bucket, err := resolveBucketService(log, cfg)
	if err != nil {
		return Clients{}, err
	}

	rdb, err := redisx.NewClient(log, cfg.Redis)
	if err != nil {
		_ = bucket.Close()
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	if rdb == nil {
		log.Warn("REDIS_ADDR not set; Idempotency-Key headers are ignored")
	}

	return Clients{Bucket: bucket, Redis: rdb}, nil
}

func (c Clients) Close(log *logger.Logger) {
	if c.Bucket != nil {
		if err := c.Bucket.Close(); err != nil {
			log.Warn("bucket close failed", "error", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
}
