package services

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/yungbote/pixelbuddy-backend/internal/platform/gcp"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

// ObjectStore writes image bytes to a caller-built path and returns the
// public reference. Put on an existing path overwrites it.
type ObjectStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

type objectStore struct {
	log    *logger.Logger
	bucket gcp.BucketService
}

func NewObjectStore(log *logger.Logger, bucket gcp.BucketService) ObjectStore {
	return &objectStore{
		log:    log.With("service", "ObjectStore"),
		bucket: bucket,
	}
}

func (s *objectStore) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &StorageError{Op: "put", Path: path, Err: errors.New("empty object path")}
	}
	if contentType == "" {
		contentType = PNGContentType
	}
	if err := s.bucket.UploadFile(ctx, path, contentType, bytes.NewReader(data)); err != nil {
		s.log.Warn("object upload failed", "path", path, "bytes", len(data), "error", err)
		return "", &StorageError{Op: "put", Path: path, Err: err}
	}
	s.log.Debug("object uploaded", "path", path, "bytes", len(data))
	return s.bucket.GetPublicURL(path), nil
}
