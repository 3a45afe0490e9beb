package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryBucket is an in-process BucketService used by the memory storage
// mode and by tests. FailUploads lets a test make selected keys fail.
type MemoryBucket struct {
	mu            sync.RWMutex
	bucket        string
	publicBaseURL string
	objects       map[string]MemoryObject
	failUpload    func(key string) error
}

type MemoryObject struct {
	Data        []byte
	ContentType string
}

func NewMemoryBucket(bucket string) *MemoryBucket {
	return &MemoryBucket{
		bucket:        bucket,
		publicBaseURL: "memory://" + bucket,
		objects:       map[string]MemoryObject{},
	}
}

func (m *MemoryBucket) FailUploads(fn func(key string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUpload = fn
}

func (m *MemoryBucket) UploadFile(ctx context.Context, key, contentType string, file io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	fail := m.failUpload
	m.mu.RUnlock()
	if fail != nil {
		if err := fail(key); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read upload body: %w", err)
	}
	if contentType == "" {
		contentType = contentTypeForKey(key)
	}
	m.mu.Lock()
	m.objects[key] = MemoryObject{Data: data, ContentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *MemoryBucket) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	obj, ok := m.Object(key)
	if !ok {
		return nil, fmt.Errorf("object %q not found in bucket %q", key, m.bucket)
	}
	return io.NopCloser(bytes.NewReader(obj.Data)), nil
}

func (m *MemoryBucket) GetPublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	m.mu.RLock()
	base := m.publicBaseURL
	m.mu.RUnlock()
	if strings.HasPrefix(base, "memory://") {
		return base + "/" + key
	}
	return fmt.Sprintf("%s/%s/%s", base, m.bucket, key)
}

func (m *MemoryBucket) Object(key string) (MemoryObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return MemoryObject{}, false
	}
	return MemoryObject{Data: append([]byte(nil), obj.Data...), ContentType: obj.ContentType}, true
}

func (m *MemoryBucket) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *MemoryBucket) Close() error { return nil }
