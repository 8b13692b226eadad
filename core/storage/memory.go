package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Make sure *MemoryClient satisfies the Client interface.
var _ Client = (*MemoryClient)(nil)

// MemoryClient is an in-process Client keyed by bucket and object name.
// Buckets spring into existence on first write.
type MemoryClient struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memoryObject
}

type memoryObject struct {
	data     []byte
	modified time.Time
}

// NewMemoryClient creates an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{buckets: make(map[string]map[string]memoryObject)}
}

func (m *MemoryClient) BucketExists(_ context.Context, bucketName string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.buckets[bucketName]
	return ok, nil
}

func (m *MemoryClient) ListObjects(ctx context.Context, bucketName, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ObjectInfo
	for key, obj := range m.buckets[bucketName] {
		if strings.HasPrefix(key, prefix) {
			out = append(out, obj.info(key))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryClient) StatObject(ctx context.Context, bucketName, objectName string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.buckets[bucketName][objectName]
	if !ok {
		return ObjectInfo{}, fmt.Errorf("%s/%s: %w", bucketName, objectName, ErrObjectNotFound)
	}
	return obj.info(objectName), nil
}

func (m *MemoryClient) GetObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.buckets[bucketName][objectName]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucketName, objectName, ErrObjectNotFound)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, _ int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var data []byte
	if reader != nil {
		var err error
		if data, err = io.ReadAll(reader); err != nil {
			return fmt.Errorf("put %s/%s: %w", bucketName, objectName, err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.buckets[bucketName]
	if !ok {
		bucket = make(map[string]memoryObject)
		m.buckets[bucketName] = bucket
	}
	bucket[objectName] = memoryObject{data: data, modified: time.Now()}
	return nil
}

func (m *MemoryClient) UploadFile(ctx context.Context, bucketName, objectName, filePath string) (ObjectInfo, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("opening file %s: %w", filePath, err)
	}
	if err := m.PutObject(ctx, bucketName, objectName, bytes.NewReader(data), int64(len(data))); err != nil {
		return ObjectInfo{}, err
	}
	return m.StatObject(ctx, bucketName, objectName)
}

func (m *MemoryClient) RemoveObject(_ context.Context, bucketName, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buckets[bucketName], objectName)
	return nil
}

func (o memoryObject) info(key string) ObjectInfo {
	return ObjectInfo{Key: key, Size: int64(len(o.data)), LastModified: o.modified}
}
