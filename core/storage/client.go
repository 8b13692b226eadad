package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrObjectNotFound is returned (wrapped) by StatObject and GetObject when the key does not exist.
	ErrObjectNotFound = errors.New("object not found")
	// ErrNotInitialized is returned by NewClient when the backend handle could not be built.
	ErrNotInitialized = errors.New("storage client is not initialized")
)

// ObjectInfo describes a stored object as reported by a listing or a stat call.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Client defines the interface for storage operations.
type Client interface {
	// BucketExists checks if a bucket exists.
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	// ListObjects lists every object whose key starts with prefix (recursive).
	ListObjects(ctx context.Context, bucketName, prefix string) ([]ObjectInfo, error)
	// StatObject fetches object metadata. A missing key yields ErrObjectNotFound.
	StatObject(ctx context.Context, bucketName, objectName string) (ObjectInfo, error)
	// GetObject downloads an object.
	GetObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)
	// PutObject uploads an object from a reader of known size.
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64) error
	// UploadFile uploads a local file.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) (ObjectInfo, error)
	// RemoveObject deletes an object from a bucket.
	RemoveObject(ctx context.Context, bucketName, objectName string) error
}

// NewClient creates the backend selected by cfg.Provider.
// Each backend builds its handles once here and keeps them for its lifetime.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderMinio:
		return newMinioClient(cfg)
	case ProviderS3:
		return newS3Client(context.Background(), cfg)
	case ProviderMemory:
		return NewMemoryClient(), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNotInitialized, cfg.Provider)
	}
}

func (cfg Config) timeout() time.Duration {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return time.Duration(timeout) * time.Second
}

// httpTransport builds a transport with strict connection timeouts for the minio backend.
func (cfg Config) httpTransport() *http.Transport {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	cfg.applyTimeouts(tr)
	return tr
}

// applyTimeouts sets the dial, TLS handshake and response header timeouts on tr.
func (cfg Config) applyTimeouts(tr *http.Transport) {
	timeoutDuration := cfg.timeout()
	tr.DialContext = (&net.Dialer{
		Timeout:   timeoutDuration,
		KeepAlive: 30 * time.Second,
	}).DialContext
	tr.TLSHandshakeTimeout = timeoutDuration
	tr.ResponseHeaderTimeout = timeoutDuration
}
