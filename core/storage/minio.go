package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioClient keeps the high-level client for listing and transfers and the
// low-level Core for raw single-request puts.
type minioClient struct {
	resource *minio.Client
	control  *minio.Core
}

func newMinioClient(cfg Config) (*minioClient, error) {
	// Minio expects endpoint without scheme
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: cfg.httpTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	if core == nil || core.Client == nil {
		return nil, ErrNotInitialized
	}
	// Minio connects lazily; operation-level deadlines come from the caller's context.
	return &minioClient{resource: core.Client, control: core}, nil
}

func (c *minioClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return c.resource.BucketExists(ctx, bucketName)
}

func (c *minioClient) ListObjects(ctx context.Context, bucketName, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}
	for obj := range c.resource.ListObjects(ctx, bucketName, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucketName, prefix, obj.Err)
		}
		out = append(out, fromMinioInfo(obj))
	}
	return out, nil
}

func (c *minioClient) StatObject(ctx context.Context, bucketName, objectName string) (ObjectInfo, error) {
	info, err := c.resource.StatObject(ctx, bucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, minioError(err, bucketName, objectName)
	}
	return fromMinioInfo(info), nil
}

func (c *minioClient) GetObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	obj, err := c.resource.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, minioError(err, bucketName, objectName)
	}
	// GetObject is lazy; Stat forces the request so a missing key surfaces here.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, minioError(err, bucketName, objectName)
	}
	return obj, nil
}

func (c *minioClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64) error {
	if reader == nil {
		reader = bytes.NewReader(nil)
	}
	_, err := c.control.PutObject(ctx, bucketName, objectName, reader, objectSize, "", "", minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucketName, objectName, err)
	}
	return nil
}

func (c *minioClient) UploadFile(ctx context.Context, bucketName, objectName, filePath string) (ObjectInfo, error) {
	info, err := c.resource.FPutObject(ctx, bucketName, objectName, filePath, minio.PutObjectOptions{})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("upload %s to %s/%s: %w", filePath, bucketName, objectName, err)
	}
	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

func (c *minioClient) RemoveObject(ctx context.Context, bucketName, objectName string) error {
	return c.resource.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{})
}

func fromMinioInfo(obj minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          obj.Key,
		Size:         obj.Size,
		ETag:         obj.ETag,
		ContentType:  obj.ContentType,
		LastModified: obj.LastModified,
	}
}

// minioError maps a 404 response onto ErrObjectNotFound and keeps the SDK error in the chain.
func minioError(err error, bucketName, objectName string) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" {
		return fmt.Errorf("%s/%s: %w", bucketName, objectName, errors.Join(ErrObjectNotFound, err))
	}
	return fmt.Errorf("%s/%s: %w", bucketName, objectName, err)
}
