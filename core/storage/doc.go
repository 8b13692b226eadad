// Package storage provides an abstraction layer for object storage services.
//
// It hides the MinIO Go client and the AWS SDK v2 behind one Client interface so the
// rest of the service can list, stat, fetch and upload objects without caring which
// backend is configured. An in-memory implementation is included for local runs and tests.
//
// # Backends
//
//   - minio: *minio.Client for listings and file transfers, minio.Core for raw puts.
//   - s3: *s3.Client plus the feature/s3/manager uploader for multipart file uploads.
//   - memory: MemoryClient, process-local and goroutine-safe.
//
// # Not Found
//
// StatObject and GetObject wrap ErrObjectNotFound when the backend answers 404, so
// callers can use errors.Is without knowing SDK error types.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	objs, err := client.ListObjects(ctx, "artifacts", "models/")
package storage
