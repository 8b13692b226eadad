package objects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"cloud-storage/core/storage"
	"cloud-storage/core/table"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the object storage facade used by handlers and commands.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	audit  *AuditLog
	codecs *Codecs
}

// NewService creates a new objects service. bucket is the default used when a call
// passes an empty bucket name; db is optional and enables the upload audit trail.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB) (*Service, error) {
	if client == nil {
		return nil, &Error{Kind: ErrConfig, Op: "objects.NewService", Err: storage.ErrNotInitialized}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	codecs, err := DefaultCodecs()
	if err != nil {
		return nil, newError("objects.NewService", ErrConfig, err)
	}
	return &Service{
		client: client,
		bucket: bucket,
		logger: logger,
		audit:  NewAuditLog(db),
		codecs: codecs,
	}, nil
}

// Open builds the storage client from cfg and wraps it in a Service.
func Open(cfg storage.Config, logger *zap.Logger, db *gorm.DB) (*Service, error) {
	client, err := storage.NewClient(cfg)
	if err != nil {
		return nil, newError("objects.Open", ErrConfig, err)
	}
	return NewService(client, cfg.Bucket, logger, db)
}

// Codecs exposes the model codec registry so callers can register extra formats.
func (s *Service) Codecs() *Codecs { return s.codecs }

// Audit returns the upload audit log, nil when no database is configured.
func (s *Service) Audit() *AuditLog { return s.audit }

// DefaultBucket returns the bucket used when callers pass an empty name.
func (s *Service) DefaultBucket() string { return s.bucket }

func (s *Service) bucketName(op, bucket string) (string, error) {
	if bucket != "" {
		return bucket, nil
	}
	if s.bucket != "" {
		return s.bucket, nil
	}
	return "", argumentError(op, "bucket name is required")
}

// BucketExists reports whether bucket exists on the backend.
func (s *Service) BucketExists(ctx context.Context, bucket string) (bool, error) {
	const op = "objects.BucketExists"
	b, err := s.Bucket(bucket)
	if err != nil {
		return false, err
	}
	ok, err := s.client.BucketExists(ctx, b.Name)
	if err != nil {
		return false, storageError(op, err)
	}
	return ok, nil
}

// KeyPathAvailable reports whether at least one object key starts with prefix.
func (s *Service) KeyPathAvailable(ctx context.Context, bucket, prefix string) (bool, error) {
	const op = "objects.KeyPathAvailable"
	b, err := s.Bucket(bucket)
	if err != nil {
		return false, err
	}
	refs, err := b.Objects(ctx, prefix)
	if err != nil {
		return false, storageError(op, err)
	}
	return len(refs) > 0, nil
}

// Bucket returns a lazy handle for bucket. Existence is not checked.
func (s *Service) Bucket(bucket string) (*BucketRef, error) {
	name, err := s.bucketName("objects.Bucket", bucket)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Resolved bucket handle", zap.String("bucket", name))
	return &BucketRef{Name: name, client: s.client}, nil
}

// FileObject looks key up as a prefix. Exactly one hit yields Single; zero or
// several yield Multiple.
func (s *Service) FileObject(ctx context.Context, key, bucket string) (Match, error) {
	const op = "objects.FileObject"
	b, err := s.Bucket(bucket)
	if err != nil {
		return nil, err
	}
	refs, err := b.Objects(ctx, key)
	if err != nil {
		return nil, storageError(op, err)
	}
	s.logger.Debug("Looked up object", zap.String("bucket", b.Name), zap.String("key", key), zap.Int("matches", len(refs)))
	if len(refs) == 1 {
		return Single{Object: refs[0]}, nil
	}
	return Multiple{Objects: refs}, nil
}

// ReadObject fetches the body of ref. With decode the body is returned as Text
// (it must be valid UTF-8); with makeReadable the result is wrapped in a Stream.
// An unresolved ref fails with ErrArgument before any request is made.
func (s *Service) ReadObject(ctx context.Context, ref ObjectRef, decode, makeReadable bool) (Content, error) {
	const op = "objects.ReadObject"
	if !ref.Resolved() {
		return nil, argumentError(op, "object reference %q is not resolved; obtain it from FileObject or a BucketRef", ref.Key)
	}

	body, err := ref.Get(ctx)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, newError(op, ErrTransport, fmt.Errorf("read %s/%s: %w", ref.Bucket, ref.Key, err))
	}

	if !decode {
		if makeReadable {
			return Stream{ReadSeeker: bytes.NewReader(data)}, nil
		}
		return Raw(data), nil
	}

	if !utf8.Valid(data) {
		return nil, newError(op, ErrParse, fmt.Errorf("%s/%s is not valid UTF-8", ref.Bucket, ref.Key))
	}
	text := string(data)
	if makeReadable {
		return Stream{ReadSeeker: strings.NewReader(text)}, nil
	}
	return Text(text), nil
}

// LoadModel decodes the model stored at dir/name (or name when dir is empty) into out.
// The codec is chosen by the key's extension.
func (s *Service) LoadModel(ctx context.Context, name, bucket, dir string, out any) error {
	const op = "objects.LoadModel"
	key := ModelKey(name, dir)

	ref, err := s.single(ctx, op, key, bucket)
	if err != nil {
		return err
	}

	content, err := s.ReadObject(ctx, ref, false, false)
	if err != nil {
		return newError(op, ErrTransport, err)
	}
	raw, _ := content.(Raw)

	if err := s.codecs.For(key).Decode(raw, out); err != nil {
		return newError(op, ErrSerialization, err)
	}
	s.logger.Info("Model loaded from bucket", zap.String("bucket", ref.Bucket), zap.String("key", key))
	return nil
}

// SaveModel encodes model with the codec for dir/name and stores it.
func (s *Service) SaveModel(ctx context.Context, model any, name, bucket, dir string) error {
	const op = "objects.SaveModel"
	b, err := s.Bucket(bucket)
	if err != nil {
		return err
	}
	key := ModelKey(name, dir)

	data, err := s.codecs.For(key).Encode(model)
	if err != nil {
		return newError(op, ErrSerialization, err)
	}
	if err := s.client.PutObject(ctx, b.Name, key, bytes.NewReader(data), int64(len(data))); err != nil {
		return storageError(op, err)
	}
	s.logger.Info("Model saved to bucket", zap.String("bucket", b.Name), zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// CreateFolder writes a zero-byte "folder/" marker unless one already exists.
// Only a not-found probe leads to creation; any other probe failure is returned.
func (s *Service) CreateFolder(ctx context.Context, folder, bucket string) error {
	_, err := s.EnsureFolder(ctx, folder, bucket)
	return err
}

// EnsureFolder is CreateFolder that also reports whether a marker was written.
func (s *Service) EnsureFolder(ctx context.Context, folder, bucket string) (bool, error) {
	const op = "objects.CreateFolder"
	b, err := s.Bucket(bucket)
	if err != nil {
		return false, err
	}
	folder = strings.TrimSuffix(folder, "/")
	if folder == "" {
		return false, argumentError(op, "folder name is required")
	}
	marker := folder + "/"

	_, err = s.client.StatObject(ctx, b.Name, marker)
	switch {
	case err == nil:
		s.logger.Debug("Folder already exists", zap.String("bucket", b.Name), zap.String("folder", marker))
		return false, nil
	case !errors.Is(err, storage.ErrObjectNotFound):
		return false, storageError(op, err)
	}

	if err := s.client.PutObject(ctx, b.Name, marker, bytes.NewReader(nil), 0); err != nil {
		return false, storageError(op, err)
	}
	s.logger.Info("Created folder", zap.String("bucket", b.Name), zap.String("folder", marker))
	return true, nil
}

// CreateFolders runs CreateFolder for each folder and reports every failure.
func (s *Service) CreateFolders(ctx context.Context, bucket string, folders ...string) error {
	var result *multierror.Error
	for _, folder := range folders {
		if err := s.CreateFolder(ctx, folder, bucket); err != nil {
			s.logger.Error("Failed to create folder", zap.String("folder", folder), zap.Error(err))
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// UploadFile uploads the local file from to key to. With remove the local file is
// deleted after a successful upload.
func (s *Service) UploadFile(ctx context.Context, from, to, bucket string, remove bool) error {
	const op = "objects.UploadFile"
	if s.client == nil {
		return &Error{Kind: ErrConfig, Op: op, Err: storage.ErrNotInitialized}
	}
	b, err := s.Bucket(bucket)
	if err != nil {
		return err
	}
	if from == "" || to == "" {
		return argumentError(op, "source path and destination key are required")
	}

	s.logger.Info("Uploading file", zap.String("from", from), zap.String("to", to), zap.String("bucket", b.Name))
	info, err := s.client.UploadFile(ctx, b.Name, to, from)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newError(op, ErrLocal, err)
		}
		return storageError(op, err)
	}

	if remove {
		if err := os.Remove(from); err != nil {
			return newError(op, ErrLocal, fmt.Errorf("remove %s after upload: %w", from, err))
		}
		s.logger.Info("Removed local file after upload", zap.String("path", from))
	}

	rec := &UploadRecord{Bucket: b.Name, ObjectKey: to, Size: info.Size, Source: from, RemovedLocal: remove}
	if err := s.audit.Record(ctx, rec); err != nil {
		s.logger.Warn("Failed to record upload", zap.String("key", to), zap.Error(err))
	}
	return nil
}

// UploadTableAsCSV writes t to localPath as CSV and uploads it to remoteKey,
// removing the local file afterwards.
func (s *Service) UploadTableAsCSV(ctx context.Context, t *table.Table, localPath, remoteKey, bucket string) error {
	const op = "objects.UploadTableAsCSV"
	if t == nil {
		return argumentError(op, "table is required")
	}
	if err := t.WriteFile(localPath); err != nil {
		return newError(op, ErrLocal, err)
	}
	if err := s.UploadFile(ctx, localPath, remoteKey, bucket, true); err != nil {
		return newError(op, ErrTransport, err)
	}
	return nil
}

// ObjectToTable parses the object body as CSV. "na" and empty cells are missing values.
func (s *Service) ObjectToTable(ctx context.Context, ref ObjectRef) (*table.Table, error) {
	const op = "objects.ObjectToTable"
	content, err := s.ReadObject(ctx, ref, true, true)
	if err != nil {
		return nil, newError(op, ErrTransport, err)
	}
	stream, _ := content.(Stream)

	t, err := table.ReadCSV(stream)
	if err != nil {
		return nil, newError(op, ErrParse, err)
	}
	s.logger.Debug("Parsed object as table", zap.String("key", ref.Key), zap.Int("rows", t.NumRows()), zap.Int("columns", t.NumCols()))
	return t, nil
}

// ReadCSV resolves key to a single object and parses it as CSV.
func (s *Service) ReadCSV(ctx context.Context, key, bucket string) (*table.Table, error) {
	const op = "objects.ReadCSV"
	ref, err := s.single(ctx, op, key, bucket)
	if err != nil {
		return nil, err
	}
	return s.ObjectToTable(ctx, ref)
}

// single resolves key and insists on exactly one match.
func (s *Service) single(ctx context.Context, op, key, bucket string) (ObjectRef, error) {
	match, err := s.FileObject(ctx, key, bucket)
	if err != nil {
		return ObjectRef{}, newError(op, ErrTransport, err)
	}
	switch m := match.(type) {
	case Single:
		return m.Object, nil
	case Multiple:
		return ObjectRef{}, &Error{
			Kind: ErrNotFound,
			Op:   op,
			Err:  fmt.Errorf("expected exactly one object for key %q, found %d", key, len(m.Objects)),
		}
	default:
		return ObjectRef{}, argumentError(op, "unexpected match type %T", match)
	}
}
