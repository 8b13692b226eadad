package integrity

import (
	"context"

	"cloud-storage/feature/integrity/checks"

	"go.uber.org/zap"
)

// Requirements lists what a healthy bucket must contain.
type Requirements struct {
	Folders []string
	Files   []string
}

// Service handles integrity checks against one bucket.
type Service struct {
	store  checks.Store
	bucket string
	req    Requirements
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(store checks.Store, bucket string, req Requirements, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		bucket: bucket,
		req:    req,
		logger: logger,
	}
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.store, s.bucket, s.req.Folders)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.store, s.bucket, s.logger, missing)
}

// CheckFiles returns a list of required files that are absent.
func (s *Service) CheckFiles(ctx context.Context) ([]string, error) {
	return checks.CheckFiles(ctx, s.store, s.bucket, s.req.Files)
}
