package checks

import (
	"context"
	"fmt"
	"strings"

	"cloud-storage/feature/objects"

	"go.uber.org/zap"
)

// Store is the part of the objects service the checks need.
type Store interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	KeyPathAvailable(ctx context.Context, bucket, prefix string) (bool, error)
	FileObject(ctx context.Context, key, bucket string) (objects.Match, error)
	CreateFolders(ctx context.Context, bucket string, folders ...string) error
}

func requireBucket(ctx context.Context, store Store, bucket string) error {
	exists, err := store.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", bucket)
	}
	return nil
}

// CheckStructure returns the folders with no object under "folder/".
func CheckStructure(ctx context.Context, store Store, bucket string, folders []string) ([]string, error) {
	if err := requireBucket(ctx, store, bucket); err != nil {
		return nil, err
	}

	var missing []string
	for _, folder := range folders {
		folderPath := folder
		if !strings.HasSuffix(folderPath, "/") {
			folderPath += "/"
		}

		found, err := store.KeyPathAvailable(ctx, bucket, folderPath)
		if err != nil {
			return nil, fmt.Errorf("check folder %s: %w", folder, err)
		}
		if !found {
			missing = append(missing, folder)
		}
	}

	return missing, nil
}

// FixStructure creates marker objects for the missing folders.
func FixStructure(ctx context.Context, store Store, bucket string, logger *zap.Logger, missing []string) error {
	if err := store.CreateFolders(ctx, bucket, missing...); err != nil {
		return err
	}
	logger.Info("Created missing folders", zap.Strings("folders", missing))
	return nil
}
