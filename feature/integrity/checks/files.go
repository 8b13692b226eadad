package checks

import (
	"context"
	"fmt"
)

// CheckFiles returns the keys that do not exist as an exact object key.
// A key that only matches as a prefix of other objects counts as missing.
func CheckFiles(ctx context.Context, store Store, bucket string, files []string) ([]string, error) {
	if err := requireBucket(ctx, store, bucket); err != nil {
		return nil, err
	}

	var missing []string
	for _, key := range files {
		match, err := store.FileObject(ctx, key, bucket)
		if err != nil {
			return nil, fmt.Errorf("check file %s: %w", key, err)
		}

		found := false
		for _, obj := range match.All() {
			if obj.Key == key {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, key)
		}
	}

	return missing, nil
}
