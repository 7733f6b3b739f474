// Package storage selects the configured blob store.
package storage

import (
	"context"
	"fmt"

	"docworker/internal/config"
	"docworker/internal/port"
	"docworker/internal/storage/gcs"
	"docworker/internal/storage/s3"
)

// New returns the ObjectStorage named by cfg.Provider.
func New(ctx context.Context, cfg *config.StorageConfig) (port.ObjectStorage, error) {
	switch cfg.Provider {
	case "s3":
		return s3.NewS3Client(ctx, &cfg.S3, cfg.Bucket)
	case "gcs":
		return gcs.NewGCSClient(ctx, &cfg.GCS, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}
