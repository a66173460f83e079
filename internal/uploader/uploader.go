// Package uploader ships run artifacts to cloud object storage.
package uploader

import (
	"context"

	cfg "wasmbench/internal/config"
)

// Uploader copies a run directory to remote storage.
type Uploader interface {
	Enabled() bool
	UploadDir(ctx context.Context, dir string) (string, error)
}

// NoopUploader is the disabled backend.
type NoopUploader struct{}

func (n NoopUploader) Enabled() bool {
	return false
}

func (n NoopUploader) UploadDir(ctx context.Context, dir string) (string, error) {
	return "", nil
}

// ForStorage selects an uploader for the configured backend.
// GCS wins when both backends are enabled.
func ForStorage(storage cfg.StorageConfig) (Uploader, error) {
	if storage.GCS.Enabled {
		return NewGCS(storage.GCS)
	}
	if storage.S3.Enabled {
		return NewS3(storage.S3)
	}
	return NoopUploader{}, nil
}
