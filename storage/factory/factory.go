package factory

import (
	"fmt"

	"github.com/bignyap/cloud-uploader/dispatch"
	logapi "github.com/bignyap/cloud-uploader/logger/api"
	driveadapter "github.com/bignyap/cloud-uploader/storage/adapters/drive"
	gcsadapter "github.com/bignyap/cloud-uploader/storage/adapters/gcs"
	minioadapter "github.com/bignyap/cloud-uploader/storage/adapters/minio"
	s3adapter "github.com/bignyap/cloud-uploader/storage/adapters/s3"
	"github.com/bignyap/cloud-uploader/storage/api"
	"github.com/bignyap/cloud-uploader/storage/config"
)

// NewDispatcher builds an adapter for every configured backend and
// registers them in canonical order (s3, gcs, drive). Backends without
// configuration get no adapter and can never appear in a fan-out result.
func NewDispatcher(cfg *config.Config, log logapi.Logger) (*dispatch.Dispatcher, error) {
	d := dispatch.New(
		dispatch.WithTimeout(cfg.UploadTimeout),
		dispatch.WithLogger(log),
	)

	if cfg.S3.Configured() {
		svc, err := newObjectStore(cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 backend: %w", err)
		}
		d.Register(svc)
	}
	if cfg.GCS.Configured() {
		d.Register(gcsadapter.New(cfg.GCS))
	}
	if cfg.Drive.Configured() {
		d.Register(driveadapter.New(cfg.Drive))
	}

	return d, nil
}

// newObjectStore picks the client for the s3 slot: the AWS SDK by default,
// the MinIO client when S3_PROVIDER=minio.
func newObjectStore(cfg config.S3Config) (api.BackendService, error) {
	switch cfg.ObjectStoreProvider() {
	case config.ProviderMinio:
		return minioadapter.New(cfg)
	case config.ProviderS3, "":
		return s3adapter.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported object store provider: %s (supported: s3, minio)", cfg.Provider)
	}
}
