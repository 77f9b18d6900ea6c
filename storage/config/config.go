package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/bignyap/cloud-uploader/storage/api"
	"github.com/caarlos0/env"
)

// ObjectStoreProvider selects the client used for the s3 backend slot.
type ObjectStoreProvider string

const (
	ProviderS3    ObjectStoreProvider = "s3"
	ProviderMinio ObjectStoreProvider = "minio"
)

// S3Config holds settings for the s3 backend. Endpoint and Provider allow
// pointing the slot at an S3-compatible service such as MinIO.
type S3Config struct {
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Bucket          string `env:"S3_BUCKET_NAME"`
	Endpoint        string `env:"S3_ENDPOINT"`
	Provider        string `env:"S3_PROVIDER" envDefault:"s3"`
	UseSSL          bool   `env:"S3_USE_SSL" envDefault:"true"`
}

// GCSConfig holds settings for the gcs backend.
type GCSConfig struct {
	Bucket          string `env:"GCS_BUCKET_NAME"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

// DriveConfig holds settings for the drive backend. The token file is
// written by an external OAuth flow; the service only reads it.
type DriveConfig struct {
	CredentialsFile string `env:"GOOGLE_DRIVE_CREDENTIALS_FILE"`
	TokenFile       string `env:"GOOGLE_DRIVE_TOKEN_FILE" envDefault:"token.json"`
	FolderID        string `env:"GOOGLE_DRIVE_FOLDER_ID"`
}

// Config is the full backend configuration. Loaded once at startup,
// read-only afterwards; no call site reads the environment directly.
type Config struct {
	S3            S3Config
	GCS           GCSConfig
	Drive         DriveConfig
	UploadTimeout time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"60s"`
}

// Load reads the backend configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(&cfg.S3); err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}
	if err := env.Parse(&cfg.GCS); err != nil {
		return nil, fmt.Errorf("failed to load GCS config: %w", err)
	}
	if err := env.Parse(&cfg.Drive); err != nil {
		return nil, fmt.Errorf("failed to load Drive config: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	return cfg, nil
}

// Configured reports whether the s3 backend has usable settings. Presence
// of settings, not reachability: the service never probes a backend.
func (c S3Config) Configured() bool {
	return c.Bucket != "" && c.AccessKeyID != ""
}

// ObjectStoreProvider returns the normalized provider selector.
func (c S3Config) ObjectStoreProvider() ObjectStoreProvider {
	return ObjectStoreProvider(strings.ToLower(c.Provider))
}

// Configured reports whether the gcs backend has usable settings.
func (c GCSConfig) Configured() bool {
	return c.Bucket != ""
}

// Configured reports whether the drive backend has usable settings. A
// missing or expired token still counts as configured; it surfaces as an
// auth error at call time.
func (c DriveConfig) Configured() bool {
	return c.CredentialsFile != ""
}

// ConfiguredBackends returns the backends with usable settings in canonical
// order. A backend absent here never appears in a fan-out aggregate.
func (c *Config) ConfiguredBackends() []api.BackendID {
	var ids []api.BackendID
	if c.S3.Configured() {
		ids = append(ids, api.BackendS3)
	}
	if c.GCS.Configured() {
		ids = append(ids, api.BackendGCS)
	}
	if c.Drive.Configured() {
		ids = append(ids, api.BackendDrive)
	}
	return ids
}
