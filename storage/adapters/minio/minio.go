package minio

import (
	"context"
	"fmt"
	"strings"

	"github.com/bignyap/cloud-uploader/storage/api"
	"github.com/bignyap/cloud-uploader/storage/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Service implements the backend contract for any S3-compatible object
// store through the MinIO client. It fills the same s3 backend slot as the
// AWS adapter; the factory picks one per the configured provider.
type Service struct {
	client *minio.Client
	cfg    config.S3Config
}

var _ api.BackendService = (*Service)(nil)

// New creates the MinIO-backed adapter. The endpoint comes from S3_ENDPOINT
// with any scheme prefix stripped, since the client takes host:port.
func New(cfg config.S3Config) (*Service, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	if endpoint == "" {
		return nil, fmt.Errorf("minio provider requires S3_ENDPOINT")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Service{client: client, cfg: cfg}, nil
}

func (s *Service) ID() api.BackendID {
	return api.BackendS3
}

// Upload puts the file into the configured bucket under its original name.
func (s *Service) Upload(ctx context.Context, req *api.UploadRequest) api.UploadResult {
	if req.Name == "" {
		return api.FailedUpload(api.BackendS3, api.NewBackendError(
			api.KindVendorPermanent, api.BackendS3, "upload requires a file name", nil))
	}

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, req.Name, req.Reader(), req.Size(),
		minio.PutObjectOptions{ContentType: req.ContentType})
	if err != nil {
		return api.FailedUpload(api.BackendS3, normalize("S3 upload failed", err))
	}

	return api.UploadResult{
		Backend: api.BackendS3,
		Success: true,
		Message: fmt.Sprintf("File '%s' uploaded successfully to S3", req.Name),
		FileURL: s.objectURL(req.Name),
	}
}

// List returns key, size and last-modified for every object in the bucket.
func (s *Service) List(ctx context.Context) ([]api.FileDescriptor, error) {
	var files []api.FileDescriptor
	for obj := range s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, normalize("failed to list S3 files", obj.Err)
		}
		files = append(files, api.FileDescriptor{
			Name:         obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	if files == nil {
		files = []api.FileDescriptor{}
	}
	return files, nil
}

func (s *Service) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.client.EndpointURL().String(), "/"), s.cfg.Bucket, key)
}

// normalize maps a MinIO client failure onto the backend error taxonomy.
func normalize(msg string, err error) *api.BackendError {
	kind := api.KindUnknown
	if resp := minio.ToErrorResponse(err); resp.StatusCode != 0 {
		kind = api.KindFromHTTPStatus(resp.StatusCode)
	}
	return api.NewBackendError(kind, api.BackendS3, msg, err)
}
