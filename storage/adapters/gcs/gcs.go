package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	gstorage "cloud.google.com/go/storage"
	"github.com/bignyap/cloud-uploader/storage/api"
	"github.com/bignyap/cloud-uploader/storage/config"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Service implements the backend contract for Google Cloud Storage.
//
// The client is created lazily on first use so that a broken credentials
// file surfaces as a server error at call time, not at startup. The backend
// stays "configured" either way.
type Service struct {
	cfg config.GCSConfig

	once    sync.Once
	client  *gstorage.Client
	initErr error
}

var _ api.BackendService = (*Service)(nil)

// New creates the GCS backend adapter.
func New(cfg config.GCSConfig) *Service {
	return &Service{cfg: cfg}
}

func (s *Service) ID() api.BackendID {
	return api.BackendGCS
}

func (s *Service) get(ctx context.Context) (*gstorage.Client, *api.BackendError) {
	s.once.Do(func() {
		var opts []option.ClientOption
		if s.cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(s.cfg.CredentialsFile))
		}
		// The client outlives any single request.
		client, err := gstorage.NewClient(context.Background(), opts...)
		if err != nil {
			s.initErr = fmt.Errorf("failed to initialize GCS client: %w", err)
			return
		}
		s.client = client
	})
	if s.initErr != nil {
		return nil, api.NewBackendError(api.KindConfigMissing, api.BackendGCS, "GCS client unavailable", s.initErr)
	}
	return s.client, nil
}

// Upload writes the file into the configured bucket under its original name.
func (s *Service) Upload(ctx context.Context, req *api.UploadRequest) api.UploadResult {
	if req.Name == "" {
		return api.FailedUpload(api.BackendGCS, api.NewBackendError(
			api.KindVendorPermanent, api.BackendGCS, "upload requires a file name", nil))
	}

	client, berr := s.get(ctx)
	if berr != nil {
		return api.FailedUpload(api.BackendGCS, berr)
	}

	w := client.Bucket(s.cfg.Bucket).Object(req.Name).NewWriter(ctx)
	w.ContentType = req.ContentType
	if _, err := io.Copy(w, req.Reader()); err != nil {
		w.Close()
		return api.FailedUpload(api.BackendGCS, normalize("GCS upload failed", err))
	}
	// The write is committed on Close; most failures surface here.
	if err := w.Close(); err != nil {
		return api.FailedUpload(api.BackendGCS, normalize("GCS upload failed", err))
	}

	return api.UploadResult{
		Backend: api.BackendGCS,
		Success: true,
		Message: fmt.Sprintf("File '%s' uploaded successfully to GCS", req.Name),
		FileURL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.cfg.Bucket, req.Name),
	}
}

// List returns name, size and updated time for every object in the bucket.
func (s *Service) List(ctx context.Context) ([]api.FileDescriptor, error) {
	client, berr := s.get(ctx)
	if berr != nil {
		return nil, berr
	}

	files := []api.FileDescriptor{}
	it := client.Bucket(s.cfg.Bucket).Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, normalize("failed to list GCS files", err)
		}
		files = append(files, api.FileDescriptor{
			Name:         attrs.Name,
			Size:         attrs.Size,
			LastModified: attrs.Updated,
		})
	}
	return files, nil
}

// normalize maps a GCS client failure onto the backend error taxonomy.
func normalize(msg string, err error) *api.BackendError {
	kind := api.KindUnknown
	var gerr *googleapi.Error
	switch {
	case errors.As(err, &gerr):
		kind = api.KindFromHTTPStatus(gerr.Code)
	case errors.Is(err, gstorage.ErrBucketNotExist):
		kind = api.KindVendorPermanent
	}
	return api.NewBackendError(kind, api.BackendGCS, msg, err)
}
