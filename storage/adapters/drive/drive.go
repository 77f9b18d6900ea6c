package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/bignyap/cloud-uploader/storage/api"
	"github.com/bignyap/cloud-uploader/storage/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// listPageSize bounds drive listings to one page of results.
const listPageSize = 20

// Service implements the backend contract for Google Drive.
//
// The Drive client is rebuilt per call from the persisted OAuth token, so a
// token written or refreshed by the external auth flow is picked up without
// a restart. An absent or unrefreshable token fails closed with an
// auth-required error; obtaining a token is not this service's job.
type Service struct {
	cfg config.DriveConfig
}

var _ api.BackendService = (*Service)(nil)

// New creates the Drive backend adapter.
func New(cfg config.DriveConfig) *Service {
	return &Service{cfg: cfg}
}

func (s *Service) ID() api.BackendID {
	return api.BackendDrive
}

// Upload creates the file in Drive, inside the configured folder when one
// is set.
func (s *Service) Upload(ctx context.Context, req *api.UploadRequest) api.UploadResult {
	if req.Name == "" {
		return api.FailedUpload(api.BackendDrive, api.NewBackendError(
			api.KindVendorPermanent, api.BackendDrive, "upload requires a file name", nil))
	}

	svc, berr := s.service(ctx)
	if berr != nil {
		return api.FailedUpload(api.BackendDrive, berr)
	}

	meta := &gdrive.File{Name: req.Name}
	if s.cfg.FolderID != "" {
		meta.Parents = []string{s.cfg.FolderID}
	}

	var mediaOpts []googleapi.MediaOption
	if req.ContentType != "" {
		mediaOpts = append(mediaOpts, googleapi.ContentType(req.ContentType))
	}

	created, err := svc.Files.Create(meta).
		Media(req.Reader(), mediaOpts...).
		Fields("id, webViewLink, webContentLink").
		Context(ctx).
		Do()
	if err != nil {
		return api.FailedUpload(api.BackendDrive, normalize("Google Drive upload failed", err))
	}

	return api.UploadResult{
		Backend: api.BackendDrive,
		Success: true,
		Message: fmt.Sprintf("File '%s' uploaded successfully to Google Drive", req.Name),
		FileURL: created.WebViewLink,
		FileID:  created.Id,
	}
}

// List returns one page of files, scoped to the configured folder when one
// is set.
func (s *Service) List(ctx context.Context) ([]api.FileDescriptor, error) {
	svc, berr := s.service(ctx)
	if berr != nil {
		return nil, berr
	}

	call := svc.Files.List().
		PageSize(listPageSize).
		Fields("files(id, name, mimeType, modifiedTime, size, webViewLink)").
		Context(ctx)
	if s.cfg.FolderID != "" {
		call = call.Q(fmt.Sprintf("'%s' in parents", s.cfg.FolderID))
	}

	out, err := call.Do()
	if err != nil {
		return nil, normalize("failed to list Drive files", err)
	}

	files := make([]api.FileDescriptor, 0, len(out.Files))
	for _, f := range out.Files {
		fd := api.FileDescriptor{
			ID:          f.Id,
			Name:        f.Name,
			Size:        f.Size,
			MimeType:    f.MimeType,
			WebViewLink: f.WebViewLink,
		}
		if f.ModifiedTime != "" {
			if t, perr := time.Parse(time.RFC3339, f.ModifiedTime); perr == nil {
				fd.LastModified = t
			}
		}
		files = append(files, fd)
	}
	return files, nil
}

func (s *Service) service(ctx context.Context) (*gdrive.Service, *api.BackendError) {
	client, berr := s.oauthClient(ctx)
	if berr != nil {
		return nil, berr
	}
	svc, err := gdrive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, api.NewBackendError(api.KindUnknown, api.BackendDrive,
			"failed to initialize Drive service", err)
	}
	return svc, nil
}

// oauthClient builds an HTTP client from the persisted token. The oauth2
// transport refreshes the access token transparently when a refresh token
// is present.
func (s *Service) oauthClient(ctx context.Context) (*http.Client, *api.BackendError) {
	oc, berr := loadOAuthConfig(s.cfg.CredentialsFile)
	if berr != nil {
		return nil, berr
	}
	tok, berr := loadToken(s.cfg.TokenFile)
	if berr != nil {
		return nil, berr
	}
	return oc.Client(ctx, tok), nil
}

func loadOAuthConfig(path string) (*oauth2.Config, *api.BackendError) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, api.NewBackendError(api.KindConfigMissing, api.BackendDrive,
			"failed to read Drive credentials file", err)
	}
	oc, err := google.ConfigFromJSON(b, gdrive.DriveFileScope)
	if err != nil {
		return nil, api.NewBackendError(api.KindConfigMissing, api.BackendDrive,
			"invalid Drive credentials file", err)
	}
	return oc, nil
}

func loadToken(path string) (*oauth2.Token, *api.BackendError) {
	f, err := os.Open(path)
	if err != nil {
		return nil, api.NewBackendError(api.KindAuthRequired, api.BackendDrive,
			"Google Drive authentication required: no persisted token", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, api.NewBackendError(api.KindAuthRequired, api.BackendDrive,
			"Google Drive authentication required: unreadable token", err)
	}
	if !tok.Valid() && tok.RefreshToken == "" {
		return nil, api.NewBackendError(api.KindAuthRequired, api.BackendDrive,
			"Google Drive authentication required: token expired and not refreshable", nil)
	}
	return tok, nil
}

// normalize maps a Drive client failure onto the backend error taxonomy.
func normalize(msg string, err error) *api.BackendError {
	kind := api.KindUnknown
	var gerr *googleapi.Error
	var rerr *oauth2.RetrieveError
	switch {
	case errors.As(err, &rerr):
		// Token refresh was rejected by the auth server.
		kind = api.KindAuthRequired
	case errors.As(err, &gerr):
		kind = api.KindFromHTTPStatus(gerr.Code)
	}
	return api.NewBackendError(kind, api.BackendDrive, msg, err)
}
