package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bignyap/cloud-uploader/dispatch"
	"github.com/bignyap/cloud-uploader/handler"
	"github.com/bignyap/cloud-uploader/logger/adapters/mock"
	"github.com/bignyap/cloud-uploader/server"
	"github.com/bignyap/cloud-uploader/storage/api"
	"github.com/bignyap/cloud-uploader/storage/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	id       api.BackendID
	failWith api.ErrorKind
	files    []api.FileDescriptor

	gotNames []string
	gotBody  [][]byte
}

func (f *fakeBackend) ID() api.BackendID { return f.id }

func (f *fakeBackend) Upload(ctx context.Context, req *api.UploadRequest) api.UploadResult {
	body, _ := io.ReadAll(req.Reader())
	f.gotNames = append(f.gotNames, req.Name)
	f.gotBody = append(f.gotBody, body)

	if f.failWith != "" {
		return api.FailedUpload(f.id, api.NewBackendError(f.failWith, f.id, "vendor rejected upload", nil))
	}
	return api.UploadResult{
		Backend: f.id,
		Success: true,
		Message: "stored " + req.Name,
		FileURL: "https://files.example.com/" + req.Name,
		FileID:  "id-" + req.Name,
	}
}

func (f *fakeBackend) List(ctx context.Context) ([]api.FileDescriptor, error) {
	if f.failWith != "" {
		return nil, api.NewBackendError(f.failWith, f.id, "vendor rejected listing", nil)
	}
	return f.files, nil
}

func newRouter(t *testing.T, cfg *config.Config, backends ...*fakeBackend) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d := dispatch.New()
	for _, b := range backends {
		d.Register(b)
	}

	r := gin.New()
	h := handler.NewUploadHandler(mock.NewMockLogger(), d, cfg)
	h.Register(r, server.NewResponseWriter(mock.NewMockLogger()))
	return r
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRoot(t *testing.T) {
	r := newRouter(t, &config.Config{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cloud File Upload API")
	assert.Contains(t, w.Body.String(), "/upload/s3")
	assert.Contains(t, w.Body.String(), "/upload/all")
}

func TestUpload_Success(t *testing.T) {
	s3 := &fakeBackend{id: api.BackendS3}
	r := newRouter(t, &config.Config{}, s3)

	body, contentType := multipartBody(t, "a.txt", []byte("hello"))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload/s3", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		FileURL string `json:"file_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "https://files.example.com/a.txt", res.FileURL)

	// The submitted bytes reached the adapter untouched.
	require.Len(t, s3.gotBody, 1)
	assert.Equal(t, []byte("hello"), s3.gotBody[0])
	assert.Equal(t, "a.txt", s3.gotNames[0])
}

func TestUpload_BackendNotConfigured(t *testing.T) {
	r := newRouter(t, &config.Config{})

	body, contentType := multipartBody(t, "a.txt", []byte("hello"))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload/gcs", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")
}

func TestUpload_AuthRequiredMapsTo401(t *testing.T) {
	drv := &fakeBackend{id: api.BackendDrive, failWith: api.KindAuthRequired}
	r := newRouter(t, &config.Config{}, drv)

	body, contentType := multipartBody(t, "a.txt", []byte("hello"))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload/drive", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "vendor rejected upload")
}

func TestUpload_VendorFailureMapsTo500(t *testing.T) {
	s3 := &fakeBackend{id: api.BackendS3, failWith: api.KindVendorTransient}
	r := newRouter(t, &config.Config{}, s3)

	body, contentType := multipartBody(t, "a.txt", []byte("hello"))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload/s3", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "vendor rejected upload")
}

func TestUpload_MissingFilePart(t *testing.T) {
	s3 := &fakeBackend{id: api.BackendS3}
	r := newRouter(t, &config.Config{}, s3)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload/s3", bytes.NewBufferString("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s3.gotNames)
}

func TestUploadAll_PartialFailure(t *testing.T) {
	s3 := &fakeBackend{id: api.BackendS3}
	gcs := &fakeBackend{id: api.BackendGCS, failWith: api.KindVendorTransient}
	r := newRouter(t, &config.Config{}, s3, gcs)

	body, contentType := multipartBody(t, "a.txt", []byte("hello"))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload/all", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	// Fan-out always answers 200; failures are data.
	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Results map[string]struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Results, 2)
	assert.True(t, res.Results["s3"].Success)
	assert.False(t, res.Results["gcs"].Success)
	_, hasDrive := res.Results["drive"]
	assert.False(t, hasDrive)
}

func TestListS3_WireShape(t *testing.T) {
	mod := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	s3 := &fakeBackend{id: api.BackendS3, files: []api.FileDescriptor{
		{Name: "a.txt", Size: 5, LastModified: mod},
	}}
	r := newRouter(t, &config.Config{}, s3)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/list/s3", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Files []map[string]interface{} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Files, 1)
	assert.Equal(t, "a.txt", res.Files[0]["key"])
	assert.Equal(t, float64(5), res.Files[0]["size"])
	assert.Equal(t, "2026-03-14T09:26:53Z", res.Files[0]["last_modified"])
}

func TestListGCS_WireShape(t *testing.T) {
	gcs := &fakeBackend{id: api.BackendGCS, files: []api.FileDescriptor{
		{Name: "b.txt", Size: 9},
	}}
	r := newRouter(t, &config.Config{}, gcs)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/list/gcs", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Files []map[string]interface{} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Files, 1)
	assert.Equal(t, "b.txt", res.Files[0]["name"])
	// A backend that reported no update time serializes it as null.
	assert.Nil(t, res.Files[0]["updated"])
}

func TestListDrive_WireShape(t *testing.T) {
	mod := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	drv := &fakeBackend{id: api.BackendDrive, files: []api.FileDescriptor{
		{ID: "f123", Name: "c.pdf", Size: 42, LastModified: mod, MimeType: "application/pdf", WebViewLink: "https://drive.example.com/f123"},
	}}
	r := newRouter(t, &config.Config{}, drv)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/list/drive", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Files []map[string]interface{} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Files, 1)
	assert.Equal(t, "f123", res.Files[0]["id"])
	assert.Equal(t, "application/pdf", res.Files[0]["mimeType"])
	assert.Equal(t, "https://drive.example.com/f123", res.Files[0]["webViewLink"])
	assert.Equal(t, "2026-01-02T03:04:05Z", res.Files[0]["modifiedTime"])
}

func TestList_EmptyBackend(t *testing.T) {
	s3 := &fakeBackend{id: api.BackendS3, files: []api.FileDescriptor{}}
	r := newRouter(t, &config.Config{}, s3)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/list/s3", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"files":[]}`, w.Body.String())
}

func TestList_NotConfigured(t *testing.T) {
	r := newRouter(t, &config.Config{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/list/drive", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth_NothingConfigured(t *testing.T) {
	r := newRouter(t, &config.Config{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"status": "healthy",
		"services": {
			"s3_configured": false,
			"gcs_configured": false,
			"drive_configured": false
		}
	}`, w.Body.String())
}

func TestHealth_ReportsConfigPresenceOnly(t *testing.T) {
	cfg := &config.Config{}
	cfg.S3.Bucket = "uploads"
	cfg.S3.AccessKeyID = "AKIA123"
	cfg.Drive.CredentialsFile = "cred/drive/credentials.json"

	// No adapters registered at all: health reflects configuration
	// presence, never reachability.
	r := newRouter(t, cfg)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Services map[string]bool `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Services["s3_configured"])
	assert.False(t, res.Services["gcs_configured"])
	assert.True(t, res.Services["drive_configured"])
}
