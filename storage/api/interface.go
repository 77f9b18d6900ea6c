package api

import (
	"bytes"
	"context"
	"time"
)

// BackendID identifies one of the supported storage backends.
type BackendID string

const (
	BackendS3    BackendID = "s3"
	BackendGCS   BackendID = "gcs"
	BackendDrive BackendID = "drive"
)

// AllBackends is the canonical backend order. Fan-out invocation and
// aggregate serialization both follow it.
var AllBackends = []BackendID{BackendS3, BackendGCS, BackendDrive}

// UploadRequest carries one file to be stored. It is immutable once
// constructed; adapters read it, they never write to it.
type UploadRequest struct {
	Name        string
	Content     []byte
	ContentType string
}

// Reader returns an independent read view over the content. Every adapter
// invocation gets its own reader so concurrent fan-out never shares a cursor.
func (r *UploadRequest) Reader() *bytes.Reader {
	return bytes.NewReader(r.Content)
}

func (r *UploadRequest) Size() int64 {
	return int64(len(r.Content))
}

// UploadResult is the uniform outcome of one adapter invocation. On failure
// Err holds the normalized *BackendError and Message its human-readable form.
type UploadResult struct {
	Backend BackendID `json:"-"`
	Success bool      `json:"success"`
	Message string    `json:"message"`
	FileURL string    `json:"file_url,omitempty"`
	FileID  string    `json:"file_id,omitempty"`
	Err     error     `json:"-"`
}

// FileDescriptor is the superset of the metadata the backends report for a
// stored file. Adapters leave fields their vendor does not report at the
// zero value.
type FileDescriptor struct {
	ID           string
	Name         string
	Size         int64
	LastModified time.Time
	MimeType     string
	WebViewLink  string
}

// BackendService is the uniform contract every backend adapter implements.
//
// Upload never returns a Go error: the adapter is the single place where
// vendor-specific failures are translated into the error taxonomy, and it
// reports them inside the result so a fan-out can carry per-backend
// failures without aborting.
type BackendService interface {
	ID() BackendID
	Upload(ctx context.Context, req *UploadRequest) UploadResult
	List(ctx context.Context) ([]FileDescriptor, error)
}
