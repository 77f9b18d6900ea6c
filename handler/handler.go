package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/bignyap/cloud-uploader/dispatch"
	logapi "github.com/bignyap/cloud-uploader/logger/api"
	"github.com/bignyap/cloud-uploader/server"
	"github.com/bignyap/cloud-uploader/storage/api"
	"github.com/bignyap/cloud-uploader/storage/config"
	"github.com/gin-gonic/gin"
)

// endpoints advertised on the root route.
var endpoints = []string{
	"/upload/s3",
	"/upload/gcs",
	"/upload/drive",
	"/upload/all",
	"/list/s3",
	"/list/gcs",
	"/list/drive",
	"/health",
}

// UploadHandler maps the HTTP surface onto the dispatcher. It is stateless:
// every request decodes into an immutable UploadRequest and the response is
// built from dispatcher results.
type UploadHandler struct {
	log        logapi.Logger
	writer     *server.ResponseWriter
	dispatcher *dispatch.Dispatcher
	cfg        *config.Config
}

func NewUploadHandler(log logapi.Logger, dispatcher *dispatch.Dispatcher, cfg *config.Config) *UploadHandler {
	return &UploadHandler{
		log:        log.WithComponent("handler"),
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

func (h *UploadHandler) Setup(s server.Server) error {
	h.Register(s.Router(), s.GetResponseWriter())
	return nil
}

func (h *UploadHandler) Shutdown() error {
	return nil
}

// Register wires the routes onto a router. Split out of Setup so tests can
// register against a bare gin engine.
func (h *UploadHandler) Register(r *gin.Engine, rw *server.ResponseWriter) {
	h.writer = rw
	r.GET("/", h.handleRoot)
	r.POST("/upload/:backend", h.handleUpload)
	r.GET("/list/:backend", h.handleList)
	r.GET("/health", h.handleHealth)
}

func (h *UploadHandler) handleRoot(c *gin.Context) {
	h.writer.Success(c, gin.H{
		"message":   "Cloud File Upload API",
		"endpoints": endpoints,
	})
}

func (h *UploadHandler) handleUpload(c *gin.Context) {
	req, err := decodeUpload(c)
	if err != nil {
		h.writer.BadRequest(c, err.Error())
		return
	}

	target := c.Param("backend")
	if target == "all" {
		agg := h.dispatcher.UploadAll(c.Request.Context(), req)
		h.writer.Success(c, gin.H{"results": agg})
		return
	}

	res, err := h.dispatcher.UploadOne(c.Request.Context(), api.BackendID(target), req)
	if err != nil {
		h.writer.Error(c, err)
		return
	}
	if !res.Success {
		h.writer.Error(c, res.Err)
		return
	}
	h.writer.Success(c, res)
}

func (h *UploadHandler) handleList(c *gin.Context) {
	id := api.BackendID(c.Param("backend"))

	files, err := h.dispatcher.ListOne(c.Request.Context(), id)
	if err != nil {
		h.writer.Error(c, err)
		return
	}
	h.writer.Success(c, gin.H{"files": listPayload(id, files)})
}

// handleHealth reports, per backend, whether configuration is present. It
// says nothing about reachability; no backend is probed.
func (h *UploadHandler) handleHealth(c *gin.Context) {
	h.writer.Success(c, gin.H{
		"status": "healthy",
		"services": gin.H{
			"s3_configured":    h.cfg.S3.Configured(),
			"gcs_configured":   h.cfg.GCS.Configured(),
			"drive_configured": h.cfg.Drive.Configured(),
		},
	})
}

// decodeUpload reads the multipart "file" part into an immutable request.
func decodeUpload(c *gin.Context) (*api.UploadRequest, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("multipart form must contain a 'file' part: %w", err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return &api.UploadRequest{
		Name:        fh.Filename,
		Content:     content,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}

// listPayload reshapes uniform descriptors into the wire shape each
// backend's listing historically used.
func listPayload(id api.BackendID, files []api.FileDescriptor) []gin.H {
	out := make([]gin.H, 0, len(files))
	for _, f := range files {
		switch id {
		case api.BackendS3:
			out = append(out, gin.H{
				"key":           f.Name,
				"size":          f.Size,
				"last_modified": f.LastModified.Format(time.RFC3339),
			})
		case api.BackendGCS:
			entry := gin.H{"name": f.Name, "size": f.Size}
			if f.LastModified.IsZero() {
				entry["updated"] = nil
			} else {
				entry["updated"] = f.LastModified.Format(time.RFC3339)
			}
			out = append(out, entry)
		default:
			out = append(out, gin.H{
				"id":           f.ID,
				"name":         f.Name,
				"mimeType":     f.MimeType,
				"modifiedTime": f.LastModified.Format(time.RFC3339),
				"size":         f.Size,
				"webViewLink":  f.WebViewLink,
			})
		}
	}
	return out
}
