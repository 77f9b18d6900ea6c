package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind categorizes backend failures. Adapters map vendor error types
// onto these kinds; KindUnknown is the catch-all for anything unmapped.
type ErrorKind string

const (
	KindConfigMissing        ErrorKind = "config_missing"
	KindAuthRequired         ErrorKind = "auth_required"
	KindVendorTransient      ErrorKind = "vendor_transient"
	KindVendorPermanent      ErrorKind = "vendor_permanent"
	KindBackendNotConfigured ErrorKind = "backend_not_configured"
	KindUnknown              ErrorKind = "unknown"
)

// BackendError is the normalized form of any backend-side failure. Raw
// vendor errors stay wrapped in Err and never cross the HTTP boundary.
type BackendError struct {
	Kind    ErrorKind
	Backend BackendID
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError builds a normalized backend error.
func NewBackendError(kind ErrorKind, backend BackendID, message string, err error) *BackendError {
	return &BackendError{Kind: kind, Backend: backend, Message: message, Err: err}
}

// NotConfigured is the error for a request naming a backend with no
// configuration entry.
func NotConfigured(backend BackendID) *BackendError {
	return &BackendError{
		Kind:    KindBackendNotConfigured,
		Backend: backend,
		Message: fmt.Sprintf("backend %q is not configured", backend),
	}
}

// KindOf returns the taxonomy kind of err, KindUnknown for anything that is
// not a normalized backend error.
func KindOf(err error) ErrorKind {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// KindFromHTTPStatus maps a vendor HTTP status onto a taxonomy kind. Shared
// by adapters whose vendor errors carry a status code.
func KindFromHTTPStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuthRequired
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return KindVendorTransient
	case code >= http.StatusBadRequest:
		return KindVendorPermanent
	default:
		return KindUnknown
	}
}

// FailedUpload builds the uniform failure result from a normalized error.
func FailedUpload(backend BackendID, err *BackendError) UploadResult {
	return UploadResult{
		Backend: backend,
		Success: false,
		Message: err.Error(),
		Err:     err,
	}
}
