package service

import (
	"errors"
	"net/http"
)

// ErrorKind classifies failures of the video endpoints.
type ErrorKind int

const (
	// ValidationError: missing or malformed request fields.
	ValidationError ErrorKind = iota + 1
	// ExtractionError: the engine could not read the video's metadata.
	ExtractionError
	// SelectionError: the requested format is unknown or carries no video.
	SelectionError
	// DownloadError: the engine failed to produce the file.
	DownloadError
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationError:
		return "ValidationError"
	case ExtractionError:
		return "ExtractionError"
	case SelectionError:
		return "SelectionError"
	case DownloadError:
		return "DownloadError"
	}
	return "UnknownError"
}

// StatusCode is the HTTP status the kind is reported with.
func (k ErrorKind) StatusCode() int {
	if k == DownloadError {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// Error is a client-facing failure. Msg is shown to the client as is.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// AsError unwraps err into a *Error if it is one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}
