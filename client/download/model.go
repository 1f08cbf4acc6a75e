package download

import (
	"errors"
	"fmt"
)

// Sentinel errors reported through [Error]. Match them with errors.Is.
var (
	// ErrContentLengthMismatch means fewer or more bytes arrived than the
	// response Content-Length announced.
	ErrContentLengthMismatch = errors.New("content length mismatch")
	// ErrChecksumMismatch means the digest of the stored file differs from
	// the one passed to WithChecksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrDownloadCancelled means the context or the request's cancel token
	// ended the copy before the body was fully written.
	ErrDownloadCancelled = errors.New("download cancelled")
	// ErrNotStream means the response was not requested with the stream
	// response type, so there is no body left to copy.
	ErrNotStream = errors.New("response data is not a stream")
)

// Error describes a download that reached the server but could not be
// stored at Path. URL is the address the body came from, when known.
type Error struct {
	URL    string
	Path   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	if e.URL == "" {
		return fmt.Sprintf("download to %s: %s", e.Path, msg)
	}

	return fmt.Sprintf("download %s to %s: %s", e.URL, e.Path, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}
