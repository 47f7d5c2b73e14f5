package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrorKind is the normalized transport failure taxonomy.
type ErrorKind string

const (
	// KindTimeout means the request or the response read ran out of time.
	KindTimeout ErrorKind = "timeout"
	// KindUnreachable means no connection could be made.
	KindUnreachable ErrorKind = "unreachable"
	// KindCancelled means the caller gave up.
	KindCancelled ErrorKind = "cancelled"
	// KindServer means the backend answered with a non-2xx status.
	KindServer ErrorKind = "server"
	// KindDecode means the response body could not be read.
	KindDecode ErrorKind = "decode"
)

// ErrResponseTooLarge is the underlying error of a body over the size limit.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// TransportError wraps backend failures with a normalized kind.
type TransportError struct {
	Kind       ErrorKind
	Path       string
	StatusCode int
	Underlying error
}

func (e *TransportError) Error() string {
	switch {
	case e.Kind == KindServer:
		return fmt.Sprintf("backend %s [%s]: status %d", e.Path, e.Kind, e.StatusCode)
	case e.Underlying != nil:
		return fmt.Sprintf("backend %s [%s]: %v", e.Path, e.Kind, e.Underlying)
	default:
		return fmt.Sprintf("backend %s [%s]", e.Path, e.Kind)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Underlying
}

// IsRetryable reports whether trying again later could succeed.
func IsRetryable(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	switch te.Kind {
	case KindTimeout, KindUnreachable:
		return true
	case KindServer:
		return te.StatusCode >= 500 || te.StatusCode == 429
	default:
		return false
	}
}

// KindOf extracts the kind, or "" for errors that did not come from the transport.
func KindOf(err error) ErrorKind {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// classify maps an error from Doer.Do onto a kind. Caller cancellation is
// checked first so that a cancelled dial is not reported as unreachable.
func classify(ctx context.Context, path string, err error) *TransportError {
	te := &TransportError{Path: path, Underlying: err}
	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		te.Kind = KindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		te.Kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		te.Kind = KindTimeout
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		te.Kind = KindUnreachable
	default:
		te.Kind = KindUnreachable
	}
	return te
}
