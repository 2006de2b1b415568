package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the pipeline can decide whether to abort,
// skip a file, or carry on without the cache.
type ErrorKind string

const (
	// KindConfig covers missing credentials and invalid settings. Fatal.
	KindConfig ErrorKind = "config"
	// KindRemote covers network, quota, auth and malformed-response failures.
	KindRemote ErrorKind = "remote"
	// KindCache covers cache store failures. Never fatal.
	KindCache ErrorKind = "cache"
	// KindIO covers unreadable input and unwritable output.
	KindIO ErrorKind = "io"
)

// Common sentinel errors.
var (
	ErrMissingCredential = errors.New("missing API credential")
	ErrQuotaExceeded     = errors.New("api quota exceeded")
	ErrAuthFailed        = errors.New("api authentication failed")
	ErrMalformedResponse = errors.New("malformed api response")
	ErrEmptyDocument     = errors.New("document contains no extractable text")
)

// Error is the tagged error used across layers.
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + " error"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a tagged error.
func NewError(kind ErrorKind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// ConfigError wraps err as a configuration failure.
func ConfigError(op string, err error) error {
	return NewError(KindConfig, op, "", err)
}

// RemoteError wraps err as an API failure for path.
func RemoteError(op, path string, err error) error {
	return NewError(KindRemote, op, path, err)
}

// CacheError wraps err as a cache failure.
func CacheError(op string, err error) error {
	return NewError(KindCache, op, "", err)
}

// IOError wraps err as a filesystem failure for path.
func IOError(op, path string, err error) error {
	return NewError(KindIO, op, path, err)
}

// Errorf builds a tagged error with a formatted cause.
func Errorf(kind ErrorKind, op, path, format string, args ...any) error {
	return NewError(kind, op, path, fmt.Errorf(format, args...))
}

// KindOf returns the kind of the first tagged error in err's chain, or "" when
// err is untagged.
func KindOf(err error) ErrorKind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
