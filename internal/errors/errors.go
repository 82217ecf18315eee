package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitual/internal/logger"
)

var (
	// ErrNotAuthenticated means there is no signed-in identity. Fetches treat it
	// as a quiet state change; direct user actions return it.
	ErrNotAuthenticated = stderrors.New("not signed in")
	// ErrMissingIdentifier is returned when a habit that was never persisted is
	// updated, deleted, or has its progress logged.
	ErrMissingIdentifier = stderrors.New("habit has no identifier; it has not been saved yet")
	// ErrNotFound is returned when a document or cached habit does not exist.
	ErrNotFound = stderrors.New("not found")
)

// RemoteError wraps a failed document store round trip.
type RemoteError struct {
	Op   string
	Path string
	Err  error
}

func (e *RemoteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote wraps err as a RemoteError. A nil err stays nil.
func Remote(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Path: path, Err: err}
}

// DecodeError describes a malformed stored document.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Path, e.Reason)
}

// Decodef builds a DecodeError.
func Decodef(path, format string, args ...interface{}) error {
	return &DecodeError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// IsRemote reports whether err came from a document store round trip.
func IsRemote(err error) bool {
	var re *RemoteError
	return stderrors.As(err, &re)
}

// IsDecode reports whether err is a DecodeError.
func IsDecode(err error) bool {
	var de *DecodeError
	return stderrors.As(err, &de)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
