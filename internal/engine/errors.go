package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrAlgorithm is returned for a hash algorithm outside the supported set.
	ErrAlgorithm = errors.New("unsupported hash algorithm")
	// ErrNotSized is returned when hashing a file whose metadata was never read.
	ErrNotSized = errors.New("file size unknown")
)

// FatalScanError means the scan root is unusable. Nothing was created.
type FatalScanError struct {
	Path string
	Err  error
}

func (e *FatalScanError) Error() string {
	return fmt.Sprintf("cannot scan %s: %v", e.Path, e.Err)
}

func (e *FatalScanError) Unwrap() error { return e.Err }

// EntrySkipError is an entry the walk left out.
type EntrySkipError struct {
	Path   string
	Reason string
	Err    error
}

func (e *EntrySkipError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: skipped (%s)", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: skipped (%s): %v", e.Path, e.Reason, e.Err)
}

func (e *EntrySkipError) Unwrap() error { return e.Err }

// MetadataError is a stat failure for one file. The file stays unsized.
type MetadataError struct {
	FileID int64
	Path   string
	Err    error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("%s: read metadata: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// HashError is a read failure while hashing one file. No digest is stored.
type HashError struct {
	FileID int64
	Path   string
	Err    error
}

func (e *HashError) Error() string {
	return fmt.Sprintf("%s: hash: %v", e.Path, e.Err)
}

func (e *HashError) Unwrap() error { return e.Err }

// perEntry reports whether err concerns a single file and must not stop a
// batch.
func perEntry(err error) bool {
	var (
		metaErr *MetadataError
		hashErr *HashError
	)
	return errors.As(err, &metaErr) || errors.As(err, &hashErr)
}
