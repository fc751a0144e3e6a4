package models

import (
	"errors"
	"fmt"
)

// Failure taxonomy for one processing request. All failures are local to the
// request: no partial envelope is ever returned as if complete.
var (
	// ErrInvalidCredential marks an unknown or malformed API credential.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrQuotaExceeded marks a credential whose usage has reached its plan limit.
	ErrQuotaExceeded = errors.New("usage limit exceeded")
	// ErrUnsupportedFileType marks an extension outside the supported set.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrPartitionFailure marks extraction failure after the fallback path
	// was also exhausted.
	ErrPartitionFailure = errors.New("document partitioning failed")
	// ErrConfiguration marks ProcessingOptions that violate the ordering
	// invariants for chunking.
	ErrConfiguration = errors.New("invalid processing options")
)

// StageError wraps an unexpected failure inside a pipeline stage with the
// stage name attached for diagnosability. Not retried by the service; callers
// may retry the whole request.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with its originating stage name.
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
