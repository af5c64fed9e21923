package pipeline

import (
	"errors"
	"fmt"
)

// ErrProcessingFailed is matched by every error the pipeline returns.
var ErrProcessingFailed = errors.New("image processing failed")

// Kind classifies the stage at which processing failed.
type Kind string

const (
	// KindDecode means the input bytes could not be interpreted as an image.
	KindDecode Kind = "decode"
	// KindIO means a file could not be read or the mask could not be written.
	KindIO Kind = "io"
	// KindProcessing covers everything else, including recovered panics.
	KindProcessing Kind = "processing"
)

// ProcessingError is the single failure type surfaced by the pipeline.
type ProcessingError struct {
	Kind Kind   `json:"kind"`
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// Error implements the error interface
func (e *ProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", ErrProcessingFailed, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s)", ErrProcessingFailed, e.Kind)
}

// Unwrap returns the underlying error
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrProcessingFailed.
func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessingFailed
}

func newError(kind Kind, path string, err error) *ProcessingError {
	return &ProcessingError{Kind: kind, Path: path, Err: err}
}

// KindOf returns the Kind of a pipeline error, or "" if err did not come
// from the pipeline.
func KindOf(err error) Kind {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
