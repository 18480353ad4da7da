package ocrtool

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input bitmap")
	ErrInvalidCrop         = errors.New("invalid crop region")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrExternalEngine      = errors.New("external engine failure")
	// ErrSessionBusy is returned when an OCR call is already running on the session
	ErrSessionBusy = errors.New("ocr already running for this document")
)

// InvalidInputError reports a nil or empty bitmap handed to the pipeline
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidInput, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InvalidCropError reports crop fractions that are out of range (Cause is
// set) or that leave no pixels.
type InvalidCropError struct {
	Fractions     CropFractions
	Width, Height int
	Cause         error
}

func (e *InvalidCropError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %v", ErrInvalidCrop, e.Cause)
	}
	return fmt.Sprintf("%v: fractions %+v yield a %dx%d region", ErrInvalidCrop, e.Fractions, e.Width, e.Height)
}

func (e *InvalidCropError) Unwrap() error {
	return e.Cause
}

func (e *InvalidCropError) Is(target error) bool {
	return target == ErrInvalidCrop
}

// ResourceUnavailableError reports a file or directory that could not be
// opened, decoded or written.
type ResourceUnavailableError struct {
	Path  string
	Cause error
}

func (e *ResourceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s (caused by: %v)", ErrResourceUnavailable, e.Path, e.Cause)
	}
	return fmt.Sprintf("%v: %s", ErrResourceUnavailable, e.Path)
}

func (e *ResourceUnavailableError) Unwrap() error {
	return e.Cause
}

func (e *ResourceUnavailableError) Is(target error) bool {
	return target == ErrResourceUnavailable
}

// ExternalEngineError reports a failing OCR or PDF engine call. It is never retried.
type ExternalEngineError struct {
	Engine string
	Output string
	Cause  error
}

func (e *ExternalEngineError) Error() string {
	msg := fmt.Sprintf("%v: %s", ErrExternalEngine, e.Engine)
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ExternalEngineError) Unwrap() error {
	return e.Cause
}

func (e *ExternalEngineError) Is(target error) bool {
	return target == ErrExternalEngine
}

func newResourceUnavailableError(path string, cause error) *ResourceUnavailableError {
	return &ResourceUnavailableError{Path: path, Cause: cause}
}

func newExternalEngineError(engine string, output string, cause error) *ExternalEngineError {
	return &ExternalEngineError{Engine: engine, Output: output, Cause: cause}
}
