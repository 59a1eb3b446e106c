package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorises failures inside the scanning pipeline.
type Kind string

const (
	// KindNoCandidate means an extractor examined a frame and found nothing
	// plausible. It is a normal negative result, not a fault.
	KindNoCandidate Kind = "no_candidate"

	// KindExternalService means a collaborator such as the OCR engine failed.
	KindExternalService Kind = "external_service"

	// KindMalformedInput means an internal contract was violated, e.g. fewer
	// than four corners or a zero-area buffer reached the rectifier.
	KindMalformedInput Kind = "malformed_input"

	// KindInvalidArgument means a caller supplied an unusable argument.
	KindInvalidArgument Kind = "invalid_argument"

	// KindIO covers decode, encode and file access failures.
	KindIO Kind = "io"
)

// ScanError is a structured error carrying its Kind and an optional cause.
type ScanError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// NewNoCandidate creates a no-candidate error
func NewNoCandidate(message string) *ScanError {
	return &ScanError{Kind: KindNoCandidate, Message: message}
}

// NewExternalServiceError creates an external service error
func NewExternalServiceError(message string, cause error) *ScanError {
	return &ScanError{Kind: KindExternalService, Message: message, Cause: cause}
}

// NewMalformedInput creates a malformed input error
func NewMalformedInput(message string, cause error) *ScanError {
	return &ScanError{Kind: KindMalformedInput, Message: message, Cause: cause}
}

// NewInvalidArgument creates an invalid argument error
func NewInvalidArgument(message string, cause error) *ScanError {
	return &ScanError{Kind: KindInvalidArgument, Message: message, Cause: cause}
}

// NewIOError creates an I/O error
func NewIOError(message string, cause error) *ScanError {
	return &ScanError{Kind: KindIO, Message: message, Cause: cause}
}

// IsKind reports whether err, or any error it wraps, is a ScanError of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var scanErr *ScanError
	for err != nil {
		if !stderrors.As(err, &scanErr) {
			return false
		}
		if scanErr.Kind == kind {
			return true
		}
		err = scanErr.Cause
	}
	return false
}

// KindOf returns the kind of the outermost ScanError in err's chain, or the
// empty string when there is none.
func KindOf(err error) Kind {
	var scanErr *ScanError
	if stderrors.As(err, &scanErr) {
		return scanErr.Kind
	}
	return ""
}
