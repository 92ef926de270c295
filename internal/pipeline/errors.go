package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel conditions surfaced to users. All of them are transient: the
// session stays in a retryable state.
var (
	ErrNoHandDetected     = errors.New("no hand detected")
	ErrNoDesigns          = errors.New("no extracted designs available")
	ErrNoFingersQualified = errors.New("no finger met the quality floor")
	ErrSessionReset       = errors.New("session was reset while the operation was in flight")
	ErrInvalidState       = errors.New("operation not allowed in current state")
)

// Kind classifies a failure by the pipeline stage that produced it, so
// callers can choose the right user-facing message without string matching.
type Kind int

const (
	KindInput Kind = iota
	KindDetection
	KindExtraction
	KindCompositing
	KindShare
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindDetection:
		return "detection"
	case KindExtraction:
		return "extraction"
	case KindCompositing:
		return "compositing"
	case KindShare:
		return "share"
	default:
		return "unknown"
	}
}

// Error wraps a stage failure with its classification. No pipeline error is
// fatal to the process.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the stage classification from an error chain. The second
// return is false when the error did not originate in the pipeline.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
