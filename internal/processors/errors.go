package processors

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/sitekit/internal/asset"
)

// ErrorKind classifies processor failures.
type ErrorKind int

const (
	// NonTextual means text was required but the contents are binary or empty.
	NonTextual ErrorKind = iota + 1
	// NonBinary means bytes were required but the contents are text or empty.
	NonBinary
	// Malformed means the input does not parse as its declared type.
	Malformed
	// Compilation means a downstream tool failed.
	Compilation
	// Deferred is a scheduling signal: retry the asset in a later pass.
	Deferred
)

func (k ErrorKind) String() string {
	switch k {
	case NonTextual:
		return "non-textual"
	case NonBinary:
		return "non-binary"
	case Malformed:
		return "malformed"
	case Compilation:
		return "compilation"
	case Deferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// ProcessingError is returned by processors.
type ProcessingError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ProcessingError) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// Is matches any ProcessingError of the same kind, so errors.Is(err,
// ErrDeferred) holds for every deferral.
func (e *ProcessingError) Is(target error) bool {
	var t *ProcessingError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrDeferred   = &ProcessingError{Kind: Deferred}
	ErrNonTextual = &ProcessingError{Kind: NonTextual}
	ErrNonBinary  = &ProcessingError{Kind: NonBinary}
)

// Defer requests a retry in the next pass.
func Defer(format string, args ...any) error {
	return &ProcessingError{Kind: Deferred, Message: fmt.Sprintf(format, args...)}
}

// MalformedError reports unparseable input.
func MalformedError(err error, format string, args ...any) error {
	return &ProcessingError{Kind: Malformed, Message: fmt.Sprintf(format, args...), Err: err}
}

// CompilationError reports a failed downstream tool.
func CompilationError(err error, format string, args ...any) error {
	return &ProcessingError{Kind: Compilation, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsDeferred reports whether err requests a retry.
func IsDeferred(err error) bool { return errors.Is(err, ErrDeferred) }

func textOf(a *asset.Asset) (string, error) {
	s, err := a.Text()
	if err != nil {
		return "", &ProcessingError{Kind: NonTextual, Message: a.Path(), Err: err}
	}
	return s, nil
}

func bytesOf(a *asset.Asset) ([]byte, error) {
	b, err := a.Bytes()
	if err != nil {
		return nil, &ProcessingError{Kind: NonBinary, Message: a.Path(), Err: err}
	}
	return b, nil
}
