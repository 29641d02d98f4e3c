package datasource

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies an engine-side execution failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConnection
	KindSyntax
	KindPermission
	KindConstraint
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindSyntax:
		return "syntax"
	case KindPermission:
		return "permission"
	case KindConstraint:
		return "constraint"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ExecError wraps an engine error with its classification. Adapters return
// it from Query; callers retrieve it with errors.As.
type ExecError struct {
	Kind  ErrorKind
	Cause error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Cause)
}

func (e *ExecError) Unwrap() error {
	return e.Cause
}

// NewExecError builds a classified execution error.
func NewExecError(kind ErrorKind, cause error) *ExecError {
	return &ExecError{Kind: kind, Cause: cause}
}

// KindOf extracts the classification from err, defaulting to KindUnknown.
// Context deadline errors classify as KindTimeout even when unwrapped.
func KindOf(err error) ErrorKind {
	var execErr *ExecError
	if errors.As(err, &execErr) {
		return execErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}
