package pipeline

import (
	"fmt"
	"strings"

	"github.com/quantrail/quantrail-engine/pkg/adapters/datasource"
)

// ErrorKind identifies the request-level failure class.
type ErrorKind string

const (
	// ErrBindMismatch: the final statement references a placeholder with no
	// supplied value. Guessing a value is never safe.
	ErrBindMismatch ErrorKind = "bind_mismatch"

	// ErrUnsafeParameter: a supplied parameter value carries a SQL
	// injection signature.
	ErrUnsafeParameter ErrorKind = "unsafe_parameter"

	// Engine-side failures, surfaced with the statement attached and never
	// retried.
	ErrConnection ErrorKind = "connection"
	ErrSyntax     ErrorKind = "syntax"
	ErrPermission ErrorKind = "permission"
	ErrConstraint ErrorKind = "constraint"
	ErrTimeout    ErrorKind = "timeout"

	ErrInternal ErrorKind = "internal"
)

// Error is the request-level failure surfaced to the caller. Statement and
// ParamNames give enough context to diagnose without re-running; parameter
// values are deliberately not attached.
type Error struct {
	Kind       ErrorKind
	Message    string
	Statement  string
	ParamNames []string
	Cause      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	if e.Statement != "" {
		fmt.Fprintf(&b, " (statement: %s)", e.Statement)
	}
	if len(e.ParamNames) > 0 {
		fmt.Fprintf(&b, " (params: %s)", strings.Join(e.ParamNames, ", "))
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// execErrorKind maps the datasource taxonomy onto request-level kinds.
func execErrorKind(err error) ErrorKind {
	switch datasource.KindOf(err) {
	case datasource.KindConnection:
		return ErrConnection
	case datasource.KindSyntax:
		return ErrSyntax
	case datasource.KindPermission:
		return ErrPermission
	case datasource.KindConstraint:
		return ErrConstraint
	case datasource.KindTimeout:
		return ErrTimeout
	default:
		return ErrInternal
	}
}
