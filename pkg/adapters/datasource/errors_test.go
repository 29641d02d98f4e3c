package datasource

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecError_Unwrap(t *testing.T) {
	cause := errors.New("relation \"trades\" does not exist")
	err := NewExecError(KindSyntax, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "syntax error")
	assert.Contains(t, err.Error(), "does not exist")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{
			name: "classified error",
			err:  NewExecError(KindPermission, errors.New("permission denied")),
			want: KindPermission,
		},
		{
			name: "wrapped classified error",
			err:  fmt.Errorf("execute: %w", NewExecError(KindConstraint, errors.New("violates"))),
			want: KindConstraint,
		},
		{
			name: "bare deadline",
			err:  context.DeadlineExceeded,
			want: KindTimeout,
		},
		{
			name: "unclassified",
			err:  errors.New("something odd"),
			want: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "connection", KindConnection.String())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, MaxQueryLimit, ClampLimit(0))
	assert.Equal(t, MaxQueryLimit, ClampLimit(-5))
	assert.Equal(t, MaxQueryLimit, ClampLimit(MaxQueryLimit+1))
	assert.Equal(t, 100, ClampLimit(100))
	assert.Equal(t, MaxQueryLimit, ClampLimit(MaxQueryLimit))
}
