package dispatch

import (
	"errors"
	"fmt"

	"github.com/ollama/opexec/ml"
)

var (
	// ErrUnsupportedType is reported when no kernel is registered for the
	// requested family and element type.
	ErrUnsupportedType = errors.New("unsupported element type")

	// ErrMalformedOperand is reported when operand metadata contradicts the
	// preconditions of the family. No kernel has run when it is returned.
	ErrMalformedOperand = errors.New("malformed operand")

	// ErrUnknownFamily is reported for families outside the declared set.
	ErrUnknownFamily = errors.New("unknown operation family")

	// ErrDuplicateKernel is returned by Table.Register when the key is taken.
	ErrDuplicateKernel = errors.New("kernel already registered")
)

// Error describes a dispatch failure detected before any kernel ran.
type Error struct {
	Family Family
	DType  ml.DType
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch %s[%s]: %v", e.Family, e.DType, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
