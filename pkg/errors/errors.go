// Package errors provides the error taxonomy used across docimportance.
//
// It is a thin layer over github.com/cockroachdb/errors: sentinel errors for
// the failure classes the evaluator can report, a few typed errors carrying
// structured context, and re-exports of the wrapping helpers so callers need a
// single import.
//
// Failure classes:
//
//   - Configuration errors: unknown loss or leaf-estimation identifiers,
//     invalid hyperparameters (ErrUnknownLoss, ErrUnknownLeafEstimation,
//     ErrInvalidParams).
//   - Shape mismatches: a sequence whose length differs from the document
//     count (DimensionError wrapping ErrDimensionMismatch).
//   - Input errors: empty pools, malformed files (ErrEmptyData, ValueError).
//
// Numerical degeneracy (a zero leaf denominator) is deliberately not an error;
// it surfaces as NaN or Inf in the produced statistics.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

const prefix = "docimportance"

// Sentinel errors.
var (
	ErrEmptyData             = errors.New("empty data")
	ErrDimensionMismatch     = errors.New("dimension mismatch")
	ErrUnknownLoss           = errors.New("unknown loss function")
	ErrUnknownLeafEstimation = errors.New("unknown leaf estimation method")
	ErrInvalidParams         = errors.New("invalid parameters")
)

// Re-exported helpers from cockroachdb/errors.
var (
	New    = errors.New
	Newf   = errors.Newf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// DimensionError reports a sequence or matrix whose size does not match the
// size it is required to have.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows / documents, 1 for columns / leaves
}

func (e *DimensionError) Error() string {
	axis := "rows"
	if e.Axis == 1 {
		axis = "columns"
	}
	return fmt.Sprintf("%s: %s: dimension mismatch on %s: expected %d, got %d",
		prefix, e.Op, axis, e.Expected, e.Got)
}

// Unwrap lets errors.Is(err, ErrDimensionMismatch) match.
func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) error {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

// ValueError reports an input value that cannot be processed.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
}

// NewValueError creates a ValueError.
func NewValueError(op, message string) error {
	return &ValueError{Op: op, Message: message}
}

// ValidationError reports a hyperparameter outside its allowed domain.
type ValidationError struct {
	Param  string
	Reason string
	Value  interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid parameter %s=%v: %s", prefix, e.Param, e.Value, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidParams) match.
func (e *ValidationError) Unwrap() error { return ErrInvalidParams }

// NewValidationError creates a ValidationError.
func NewValidationError(param, reason string, value interface{}) error {
	return &ValidationError{Param: param, Reason: reason, Value: value}
}

// ModelError annotates a cause with the operation that failed.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Op, e.Message, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// NewModelError creates a ModelError.
func NewModelError(op, message string, err error) error {
	return &ModelError{Op: op, Message: message, Err: err}
}

// Recover turns a panic in the calling function into a ModelError stored in
// *errp. It must be deferred directly:
//
//	func (e *Evaluator) Run() (err error) {
//		defer errors.Recover(&err, "Evaluator.Run")
//		...
//	}
func Recover(errp *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	var cause error
	switch v := r.(type) {
	case error:
		cause = v
	default:
		cause = errors.Newf("%v", v)
	}
	*errp = &ModelError{Op: op, Message: "panic recovered", Err: errors.WithStack(cause)}
}
