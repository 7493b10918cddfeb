package filter

import (
	"errors"
	"fmt"

	"github.com/hugr-lab/vecfilter/internal/recovery"
)

var (
	// ErrInvalidFilter is wrapped by every validation error returned from Parse.
	// Use errors.Is to detect a rejected filter and errors.As to read the details.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrRenderPanic is wrapped by the error Walk returns when a Renderer panics.
	ErrRenderPanic = recovery.ErrPanic
)

// UnsupportedOperatorError indicates an unknown `$` token, or a known operator
// that the target backend cannot express.
type UnsupportedOperatorError struct {
	Operator string
	Path     string
}

func (e *UnsupportedOperatorError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("unsupported operator: %s (field %s)", e.Operator, e.Path)
	}
	return "unsupported operator: " + e.Operator
}

func (e *UnsupportedOperatorError) Unwrap() error { return ErrInvalidFilter }

// InvalidTopLevelOperatorError indicates a comparison, array, element or regex
// operator used bare at the expression root, e.g. {$gt: 100}.
type InvalidTopLevelOperatorError struct {
	Operator string
}

func (e *InvalidTopLevelOperatorError) Error() string {
	return "invalid top-level operator: " + e.Operator
}

func (e *InvalidTopLevelOperatorError) Unwrap() error { return ErrInvalidFilter }

// InvalidFieldNameError indicates an empty field name or a dotted path with
// an empty segment (leading, trailing or doubled dots).
type InvalidFieldNameError struct {
	Field string
}

func (e *InvalidFieldNameError) Error() string {
	if e.Field == "" {
		return "field name cannot be empty"
	}
	return "invalid field name: " + e.Field + ": field names containing periods must be well-formed dotted paths"
}

func (e *InvalidFieldNameError) Unwrap() error { return ErrInvalidFilter }

// EmptyLogicalOperandError indicates a logical operator without a condition.
type EmptyLogicalOperandError struct {
	Operator string
}

func (e *EmptyLogicalOperandError) Error() string {
	return e.Operator + " operator cannot be empty"
}

func (e *EmptyLogicalOperandError) Unwrap() error { return ErrInvalidFilter }

// InvalidOperatorValueError indicates an operand of the wrong shape,
// e.g. $in given a string or $exists given a number.
type InvalidOperatorValueError struct {
	Operator string
	Path     string
	Reason   string
}

func (e *InvalidOperatorValueError) Error() string {
	msg := "invalid value"
	if e.Operator != "" {
		msg += " for " + e.Operator
	}
	if e.Path != "" {
		msg += " on field " + e.Path
	}
	return msg + ": " + e.Reason
}

func (e *InvalidOperatorValueError) Unwrap() error { return ErrInvalidFilter }

// OperatorPlacementError indicates an operator in a position the grammar does
// not allow: a logical operator next to plain field keys, operators mixed with
// nested field keys, or logical and comparison operators in one field map.
type OperatorPlacementError struct {
	Operator string
	Path     string
	Reason   string
}

func (e *OperatorPlacementError) Error() string {
	msg := "misplaced operator " + e.Operator
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return msg + ": " + e.Reason
}

func (e *OperatorPlacementError) Unwrap() error { return ErrInvalidFilter }
