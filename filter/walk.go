package filter

import (
	"fmt"
	"log/slog"

	"github.com/hugr-lab/vecfilter/internal/recovery"
)

// Bound is one side of a range condition.
type Bound struct {
	Op    Operator
	Value Value
}

// Renderer turns parsed nodes into a backend representation T.
// Walk drives a Renderer bottom-up, so every method receives children
// that are already rendered.
type Renderer[T any] interface {
	// Term renders $eq or $ne. v may be null.
	Term(path Path, op Operator, v Value) (T, error)

	// Range renders the folded range operators of one field, in input order.
	Range(path Path, bounds []Bound) (T, error)

	// Array renders $in, $nin or $all. values may be empty.
	Array(path Path, op Operator, values []Value) (T, error)

	// Exists renders $exists.
	Exists(path Path, exists bool) (T, error)

	// Pattern renders $regex, $like or $notLike.
	Pattern(path Path, op Operator, pattern string) (T, error)

	// Logical renders $and or $or. children may be empty.
	Logical(op Operator, children []T) (T, error)

	// Not renders a negation. The original node is passed so a backend can
	// special-case the shape of the negated child.
	Not(node *Not, child T) (T, error)
}

// Walk renders a parsed filter tree with r.
// A panic inside r is returned as an error wrapping ErrRenderPanic.
func Walk[T any](n Node, r Renderer[T]) (T, error) {
	return WalkWithLogger(n, r, nil)
}

// WalkWithLogger is Walk that also logs a recovered panic, with its stack,
// to logger at error level. logger may be nil.
func WalkWithLogger[T any](n Node, r Renderer[T], logger *slog.Logger) (T, error) {
	return recovery.RecoverToValue(logger, "filter: render", func() (T, error) {
		return walk(n, r)
	})
}

func walk[T any](n Node, r Renderer[T]) (T, error) {
	var zero T

	switch n := n.(type) {
	case *And:
		children, err := walkAll(n.Children, r)
		if err != nil {
			return zero, err
		}
		return r.Logical(OpAnd, children)

	case *Or:
		children, err := walkAll(n.Children, r)
		if err != nil {
			return zero, err
		}
		return r.Logical(OpOr, children)

	case *Not:
		child, err := walk(n.Child, r)
		if err != nil {
			return zero, err
		}
		return r.Not(n, child)

	case *Field:
		return walkField(n, r)
	}

	return zero, fmt.Errorf("filter: unexpected node type %T", n)
}

func walkAll[T any](nodes []Node, r Renderer[T]) ([]T, error) {
	out := make([]T, 0, len(nodes))
	for _, n := range nodes {
		t, err := walk(n, r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// walkField renders each condition of a field. Range operators are folded
// into a single Range call placed where the first of them appeared.
func walkField[T any](f *Field, r Renderer[T]) (T, error) {
	var (
		zero    T
		parts   = make([]T, 0, len(f.Conditions))
		bounds  []Bound
		rangeAt = -1
	)

	for _, c := range f.Conditions {
		var (
			t   T
			err error
		)
		switch c.Op.Category() {
		case CategoryNumeric:
			if rangeAt < 0 {
				rangeAt = len(parts)
				parts = append(parts, zero)
			}
			bounds = append(bounds, Bound{Op: c.Op, Value: c.Value})
			continue
		case CategoryBasic:
			t, err = r.Term(f.Path, c.Op, c.Value)
		case CategoryArray:
			t, err = r.Array(f.Path, c.Op, c.Values)
		case CategoryElement:
			t, err = r.Exists(f.Path, c.Value.Bool)
		case CategoryRegex:
			t, err = r.Pattern(f.Path, c.Op, c.Value.String)
		default:
			err = &UnsupportedOperatorError{Operator: string(c.Op), Path: f.Path.String()}
		}
		if err != nil {
			return zero, err
		}
		parts = append(parts, t)
	}

	if rangeAt >= 0 {
		t, err := r.Range(f.Path, bounds)
		if err != nil {
			return zero, err
		}
		parts[rangeAt] = t
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	return r.Logical(OpAnd, parts)
}
