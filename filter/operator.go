package filter

import (
	"slices"
	"strings"
)

// Operator is a `$`-prefixed filter operator token.
type Operator string

const (
	// Basic operators
	OpEq Operator = "$eq"
	OpNe Operator = "$ne"

	// Numeric (range) operators
	OpGt  Operator = "$gt"
	OpGte Operator = "$gte"
	OpLt  Operator = "$lt"
	OpLte Operator = "$lte"

	// Array operators
	OpIn        Operator = "$in"
	OpNin       Operator = "$nin"
	OpAll       Operator = "$all"
	OpElemMatch Operator = "$elemMatch"

	// Element operators
	OpExists Operator = "$exists"

	// Regex and string pattern operators
	OpRegex   Operator = "$regex"
	OpLike    Operator = "$like"
	OpNotLike Operator = "$notLike"

	// Logical operators
	OpAnd Operator = "$and"
	OpOr  Operator = "$or"
	OpNot Operator = "$not"
	OpNor Operator = "$nor"
)

// Category groups operators by the kind of value they take and how backends render them.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryBasic
	CategoryNumeric
	CategoryArray
	CategoryElement
	CategoryRegex
	CategoryLogical
)

// String returns the lower-case category name.
func (c Category) String() string {
	switch c {
	case CategoryBasic:
		return "basic"
	case CategoryNumeric:
		return "numeric"
	case CategoryArray:
		return "array"
	case CategoryElement:
		return "element"
	case CategoryRegex:
		return "regex"
	case CategoryLogical:
		return "logical"
	default:
		return "unknown"
	}
}

// knownOperators lists every token the classifier recognizes, including tokens
// that are not part of the default set and must be opted into by a backend.
var knownOperators = map[Operator]Category{
	OpEq:        CategoryBasic,
	OpNe:        CategoryBasic,
	OpGt:        CategoryNumeric,
	OpGte:       CategoryNumeric,
	OpLt:        CategoryNumeric,
	OpLte:       CategoryNumeric,
	OpIn:        CategoryArray,
	OpNin:       CategoryArray,
	OpAll:       CategoryArray,
	OpElemMatch: CategoryArray,
	OpExists:    CategoryElement,
	OpRegex:     CategoryRegex,
	OpLike:      CategoryRegex,
	OpNotLike:   CategoryRegex,
	OpAnd:       CategoryLogical,
	OpOr:        CategoryLogical,
	OpNot:       CategoryLogical,
	OpNor:       CategoryLogical,
}

// Classify returns the category of a recognized operator token,
// or CategoryUnknown if the token is not a known operator.
func Classify(token string) Category {
	return knownOperators[Operator(token)]
}

// IsOperatorKey reports whether a map key is written as an operator (starts with `$`).
// Such keys are never treated as field names.
func IsOperatorKey(key string) bool {
	return strings.HasPrefix(key, "$")
}

// Category returns the category of the operator.
func (op Operator) Category() Category { return knownOperators[op] }

// IsLogical reports whether op is $and, $or, $not or $nor.
func (op Operator) IsLogical() bool { return op.Category() == CategoryLogical }

// IsBasic reports whether op is $eq or $ne.
func (op Operator) IsBasic() bool { return op.Category() == CategoryBasic }

// IsNumeric reports whether op is a range comparison.
func (op Operator) IsNumeric() bool { return op.Category() == CategoryNumeric }

// IsArray reports whether op takes an array operand.
func (op Operator) IsArray() bool { return op.Category() == CategoryArray }

// IsElement reports whether op is $exists.
func (op Operator) IsElement() bool { return op.Category() == CategoryElement }

// IsRegex reports whether op is a pattern operator.
func (op Operator) IsRegex() bool { return op.Category() == CategoryRegex }

// OperatorSet is the set of operators a backend can express.
// The zero value supports nothing; start from DefaultOperators.
// OperatorSet values are immutable, With and Without return copies.
type OperatorSet struct {
	ops map[Operator]struct{}
}

// DefaultOperators returns the shared default operator set.
// $like and $notLike are recognized tokens but not defaults.
func DefaultOperators() OperatorSet {
	return NewOperatorSet(
		OpEq, OpNe,
		OpGt, OpGte, OpLt, OpLte,
		OpIn, OpNin, OpAll, OpElemMatch,
		OpExists,
		OpRegex,
		OpAnd, OpOr, OpNot, OpNor,
	)
}

// NewOperatorSet builds a set from explicit operators.
// Tokens that Classify does not recognize are ignored.
func NewOperatorSet(ops ...Operator) OperatorSet {
	s := OperatorSet{ops: make(map[Operator]struct{}, len(ops))}
	for _, op := range ops {
		if op.Category() == CategoryUnknown {
			continue
		}
		s.ops[op] = struct{}{}
	}
	return s
}

// With returns a copy of the set with custom operators added.
func (s OperatorSet) With(ops ...Operator) OperatorSet {
	return NewOperatorSet(append(s.Operators(), ops...)...)
}

// Without returns a copy of the set with the given operators removed.
func (s OperatorSet) Without(ops ...Operator) OperatorSet {
	out := NewOperatorSet(s.Operators()...)
	for _, op := range ops {
		delete(out.ops, op)
	}
	return out
}

// Supports reports whether op belongs to the set.
func (s OperatorSet) Supports(op Operator) bool {
	_, ok := s.ops[op]
	return ok
}

// Operators returns the operators in the set in sorted order.
func (s OperatorSet) Operators() []Operator {
	out := make([]Operator, 0, len(s.ops))
	for op := range s.ops {
		out = append(out, op)
	}
	slices.Sort(out)
	return out
}

// Categories groups the operators of the set by category.
func (s OperatorSet) Categories() map[Category][]Operator {
	out := make(map[Category][]Operator)
	for _, op := range s.Operators() {
		out[op.Category()] = append(out[op.Category()], op)
	}
	return out
}
