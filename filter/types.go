package filter

import "strings"

// Path is a field reference split into its dot-delimited segments.
// {user: {profile: {age: ...}}} and {"user.profile.age": ...} both produce
// Path{"user", "profile", "age"}.
type Path []string

// String joins the segments with dots.
func (p Path) String() string { return strings.Join(p, ".") }

// Node is the interface implemented by all parsed filter nodes.
// Use a type switch on *And, *Or, *Not and *Field to inspect a tree.
type Node interface {
	// nodeMarker is a marker method to prevent external implementation.
	nodeMarker()
}

// And is a conjunction. It comes from an explicit $and, from sibling keys
// of one object (implicit AND), or from several conditions on one field.
// An empty And matches everything.
type And struct {
	Children []Node
}

// Or is a disjunction. An empty Or matches nothing.
type Or struct {
	Children []Node
}

// Not negates its child.
type Not struct {
	Child Node
}

// Field holds the conditions applied to a single field path.
// Conditions are implicitly AND'ed and kept in input order.
type Field struct {
	Path       Path
	Conditions []Condition
}

// Condition is a single operator applied to a field.
//
// Value is set for $eq, $ne, range operators, $exists (a boolean) and pattern
// operators (a string). Values is set for $in, $nin and $all.
type Condition struct {
	Op     Operator
	Value  Value
	Values []Value
}

func (*And) nodeMarker()   {}
func (*Or) nodeMarker()    {}
func (*Not) nodeMarker()   {}
func (*Field) nodeMarker() {}

// IsNullCheck reports whether the field node is a single $eq or $ne against null,
// returning the operator. Backends use it to render null semantics.
func (f *Field) IsNullCheck() (Operator, bool) {
	if len(f.Conditions) != 1 {
		return "", false
	}
	c := f.Conditions[0]
	if (c.Op == OpEq || c.Op == OpNe) && c.Value.IsNull() {
		return c.Op, true
	}
	return "", false
}
