// Package filter parses MongoDB-style filter expressions into a typed tree
// that backend translators render into query fragments.
//
// This package provides:
//   - Decoding of filter documents from JSON, BSON and MessagePack, keeping key order
//   - Operator classification and per-backend operator sets
//   - Validation of the whole expression before anything is rendered
//   - A generic tree walker driving a backend Renderer
//
// # Basic Usage
//
// Decode and parse a filter for a backend's operator set:
//
//	expr, err := filter.DecodeJSON(body)
//	if err != nil {
//	    return err // Malformed JSON
//	}
//
//	ops := filter.DefaultOperators().Without(filter.OpElemMatch, filter.OpNor)
//	node, err := filter.Parse(expr, ops)
//	if err != nil {
//	    return err // errors.Is(err, filter.ErrInvalidFilter)
//	}
//
// A nil node means the filter was empty.
//
// # Expression Grammar
//
// The root is either a map of field names to conditions (implicit AND) or
// a map of logical operators:
//
//	{"status": "active", "price": {"$gt": 70, "$lte": 100}}
//	{"$or": [{"a": 1}, {"b": {"$in": [2, 3]}}]}
//	{"$not": {"deleted": true}}
//
// A field condition is a primitive (equality), an array of primitives ($in),
// an operator map, or a nested object of sub-fields. Nested objects and
// dotted names produce the same Path:
//
//	{"user": {"profile": {"age": {"$gt": 25}}}}
//	{"user.profile.age": {"$gt": 25}}
//
// # Custom Backends
//
// Implement Renderer for another target and call Walk:
//
//	type myRenderer struct{}
//	func (myRenderer) Term(path filter.Path, op filter.Operator, v filter.Value) (string, error) { ... }
//	...
//	out, err := filter.Walk[string](node, myRenderer{})
package filter
