package filter

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxDepth bounds the nesting of objects and logical operators in a filter.
const MaxDepth = 64

// IsEmpty reports whether expr means "no filter": nil, a nil pointer,
// or an object without keys.
func IsEmpty(expr any) bool {
	if isNil(expr) {
		return true
	}
	ms, ok := members(expr)
	return ok && len(ms) == 0
}

// Parse validates a filter expression against a backend operator set and
// returns its typed tree. An empty expression returns a nil Node.
//
// The whole input is validated before anything is returned, so a backend never
// renders part of an invalid filter.
//
// Error conditions (all wrap ErrInvalidFilter):
//   - *UnsupportedOperatorError: unknown `$` token or operator outside ops
//   - *InvalidTopLevelOperatorError: non-logical operator at the root
//   - *InvalidFieldNameError: malformed dotted field name
//   - *EmptyLogicalOperandError: $not without a condition
//   - *InvalidOperatorValueError: operand of the wrong shape
//   - *OperatorPlacementError: operators where the grammar does not allow them
func Parse(expr any, ops OperatorSet) (Node, error) {
	if IsEmpty(expr) {
		return nil, nil
	}

	ms, ok := members(expr)
	if !ok {
		return nil, &InvalidOperatorValueError{Reason: fmt.Sprintf("filter must be an object, got %T", expr)}
	}

	p := &parser{ops: ops}
	return p.parseExpression(ms)
}

// Validate checks a filter expression without keeping the parsed tree.
func Validate(expr any, ops OperatorSet) error {
	_, err := Parse(expr, ops)
	return err
}

// SplitPath splits a field name into path segments.
// Every dot-delimited segment must be non-empty.
func SplitPath(name string) (Path, error) {
	if name == "" {
		return nil, &InvalidFieldNameError{}
	}
	segments := strings.Split(name, ".")
	for _, s := range segments {
		if s == "" {
			return nil, &InvalidFieldNameError{Field: name}
		}
	}
	return Path(segments), nil
}

type parser struct {
	ops   OperatorSet
	depth int
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return &InvalidOperatorValueError{Reason: fmt.Sprintf("filter nesting exceeds maximum depth of %d", MaxDepth)}
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// checkOperator resolves an operator key and verifies the backend supports it.
func (p *parser) checkOperator(key string, path Path) (Operator, error) {
	op := Operator(key)
	if op.Category() == CategoryUnknown || !p.ops.Supports(op) || op == OpElemMatch {
		return "", &UnsupportedOperatorError{Operator: key, Path: path.String()}
	}
	return op, nil
}

// parseExpression parses an object at the root or inside a logical operand.
// Logical operators are allowed here as long as no plain field keys sit beside them.
func (p *parser) parseExpression(ms []Member) (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	var fields, logical int
	for _, m := range ms {
		if !IsOperatorKey(m.Key) {
			fields++
			continue
		}
		op, err := p.checkOperator(m.Key, nil)
		if err != nil {
			return nil, err
		}
		if !op.IsLogical() {
			return nil, &InvalidTopLevelOperatorError{Operator: m.Key}
		}
		logical++
	}
	if logical > 0 && fields > 0 {
		for _, m := range ms {
			if IsOperatorKey(m.Key) {
				return nil, &OperatorPlacementError{Operator: m.Key, Reason: "logical operators cannot be combined with field conditions at the same level"}
			}
		}
	}

	children := make([]Node, 0, len(ms))
	for _, m := range ms {
		var (
			n   Node
			err error
		)
		if IsOperatorKey(m.Key) {
			n, err = p.parseLogical(Operator(m.Key), m.Value)
		} else {
			var path Path
			path, err = SplitPath(m.Key)
			if err == nil {
				n, err = p.parseField(path, m.Value)
			}
		}
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return conjunction(children), nil
}

// parseLogical parses a root-level logical operator and its operand.
func (p *parser) parseLogical(op Operator, operand any) (Node, error) {
	if op == OpNot {
		if emptyOperand(operand) {
			return nil, &EmptyLogicalOperandError{Operator: string(op)}
		}
		ms, ok := members(operand)
		if !ok {
			return nil, &InvalidOperatorValueError{Operator: string(op), Reason: "operand must be an object"}
		}
		child, err := p.parseExpression(ms)
		if err != nil {
			return nil, err
		}
		return &Not{Child: child}, nil
	}

	items, ok := elements(operand)
	if !ok || isNil(operand) {
		return nil, &InvalidOperatorValueError{Operator: string(op), Reason: "logical operator must have an array value"}
	}

	children := make([]Node, 0, len(items))
	for i, item := range items {
		ms, ok := members(item)
		if !ok {
			return nil, &InvalidOperatorValueError{Operator: string(op), Reason: fmt.Sprintf("element %d must be an object", i)}
		}
		if len(ms) == 0 {
			children = append(children, &And{})
			continue
		}
		child, err := p.parseExpression(ms)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return combine(op, children), nil
}

// parseField parses the condition attached to a field path.
func (p *parser) parseField(path Path, v any) (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if isNil(v) {
		return &Field{Path: path, Conditions: []Condition{{Op: OpEq, Value: Null}}}, nil
	}

	if re, ok := v.(primitive.Regex); ok {
		c, err := p.regexCondition(path, re)
		if err != nil {
			return nil, err
		}
		return &Field{Path: path, Conditions: []Condition{c}}, nil
	}

	if ms, ok := members(v); ok {
		return p.parseObjectValue(path, ms)
	}

	if items, ok := elements(v); ok {
		values, err := scalars(OpIn, path, items)
		if err != nil {
			return nil, err
		}
		return &Field{Path: path, Conditions: []Condition{{Op: OpIn, Values: values}}}, nil
	}

	val, err := ValueOf(v)
	if err != nil {
		return nil, &InvalidOperatorValueError{Operator: string(OpEq), Path: path.String(), Reason: err.Error()}
	}
	return &Field{Path: path, Conditions: []Condition{{Op: OpEq, Value: val}}}, nil
}

// parseObjectValue handles an object at a field: an operator map or nested fields.
func (p *parser) parseObjectValue(path Path, ms []Member) (Node, error) {
	if len(ms) == 0 {
		return nil, &InvalidOperatorValueError{Path: path.String(), Reason: "field condition cannot be an empty object"}
	}

	var ops, fields int
	for _, m := range ms {
		if IsOperatorKey(m.Key) {
			ops++
		} else {
			fields++
		}
	}

	switch {
	case ops > 0 && fields > 0:
		for _, m := range ms {
			if IsOperatorKey(m.Key) {
				return nil, &OperatorPlacementError{Operator: m.Key, Path: path.String(), Reason: "operators cannot be mixed with nested field names"}
			}
		}
	case fields > 0:
		children := make([]Node, 0, len(ms))
		for _, m := range ms {
			sub, err := SplitPath(m.Key)
			if err != nil {
				return nil, err
			}
			child, err := p.parseField(append(append(Path{}, path...), sub...), m.Value)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return conjunction(children), nil
	}

	return p.parseOperators(path, ms)
}

// parseOperators parses an operator map applied to one field.
func (p *parser) parseOperators(path Path, ms []Member) (Node, error) {
	var logical, other int
	for _, m := range ms {
		op, err := p.checkOperator(m.Key, path)
		if err != nil {
			return nil, err
		}
		if op.IsLogical() {
			logical++
		} else {
			other++
		}
	}
	if logical > 0 && other > 0 {
		for _, m := range ms {
			if Operator(m.Key).IsLogical() {
				return nil, &OperatorPlacementError{Operator: m.Key, Path: path.String(), Reason: "logical operators cannot be combined with comparison operators on a field"}
			}
		}
	}

	if logical > 0 {
		children := make([]Node, 0, len(ms))
		for _, m := range ms {
			n, err := p.parseFieldLogical(path, Operator(m.Key), m.Value)
			if err != nil {
				return nil, err
			}
			children = append(children, n)
		}
		return conjunction(children), nil
	}

	field := &Field{Path: path, Conditions: make([]Condition, 0, len(ms))}
	for _, m := range ms {
		c, err := p.condition(path, Operator(m.Key), m.Value)
		if err != nil {
			return nil, err
		}
		field.Conditions = append(field.Conditions, c)
	}
	return field, nil
}

// parseFieldLogical parses a logical operator nested in a field's operator map,
// e.g. {price: {$not: {$gt: 100}}} or {price: {$or: [{$lt: 10}, {$gt: 90}]}}.
func (p *parser) parseFieldLogical(path Path, op Operator, operand any) (Node, error) {
	if op == OpNot {
		if emptyOperand(operand) {
			return nil, &EmptyLogicalOperandError{Operator: string(op)}
		}
		child, err := p.parseField(path, operand)
		if err != nil {
			return nil, err
		}
		return &Not{Child: child}, nil
	}

	items, ok := elements(operand)
	if !ok || isNil(operand) {
		return nil, &InvalidOperatorValueError{Operator: string(op), Path: path.String(), Reason: "logical operator must have an array value"}
	}
	children := make([]Node, 0, len(items))
	for _, item := range items {
		child, err := p.parseField(path, item)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return combine(op, children), nil
}

// condition validates a single non-logical operator and its operand.
func (p *parser) condition(path Path, op Operator, operand any) (Condition, error) {
	invalid := func(reason string) error {
		return &InvalidOperatorValueError{Operator: string(op), Path: path.String(), Reason: reason}
	}

	switch op.Category() {
	case CategoryBasic:
		v, err := scalar(operand)
		if err != nil {
			return Condition{}, invalid(err.Error())
		}
		return Condition{Op: op, Value: v}, nil

	case CategoryNumeric:
		v, err := scalar(operand)
		if err != nil {
			return Condition{}, invalid(err.Error())
		}
		switch v.Kind {
		case KindNumber, KindString, KindTime:
		default:
			return Condition{}, invalid("range operators require a number, string or date, got " + v.Kind.String())
		}
		return Condition{Op: op, Value: v}, nil

	case CategoryArray:
		items, ok := elements(operand)
		if !ok || isNil(operand) {
			return Condition{}, invalid(fmt.Sprintf("%s operator requires an array value", op))
		}
		values, err := scalars(op, path, items)
		if err != nil {
			return Condition{}, err
		}
		return Condition{Op: op, Values: values}, nil

	case CategoryElement:
		b, ok := operand.(bool)
		if !ok {
			return Condition{}, invalid(fmt.Sprintf("expects a boolean, got %T", operand))
		}
		return Condition{Op: op, Value: BoolValue(b)}, nil

	case CategoryRegex:
		switch pat := operand.(type) {
		case string:
			return Condition{Op: op, Value: StringValue(pat)}, nil
		case *regexp.Regexp:
			if op != OpRegex || pat == nil {
				break
			}
			return Condition{Op: op, Value: StringValue(pat.String())}, nil
		case primitive.Regex:
			if op != OpRegex {
				break
			}
			return p.regexCondition(path, pat)
		}
		return Condition{}, invalid(fmt.Sprintf("expects a string pattern, got %T", operand))
	}

	return Condition{}, &UnsupportedOperatorError{Operator: string(op), Path: path.String()}
}

func (p *parser) regexCondition(path Path, re primitive.Regex) (Condition, error) {
	if !p.ops.Supports(OpRegex) {
		return Condition{}, &UnsupportedOperatorError{Operator: string(OpRegex), Path: path.String()}
	}
	if re.Options != "" {
		return Condition{}, &InvalidOperatorValueError{Operator: string(OpRegex), Path: path.String(), Reason: "regex options are not supported"}
	}
	return Condition{Op: OpRegex, Value: StringValue(re.Pattern)}, nil
}

// emptyOperand reports whether a $not operand carries no condition:
// nil, an empty object or an empty array.
func emptyOperand(v any) bool {
	if IsEmpty(v) {
		return true
	}
	items, ok := elements(v)
	return ok && len(items) == 0
}

// scalar normalizes an operand that must not be an object or array.
func scalar(v any) (Value, error) {
	if !isNil(v) {
		if _, ok := members(v); ok {
			return Value{}, fmt.Errorf("expects a scalar, got an object")
		}
		if _, ok := elements(v); ok {
			return Value{}, fmt.Errorf("expects a scalar, got an array")
		}
	}
	return ValueOf(v)
}

// scalars normalizes the elements of an array operand.
func scalars(op Operator, path Path, items []any) ([]Value, error) {
	values := make([]Value, 0, len(items))
	for i, item := range items {
		v, err := scalar(item)
		if err != nil {
			return nil, &InvalidOperatorValueError{Operator: string(op), Path: path.String(), Reason: fmt.Sprintf("element %d: %v", i, err)}
		}
		values = append(values, v)
	}
	return values, nil
}

// conjunction collapses a single child and wraps several in an And.
func conjunction(children []Node) Node {
	if len(children) == 1 {
		return children[0]
	}
	return &And{Children: children}
}

// combine builds the node for $and, $or or $nor over parsed operands.
// Explicit operators are never collapsed, so empty operands keep their identity.
func combine(op Operator, children []Node) Node {
	switch op {
	case OpOr:
		return &Or{Children: children}
	case OpNor:
		return &Not{Child: &Or{Children: children}}
	default:
		return &And{Children: children}
	}
}
