package arrowfilter

import (
	"cmp"
	"regexp"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/vecfilter/filter"
)

// Operators returns the operator set of the Arrow evaluator. It matches the
// SQL translator so a filter accepted by one is accepted by the other.
func Operators() filter.OperatorSet {
	return filter.DefaultOperators().
		Without(filter.OpAll, filter.OpElemMatch, filter.OpNor).
		With(filter.OpLike, filter.OpNotLike)
}

type rowFunc func(row int) Truth

// binder resolves columns against a record once and returns the per-row check.
type binder func(rec arrow.Record) rowFunc

// Predicate is a compiled filter evaluated over Arrow records.
// It is immutable and safe for concurrent use.
type Predicate struct {
	bind binder
}

// Compile validates expr and compiles it into a Predicate.
// An empty filter compiles to a predicate that selects every row.
func Compile(expr any) (*Predicate, error) {
	n, err := filter.Parse(expr, Operators())
	if err != nil {
		return nil, err
	}
	return CompileNode(n)
}

// CompileNode compiles an already parsed tree.
func CompileNode(n filter.Node) (*Predicate, error) {
	if n == nil {
		return &Predicate{bind: constant(True)}, nil
	}
	b, err := filter.Walk[binder](n, compiler{})
	if err != nil {
		return nil, err
	}
	return &Predicate{bind: b}, nil
}

// Eval evaluates the predicate for one row of rec.
func (p *Predicate) Eval(rec arrow.Record, row int) Truth {
	return p.bind(rec)(row)
}

// Filter returns the indices of the rows of rec for which the predicate is True.
func (p *Predicate) Filter(rec arrow.Record) []int {
	check := p.bind(rec)
	rows := make([]int, 0, rec.NumRows())
	for row := 0; row < int(rec.NumRows()); row++ {
		if check(row) == True {
			rows = append(rows, row)
		}
	}
	return rows
}

func constant(t Truth) binder {
	return func(arrow.Record) rowFunc {
		return func(int) Truth { return t }
	}
}

// scalarCheck builds a binder that reads one column value per row.
// NULL and unreadable values are Unknown unless check handles them.
func scalarCheck(path filter.Path, check func(v filter.Value) Truth) binder {
	return func(rec arrow.Record) rowFunc {
		col := resolve(rec, path)
		return func(row int) Truth {
			v, ok := col.value(row)
			if !ok || v.IsNull() {
				return Unknown
			}
			return check(v)
		}
	}
}

type compiler struct{}

func (compiler) Term(path filter.Path, op filter.Operator, v filter.Value) (binder, error) {
	if op != filter.OpEq && op != filter.OpNe {
		return nil, &filter.UnsupportedOperatorError{Operator: string(op), Path: path.String()}
	}

	if v.IsNull() {
		return func(rec arrow.Record) rowFunc {
			col := resolve(rec, path)
			return func(row int) Truth {
				null := col.isNull(row)
				if op == filter.OpEq {
					return truth(null)
				}
				return truth(!null)
			}
		}, nil
	}

	return scalarCheck(path, func(x filter.Value) Truth {
		c, ok := compare(x, v)
		if !ok {
			return Unknown
		}
		if op == filter.OpEq {
			return truth(c == 0)
		}
		return truth(c != 0)
	}), nil
}

func (compiler) Range(path filter.Path, bounds []filter.Bound) (binder, error) {
	for _, b := range bounds {
		switch b.Op {
		case filter.OpGt, filter.OpGte, filter.OpLt, filter.OpLte:
		default:
			return nil, &filter.UnsupportedOperatorError{Operator: string(b.Op), Path: path.String()}
		}
	}

	return scalarCheck(path, func(x filter.Value) Truth {
		result := True
		for _, b := range bounds {
			c, ok := compare(x, b.Value)
			if !ok {
				result = result.And(Unknown)
				continue
			}
			switch b.Op {
			case filter.OpGt:
				result = result.And(truth(c > 0))
			case filter.OpGte:
				result = result.And(truth(c >= 0))
			case filter.OpLt:
				result = result.And(truth(c < 0))
			case filter.OpLte:
				result = result.And(truth(c <= 0))
			}
		}
		return result
	}), nil
}

func (compiler) Array(path filter.Path, op filter.Operator, values []filter.Value) (binder, error) {
	switch op {
	case filter.OpIn:
		if len(values) == 0 {
			return constant(False), nil
		}
		return scalarCheck(path, func(x filter.Value) Truth { return in(x, values) }), nil
	case filter.OpNin:
		if len(values) == 0 {
			return constant(True), nil
		}
		return scalarCheck(path, func(x filter.Value) Truth { return in(x, values).Not() }), nil
	}
	return nil, &filter.UnsupportedOperatorError{Operator: string(op), Path: path.String()}
}

// in follows SQL IN: True on a match, Unknown if a NULL or incomparable
// member could have matched, False otherwise.
func in(x filter.Value, values []filter.Value) Truth {
	result := False
	for _, v := range values {
		if v.IsNull() {
			result = Unknown
			continue
		}
		c, ok := compare(x, v)
		if !ok {
			result = Unknown
			continue
		}
		if c == 0 {
			return True
		}
	}
	return result
}

func (compiler) Exists(path filter.Path, exists bool) (binder, error) {
	return func(rec arrow.Record) rowFunc {
		col := resolve(rec, path)
		return func(row int) Truth {
			return truth(col.isNull(row) != exists)
		}
	}, nil
}

func (compiler) Pattern(path filter.Path, op filter.Operator, pattern string) (binder, error) {
	var (
		re  *regexp.Regexp
		err error
	)
	switch op {
	case filter.OpRegex:
		re, err = regexp.Compile(pattern)
	case filter.OpLike, filter.OpNotLike:
		re, err = regexp.Compile(likePattern(pattern))
	default:
		return nil, &filter.UnsupportedOperatorError{Operator: string(op), Path: path.String()}
	}
	if err != nil {
		return nil, &filter.InvalidOperatorValueError{Operator: string(op), Path: path.String(), Reason: err.Error()}
	}

	return scalarCheck(path, func(x filter.Value) Truth {
		if x.Kind != filter.KindString {
			return Unknown
		}
		matched := re.MatchString(x.String)
		if op == filter.OpNotLike {
			return truth(!matched)
		}
		return truth(matched)
	}), nil
}

// likePattern converts a SQL LIKE pattern into an anchored RE2 expression.
// % matches any run of characters and _ matches one character.
func likePattern(like string) string {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for _, r := range like {
		switch r {
		case '%':
			b.WriteString(`.*`)
		case '_':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return b.String()
}

func (compiler) Logical(op filter.Operator, children []binder) (binder, error) {
	var (
		identity Truth
		combine  func(Truth, Truth) Truth
	)
	switch op {
	case filter.OpAnd:
		identity, combine = True, Truth.And
	case filter.OpOr:
		identity, combine = False, Truth.Or
	default:
		return nil, &filter.UnsupportedOperatorError{Operator: string(op)}
	}

	return func(rec arrow.Record) rowFunc {
		checks := make([]rowFunc, len(children))
		for i, c := range children {
			checks[i] = c(rec)
		}
		return func(row int) Truth {
			result := identity
			for _, check := range checks {
				result = combine(result, check(row))
			}
			return result
		}
	}, nil
}

func (compiler) Not(_ *filter.Not, child binder) (binder, error) {
	return func(rec arrow.Record) rowFunc {
		check := child(rec)
		return func(row int) Truth { return check(row).Not() }
	}, nil
}

// compare orders two values of the same kind. ok is false when the kinds
// differ or the values cannot be ordered.
func compare(a, b filter.Value) (int, bool) {
	if a.Kind != b.Kind {
		return 0, false
	}

	switch a.Kind {
	case filter.KindNumber:
		if x, ok := a.Int64(); ok {
			if y, ok := b.Int64(); ok {
				return cmp.Compare(x, y), true
			}
		}
		x, okA := a.Float64()
		y, okB := b.Float64()
		if !okA || !okB {
			return 0, false
		}
		return cmp.Compare(x, y), true
	case filter.KindString:
		return strings.Compare(a.String, b.String), true
	case filter.KindBool:
		return cmp.Compare(boolRank(a.Bool), boolRank(b.Bool)), true
	case filter.KindTime:
		return a.Time.Compare(b.Time), true
	}
	return 0, false
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
