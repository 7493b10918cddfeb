package sqlfilter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hugr-lab/vecfilter/filter"
)

// Options configures translation.
type Options struct {
	// ColumnMapping maps dotted field paths to target column names.
	// Fields not in the map use their own path.
	ColumnMapping map[string]string

	// ColumnExpressions maps dotted field paths to SQL expressions.
	// Takes precedence over ColumnMapping.
	// Use for computed columns or complex transformations.
	ColumnExpressions map[string]string

	// Logger receives rejected filters at debug level.
	// If nil, nothing is logged.
	Logger *slog.Logger
}

// Operators returns the operator set of the SQL translator: the defaults
// without $all, $elemMatch and $nor, plus $like and $notLike.
func Operators() filter.OperatorSet {
	return filter.DefaultOperators().
		Without(filter.OpAll, filter.OpElemMatch, filter.OpNor).
		With(filter.OpLike, filter.OpNotLike)
}

// Translator renders filter expressions as SQL WHERE fragments.
// A Translator holds no per-call state and is safe for concurrent use.
type Translator struct {
	opts   *Options
	ops    filter.OperatorSet
	logger *slog.Logger
}

// New creates a SQL translator.
// If opts is nil, default options are used.
func New(opts *Options) *Translator {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Translator{opts: opts, ops: Operators(), logger: logger}
}

// Operators returns the operators this translator accepts.
func (t *Translator) Operators() filter.OperatorSet { return t.ops }

// Translate validates expr and renders it as a boolean SQL expression, without
// the WHERE keyword. An empty filter returns the empty string.
func (t *Translator) Translate(expr any) (string, error) {
	n, err := filter.Parse(expr, t.ops)
	if err != nil {
		t.logger.Debug("sql filter rejected", "error", err)
		return "", err
	}
	return t.TranslateNode(n)
}

// TranslateNode renders an already parsed tree. A nil node returns the empty string.
func (t *Translator) TranslateNode(n filter.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	f, err := filter.WalkWithLogger[fragment](n, renderer{t}, t.logger)
	if err != nil {
		t.logger.Debug("sql filter rejected", "error", err)
		return "", err
	}
	return f.sql, nil
}

// precedence tracks how a rendered fragment binds so parents only add the
// parentheses that change meaning.
type precedence int

const (
	precAtom precedence = iota
	precAnd
	precOr
)

type fragment struct {
	sql  string
	prec precedence
}

func atom(sql string) fragment { return fragment{sql: sql} }

type renderer struct{ t *Translator }

// column resolves the SQL text for a field path.
func (r renderer) column(path filter.Path) string {
	key := path.String()

	// Check for expression mapping first (takes precedence)
	if expr, ok := r.t.opts.ColumnExpressions[key]; ok {
		return expr
	}

	// Check for name mapping
	if mapped, ok := r.t.opts.ColumnMapping[key]; ok {
		if p, err := filter.SplitPath(mapped); err == nil {
			path = p
		} else {
			return quoteIdentifier(mapped)
		}
	}

	return escapeField(path)
}

func (r renderer) Term(path filter.Path, op filter.Operator, v filter.Value) (fragment, error) {
	col := r.column(path)
	switch {
	case op == filter.OpEq && v.IsNull():
		return atom(col + " IS NULL"), nil
	case op == filter.OpNe && v.IsNull():
		return atom(col + " IS NOT NULL"), nil
	case op == filter.OpEq:
		return atom(col + " = " + formatValue(v)), nil
	case op == filter.OpNe:
		return atom(col + " != " + formatValue(v)), nil
	}
	return fragment{}, &filter.UnsupportedOperatorError{Operator: string(op), Path: path.String()}
}

func (r renderer) Range(path filter.Path, bounds []filter.Bound) (fragment, error) {
	col := r.column(path)
	parts := make([]string, 0, len(bounds))
	for _, b := range bounds {
		var cmp string
		switch b.Op {
		case filter.OpGt:
			cmp = " > "
		case filter.OpGte:
			cmp = " >= "
		case filter.OpLt:
			cmp = " < "
		case filter.OpLte:
			cmp = " <= "
		default:
			return fragment{}, &filter.UnsupportedOperatorError{Operator: string(b.Op), Path: path.String()}
		}
		parts = append(parts, col+cmp+formatValue(b.Value))
	}
	if len(parts) == 1 {
		return atom(parts[0]), nil
	}
	return fragment{sql: strings.Join(parts, " AND "), prec: precAnd}, nil
}

func (r renderer) Array(path filter.Path, op filter.Operator, values []filter.Value) (fragment, error) {
	switch op {
	case filter.OpIn:
		// Nothing equals a member of an empty set.
		if len(values) == 0 {
			return atom("false"), nil
		}
		return atom(r.column(path) + " IN (" + formatList(values) + ")"), nil
	case filter.OpNin:
		if len(values) == 0 {
			return atom("true"), nil
		}
		return atom(r.column(path) + " NOT IN (" + formatList(values) + ")"), nil
	}
	return fragment{}, &filter.UnsupportedOperatorError{Operator: string(op), Path: path.String()}
}

func (r renderer) Exists(path filter.Path, exists bool) (fragment, error) {
	if exists {
		return atom(r.column(path) + " IS NOT NULL"), nil
	}
	return atom(r.column(path) + " IS NULL"), nil
}

func (r renderer) Pattern(path filter.Path, op filter.Operator, pattern string) (fragment, error) {
	col := r.column(path)
	switch op {
	case filter.OpRegex:
		return atom(fmt.Sprintf("regexp_match(%s, %s)", col, quoteLiteral(pattern))), nil
	case filter.OpLike:
		return atom(col + " LIKE " + quoteLiteral(pattern)), nil
	case filter.OpNotLike:
		return atom(col + " NOT LIKE " + quoteLiteral(pattern)), nil
	}
	return fragment{}, &filter.UnsupportedOperatorError{Operator: string(op), Path: path.String()}
}

func (r renderer) Logical(op filter.Operator, children []fragment) (fragment, error) {
	switch op {
	case filter.OpAnd:
		if len(children) == 0 {
			return atom("true"), nil
		}
		if len(children) == 1 {
			return children[0], nil
		}
		parts := make([]string, len(children))
		for i, c := range children {
			parts[i] = c.sql
			if c.prec == precOr {
				parts[i] = "(" + c.sql + ")"
			}
		}
		return fragment{sql: strings.Join(parts, " AND "), prec: precAnd}, nil

	case filter.OpOr:
		if len(children) == 0 {
			return atom("false"), nil
		}
		if len(children) == 1 {
			return children[0], nil
		}
		parts := make([]string, len(children))
		for i, c := range children {
			parts[i] = c.sql
			if c.prec != precAtom {
				parts[i] = "(" + c.sql + ")"
			}
		}
		return fragment{sql: strings.Join(parts, " OR "), prec: precOr}, nil
	}
	return fragment{}, &filter.UnsupportedOperatorError{Operator: string(op)}
}

func (r renderer) Not(_ *filter.Not, child fragment) (fragment, error) {
	return atom("NOT (" + child.sql + ")"), nil
}
