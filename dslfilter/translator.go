package dslfilter

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/hugr-lab/vecfilter/filter"
)

const (
	// DefaultFieldPrefix is prepended to every field path.
	DefaultFieldPrefix = "metadata"

	// DefaultKeywordSuffix is appended to fields compared with string values.
	DefaultKeywordSuffix = ".keyword"
)

// Query is a node of the search query DSL. It marshals to JSON as is.
type Query = map[string]any

// Options configures translation.
type Options struct {
	// FieldPrefix is prepended to field paths ("metadata" -> "metadata.price").
	// Defaults to DefaultFieldPrefix.
	FieldPrefix string

	// DisablePrefix renders field paths without any prefix.
	DisablePrefix bool

	// KeywordSuffix is appended to fields compared with strings.
	// Defaults to DefaultKeywordSuffix.
	KeywordSuffix string

	// DisableKeyword turns the keyword suffix off, for indexes that map
	// string metadata as keyword fields directly.
	DisableKeyword bool

	// Logger receives rejected filters at debug level.
	// If nil, nothing is logged.
	Logger *slog.Logger
}

// Operators returns the operator set of the DSL translator: the defaults
// without $elemMatch and $nor.
func Operators() filter.OperatorSet {
	return filter.DefaultOperators().Without(filter.OpElemMatch, filter.OpNor)
}

// Translator renders filter expressions as search query DSL trees.
// A Translator holds no per-call state and is safe for concurrent use.
type Translator struct {
	prefix  string
	keyword string
	ops     filter.OperatorSet
	logger  *slog.Logger
}

// New creates a DSL translator.
// If opts is nil, default options are used.
func New(opts *Options) *Translator {
	if opts == nil {
		opts = &Options{}
	}

	t := &Translator{
		prefix:  opts.FieldPrefix,
		keyword: opts.KeywordSuffix,
		ops:     Operators(),
		logger:  opts.Logger,
	}
	if t.prefix == "" {
		t.prefix = DefaultFieldPrefix
	}
	if opts.DisablePrefix {
		t.prefix = ""
	}
	if t.keyword == "" {
		t.keyword = DefaultKeywordSuffix
	}
	if opts.DisableKeyword {
		t.keyword = ""
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	return t
}

// Operators returns the operators this translator accepts.
func (t *Translator) Operators() filter.OperatorSet { return t.ops }

// Translate validates expr and renders it as a query tree.
// An empty filter returns nil.
func (t *Translator) Translate(expr any) (Query, error) {
	n, err := filter.Parse(expr, t.ops)
	if err != nil {
		t.logger.Debug("dsl filter rejected", "error", err)
		return nil, err
	}
	return t.TranslateNode(n)
}

// TranslateNode renders an already parsed tree. A nil node returns nil.
func (t *Translator) TranslateNode(n filter.Node) (Query, error) {
	if n == nil {
		return nil, nil
	}
	q, err := filter.WalkWithLogger[Query](n, renderer{t}, t.logger)
	if err != nil {
		t.logger.Debug("dsl filter rejected", "error", err)
		return nil, err
	}
	return q, nil
}

// SearchBody wraps a query as the body of a search request.
// A nil query matches all documents.
func SearchBody(q Query) Query {
	if q == nil {
		q = matchAll()
	}
	return Query{"query": q}
}

type renderer struct{ t *Translator }

// field returns the prefixed field name.
func (r renderer) field(path filter.Path) string {
	if r.t.prefix == "" {
		return path.String()
	}
	return r.t.prefix + "." + path.String()
}

// keywordField returns the field name with the keyword suffix when every
// value is a string. An empty list counts as a string list.
func (r renderer) keywordField(path filter.Path, values ...filter.Value) string {
	f := r.field(path)
	if r.t.keyword == "" {
		return f
	}
	for _, v := range values {
		if v.Kind != filter.KindString {
			return f
		}
	}
	return f + r.t.keyword
}

func (r renderer) Term(path filter.Path, op filter.Operator, v filter.Value) (Query, error) {
	switch {
	case op == filter.OpEq && v.IsNull():
		return mustNot(exists(r.field(path))), nil
	case op == filter.OpNe && v.IsNull():
		return exists(r.field(path)), nil
	case op == filter.OpEq:
		return term(r.keywordField(path, v), v), nil
	case op == filter.OpNe:
		return mustNot(term(r.keywordField(path, v), v)), nil
	}
	return nil, &filter.UnsupportedOperatorError{Operator: string(op), Path: path.String()}
}

func (r renderer) Range(path filter.Path, bounds []filter.Bound) (Query, error) {
	values := make([]filter.Value, len(bounds))
	limits := make(map[string]any, len(bounds))
	for i, b := range bounds {
		switch b.Op {
		case filter.OpGt, filter.OpGte, filter.OpLt, filter.OpLte:
		default:
			return nil, &filter.UnsupportedOperatorError{Operator: string(b.Op), Path: path.String()}
		}
		limits[strings.TrimPrefix(string(b.Op), "$")] = b.Value.Interface()
		values[i] = b.Value
	}
	return Query{"range": Query{r.keywordField(path, values...): limits}}, nil
}

func (r renderer) Array(path filter.Path, op filter.Operator, values []filter.Value) (Query, error) {
	for i, v := range values {
		if v.IsNull() {
			return nil, &filter.InvalidOperatorValueError{
				Operator: string(op),
				Path:     path.String(),
				Reason:   "element " + strconv.Itoa(i) + ": null cannot be matched by a terms query",
			}
		}
	}

	f := r.keywordField(path, values...)
	switch op {
	case filter.OpIn:
		// An empty terms query matches nothing.
		return terms(f, values), nil
	case filter.OpNin:
		if len(values) == 0 {
			return matchAll(), nil
		}
		return mustNot(terms(f, values)), nil
	case filter.OpAll:
		if len(values) == 0 {
			return mustNot(matchAll()), nil
		}
		must := make([]any, len(values))
		for i, v := range values {
			must[i] = term(f, v)
		}
		return Query{"bool": Query{"must": must}}, nil
	}
	return nil, &filter.UnsupportedOperatorError{Operator: string(op), Path: path.String()}
}

func (r renderer) Exists(path filter.Path, present bool) (Query, error) {
	if present {
		return exists(r.field(path)), nil
	}
	return mustNot(exists(r.field(path))), nil
}

func (r renderer) Pattern(path filter.Path, op filter.Operator, pattern string) (Query, error) {
	if op != filter.OpRegex {
		return nil, &filter.UnsupportedOperatorError{Operator: string(op), Path: path.String()}
	}

	f := r.keywordField(path, filter.StringValue(pattern))
	if w, ok := wildcardPattern(pattern); ok {
		return Query{"wildcard": Query{f: w}}, nil
	}
	return Query{"regexp": Query{f: strings.ReplaceAll(pattern, `\`, `\\`)}}, nil
}

func (r renderer) Logical(op filter.Operator, children []Query) (Query, error) {
	switch op {
	case filter.OpAnd:
		switch len(children) {
		case 0:
			return matchAll(), nil
		case 1:
			return children[0], nil
		}
		return Query{"bool": Query{"must": queries(children)}}, nil
	case filter.OpOr:
		switch len(children) {
		case 0:
			return mustNot(matchAll()), nil
		case 1:
			return children[0], nil
		}
		return Query{"bool": Query{"should": queries(children)}}, nil
	}
	return nil, &filter.UnsupportedOperatorError{Operator: string(op)}
}

// Not negates child. A negated null check collapses to the opposite
// exists query instead of a double must_not.
func (r renderer) Not(node *filter.Not, child Query) (Query, error) {
	if f, ok := node.Child.(*filter.Field); ok {
		switch op, _ := f.IsNullCheck(); op {
		case filter.OpEq:
			return exists(r.field(f.Path)), nil
		case filter.OpNe:
			return mustNot(exists(r.field(f.Path))), nil
		}
	}
	return mustNot(child), nil
}

// wildcardPattern converts an anchored regex with a literal body into a
// wildcard pattern: ^abc -> abc*, abc$ -> *abc, ^abc$ -> abc.
func wildcardPattern(pattern string) (string, bool) {
	prefix := strings.HasPrefix(pattern, "^")
	suffix := strings.HasSuffix(pattern, "$") && !strings.HasSuffix(pattern, `\$`)
	if !prefix && !suffix {
		return "", false
	}

	body := pattern
	if prefix {
		body = body[1:]
	}
	if suffix && len(body) > 0 {
		body = body[:len(body)-1]
	}
	if strings.ContainsAny(body, `.*+?()[]{}|\^$`) {
		return "", false
	}

	switch {
	case prefix && suffix:
		return body, true
	case prefix:
		return body + "*", true
	default:
		return "*" + body, true
	}
}

func term(field string, v filter.Value) Query {
	return Query{"term": Query{field: v.Interface()}}
}

func terms(field string, values []filter.Value) Query {
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v.Interface()
	}
	return Query{"terms": Query{field: list}}
}

func exists(field string) Query {
	return Query{"exists": Query{"field": field}}
}

func matchAll() Query {
	return Query{"match_all": Query{}}
}

func mustNot(q Query) Query {
	return Query{"bool": Query{"must_not": []any{q}}}
}

func queries(children []Query) []any {
	out := make([]any, len(children))
	for i, c := range children {
		out[i] = c
	}
	return out
}
