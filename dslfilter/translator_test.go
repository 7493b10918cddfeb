package dslfilter

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/vecfilter/filter"
)

// obj builds an ordered filter object from alternating keys and values.
func obj(kv ...any) filter.Object {
	o := make(filter.Object, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		o = append(o, filter.Member{Key: kv[i].(string), Value: kv[i+1]})
	}
	return o
}

func translateJSON(t *testing.T, tr *Translator, expr any) string {
	t.Helper()
	q, err := tr.Translate(expr)
	require.NoError(t, err)
	data, err := json.Marshal(q)
	require.NoError(t, err)
	return string(data)
}

func TestTranslateEmpty(t *testing.T) {
	tr := New(nil)
	for _, expr := range []any{nil, filter.Object{}, map[string]any{}} {
		q, err := tr.Translate(expr)
		require.NoError(t, err)
		assert.Nil(t, q)
	}
}

func TestTranslate(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		expr     any
		expected string
	}{
		// Literal scenarios
		{
			name:     "range folding",
			expr:     obj("price", obj("$gt", 70, "$lte", 100)),
			expected: `{"range":{"metadata.price":{"gt":70,"lte":100}}}`,
		},
		{
			name:     "string array",
			expr:     obj("tags", []any{"a", "b"}),
			expected: `{"terms":{"metadata.tags.keyword":["a","b"]}}`,
		},
		{
			name:     "empty array",
			expr:     obj("tags", []any{}),
			expected: `{"terms":{"metadata.tags.keyword":[]}}`,
		},
		{
			name:     "or",
			expr:     obj("$or", []any{obj("a", 1), obj("b", 2)}),
			expected: `{"bool":{"should":[{"term":{"metadata.a":1}},{"term":{"metadata.b":2}}]}}`,
		},
		{
			name:     "empty and",
			expr:     obj("$and", []any{}),
			expected: `{"match_all":{}}`,
		},

		// Terms
		{
			name:     "string equality",
			expr:     obj("category", "news"),
			expected: `{"term":{"metadata.category.keyword":"news"}}`,
		},
		{
			name:     "number equality",
			expr:     obj("count", 3),
			expected: `{"term":{"metadata.count":3}}`,
		},
		{
			name:     "boolean equality",
			expr:     obj("active", true),
			expected: `{"term":{"metadata.active":true}}`,
		},
		{
			name:     "date equality",
			expr:     obj("at", ts),
			expected: `{"term":{"metadata.at":"2024-01-02T03:04:05.000Z"}}`,
		},
		{
			name:     "ne",
			expr:     obj("category", obj("$ne", "news")),
			expected: `{"bool":{"must_not":[{"term":{"metadata.category.keyword":"news"}}]}}`,
		},
		{
			name:     "null",
			expr:     obj("deleted", nil),
			expected: `{"bool":{"must_not":[{"exists":{"field":"metadata.deleted"}}]}}`,
		},
		{
			name:     "ne null",
			expr:     obj("deleted", obj("$ne", nil)),
			expected: `{"exists":{"field":"metadata.deleted"}}`,
		},

		// Ranges
		{
			name:     "date range",
			expr:     obj("at", obj("$gte", ts)),
			expected: `{"range":{"metadata.at":{"gte":"2024-01-02T03:04:05.000Z"}}}`,
		},
		{
			name:     "string range",
			expr:     obj("name", obj("$gte", "a", "$lt", "n")),
			expected: `{"range":{"metadata.name.keyword":{"gte":"a","lt":"n"}}}`,
		},
		{
			name: "range with other conditions",
			expr: obj("price", obj("$ne", 5, "$gt", 1, "$lt", 10)),
			expected: `{"bool":{"must":[
				{"bool":{"must_not":[{"term":{"metadata.price":5}}]}},
				{"range":{"metadata.price":{"gt":1,"lt":10}}}
			]}}`,
		},

		// Arrays
		{
			name:     "number array",
			expr:     obj("n", []any{1, 2}),
			expected: `{"terms":{"metadata.n":[1,2]}}`,
		},
		{
			name:     "mixed array",
			expr:     obj("n", []any{1, "x"}),
			expected: `{"terms":{"metadata.n":[1,"x"]}}`,
		},
		{
			name:     "nin",
			expr:     obj("tags", obj("$nin", []any{"x"})),
			expected: `{"bool":{"must_not":[{"terms":{"metadata.tags.keyword":["x"]}}]}}`,
		},
		{
			name:     "empty nin",
			expr:     obj("tags", obj("$nin", []any{})),
			expected: `{"match_all":{}}`,
		},
		{
			name:     "all",
			expr:     obj("tags", obj("$all", []any{"a", "b"})),
			expected: `{"bool":{"must":[{"term":{"metadata.tags.keyword":"a"}},{"term":{"metadata.tags.keyword":"b"}}]}}`,
		},
		{
			name:     "empty all",
			expr:     obj("tags", obj("$all", []any{})),
			expected: `{"bool":{"must_not":[{"match_all":{}}]}}`,
		},

		// Exists
		{
			name:     "exists",
			expr:     obj("a", obj("$exists", true)),
			expected: `{"exists":{"field":"metadata.a"}}`,
		},
		{
			name:     "not exists",
			expr:     obj("a", obj("$exists", false)),
			expected: `{"bool":{"must_not":[{"exists":{"field":"metadata.a"}}]}}`,
		},

		// Regex
		{
			name:     "prefix regex",
			expr:     obj("name", obj("$regex", "^jo")),
			expected: `{"wildcard":{"metadata.name.keyword":"jo*"}}`,
		},
		{
			name:     "suffix regex",
			expr:     obj("name", obj("$regex", "son$")),
			expected: `{"wildcard":{"metadata.name.keyword":"*son"}}`,
		},
		{
			name:     "exact regex",
			expr:     obj("name", obj("$regex", "^john$")),
			expected: `{"wildcard":{"metadata.name.keyword":"john"}}`,
		},
		{
			name:     "unanchored regex",
			expr:     obj("name", obj("$regex", "jo.n")),
			expected: `{"regexp":{"metadata.name.keyword":"jo.n"}}`,
		},
		{
			name:     "anchored regex with metacharacters",
			expr:     obj("name", obj("$regex", "^jo.n")),
			expected: `{"regexp":{"metadata.name.keyword":"^jo.n"}}`,
		},
		{
			name:     "regex backslashes",
			expr:     obj("path", obj("$regex", `a\.b`)),
			expected: `{"regexp":{"metadata.path.keyword":"a\\\\.b"}}`,
		},

		// Logical
		{
			name:     "implicit and",
			expr:     obj("a", 1, "b", "x"),
			expected: `{"bool":{"must":[{"term":{"metadata.a":1}},{"term":{"metadata.b.keyword":"x"}}]}}`,
		},
		{
			name:     "empty or",
			expr:     obj("$or", []any{}),
			expected: `{"bool":{"must_not":[{"match_all":{}}]}}`,
		},
		{
			name:     "not",
			expr:     obj("$not", obj("a", 1)),
			expected: `{"bool":{"must_not":[{"term":{"metadata.a":1}}]}}`,
		},
		{
			name:     "field not",
			expr:     obj("price", obj("$not", obj("$gt", 5))),
			expected: `{"bool":{"must_not":[{"range":{"metadata.price":{"gt":5}}}]}}`,
		},
		{
			name: "nested levels",
			expr: obj("user", obj("name", "x", "age", obj("$gte", 18))),
			expected: `{"bool":{"must":[
				{"term":{"metadata.user.name.keyword":"x"}},
				{"range":{"metadata.user.age":{"gte":18}}}
			]}}`,
		},
		{
			name: "mixed and keeps suffix per field",
			expr: obj("$and", []any{obj("category", "news"), obj("views", obj("$gt", 10)), obj("published", true)}),
			expected: `{"bool":{"must":[
				{"term":{"metadata.category.keyword":"news"}},
				{"range":{"metadata.views":{"gt":10}}},
				{"term":{"metadata.published":true}}
			]}}`,
		},
	}

	tr := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.expected, translateJSON(t, tr, tt.expr))
		})
	}
}

func TestNotNullCollapsing(t *testing.T) {
	tr := New(nil)
	existsQuery := `{"exists":{"field":"metadata.deleted"}}`
	missingQuery := `{"bool":{"must_not":[{"exists":{"field":"metadata.deleted"}}]}}`

	assert.JSONEq(t, existsQuery, translateJSON(t, tr, obj("$not", obj("deleted", obj("$eq", nil)))))
	assert.JSONEq(t, existsQuery, translateJSON(t, tr, obj("$not", obj("deleted", nil))))
	assert.JSONEq(t, existsQuery, translateJSON(t, tr, obj("deleted", obj("$not", obj("$eq", nil)))))
	assert.JSONEq(t, missingQuery, translateJSON(t, tr, obj("$not", obj("deleted", obj("$ne", nil)))))
}

func TestNestedAndDottedIdentical(t *testing.T) {
	tr := New(nil)
	nested := translateJSON(t, tr, map[string]any{
		"user": map[string]any{"profile": map[string]any{"age": map[string]any{"$gt": 25}}},
	})
	dotted := translateJSON(t, tr, map[string]any{"user.profile.age": map[string]any{"$gt": 25}})

	assert.Equal(t, nested, dotted)
	assert.JSONEq(t, `{"range":{"metadata.user.profile.age":{"gt":25}}}`, dotted)
}

func TestDeterministicOutput(t *testing.T) {
	tr := New(nil)
	expr := map[string]any{
		"b": map[string]any{"$in": []any{"x", "y"}},
		"a": map[string]any{"$gt": 1, "$lt": 3},
		"c": map[string]any{"$exists": true},
	}

	first := translateJSON(t, tr, expr)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, translateJSON(t, tr, expr))
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name     string
		opts     *Options
		expr     any
		expected string
	}{
		{
			name:     "custom prefix",
			opts:     &Options{FieldPrefix: "doc"},
			expr:     obj("a", "x"),
			expected: `{"term":{"doc.a.keyword":"x"}}`,
		},
		{
			name:     "no prefix",
			opts:     &Options{DisablePrefix: true},
			expr:     obj("a", "x"),
			expected: `{"term":{"a.keyword":"x"}}`,
		},
		{
			name:     "custom suffix",
			opts:     &Options{KeywordSuffix: ".raw"},
			expr:     obj("a", []any{"x"}),
			expected: `{"terms":{"metadata.a.raw":["x"]}}`,
		},
		{
			name:     "no keyword",
			opts:     &Options{DisableKeyword: true},
			expr:     obj("a", obj("$regex", "^x")),
			expected: `{"wildcard":{"metadata.a":"x*"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.expected, translateJSON(t, New(tt.opts), tt.expr))
		})
	}
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name   string
		expr   any
		target any
	}{
		{"empty not", obj("$not", filter.Object{}), new(*filter.EmptyLogicalOperandError)},
		{"nil not", obj("$not", nil), new(*filter.EmptyLogicalOperandError)},
		{"empty array not", obj("$not", []any{}), new(*filter.EmptyLogicalOperandError)},
		{"elemMatch", obj("a", obj("$elemMatch", obj("b", 1))), new(*filter.UnsupportedOperatorError)},
		{"like", obj("a", obj("$like", "x%")), new(*filter.UnsupportedOperatorError)},
		{"nor", obj("$nor", []any{obj("a", 1)}), new(*filter.UnsupportedOperatorError)},
		{"top-level", obj("$lt", 1), new(*filter.InvalidTopLevelOperatorError)},
		{"field name", obj("a.", 1), new(*filter.InvalidFieldNameError)},
		{"null in terms", obj("a", []any{"x", nil}), new(*filter.InvalidOperatorValueError)},
		{"in not array", obj("a", obj("$in", "x")), new(*filter.InvalidOperatorValueError)},
	}

	tr := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tr.Translate(tt.expr)
			require.Error(t, err)
			assert.Nil(t, q)
			assert.True(t, errors.Is(err, filter.ErrInvalidFilter))
			assert.True(t, errors.As(err, tt.target), "expected %T, got %T", tt.target, err)
		})
	}
}

func TestSearchBody(t *testing.T) {
	data, err := json.Marshal(SearchBody(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"match_all":{}}}`, string(data))

	q, err := New(nil).Translate(obj("a", 1))
	require.NoError(t, err)
	data, err = json.Marshal(SearchBody(q))
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"term":{"metadata.a":1}}}`, string(data))
}
