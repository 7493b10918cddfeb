package sqlfilter

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Where translates expr into a goqu literal expression wrapped in parentheses,
// so it composes with other conditions of a dataset. An empty filter returns nil.
func (t *Translator) Where(expr any) (exp.Expression, error) {
	sql, err := t.Translate(expr)
	if err != nil || sql == "" {
		return nil, err
	}
	return goqu.L("(" + sql + ")"), nil
}

// Apply adds the translated filter to the WHERE clause of ds.
// An empty filter returns ds unchanged.
//
// Example:
//
//	ds := goqu.Dialect("postgres").From("documents").Select("id", "content")
//	ds, err := tr.Apply(ds, map[string]any{"category": "news"})
//	query, _, err := ds.ToSQL()
func (t *Translator) Apply(ds *goqu.SelectDataset, expr any) (*goqu.SelectDataset, error) {
	where, err := t.Where(expr)
	if err != nil {
		return nil, err
	}
	if where == nil {
		return ds, nil
	}
	return ds.Where(where), nil
}
