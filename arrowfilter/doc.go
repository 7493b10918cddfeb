// Package arrowfilter evaluates filter expressions directly against Arrow
// records, without a database.
//
// A Predicate is compiled once and can be applied to any number of records:
//
//	p, err := arrowfilter.Compile(filter.Object{
//		{Key: "price", Value: filter.Object{{Key: "$lt", Value: 10}}},
//	})
//	if err != nil {
//		return err
//	}
//	rows := p.Filter(rec)
//
// Evaluation follows SQL three-valued logic so that the rows selected match
// the rows a database returns for the WHERE clause produced by sqlfilter.
// Comparisons with NULL are Unknown, NOT Unknown is Unknown, and only rows
// that evaluate to True are selected. Nested field paths descend into struct
// columns. Columns missing from the record read as NULL.
package arrowfilter
