// Package sqlfilter renders filter expressions as SQL WHERE fragments.
//
// # Basic Usage
//
//	tr := sqlfilter.New(nil)
//	where, err := tr.Translate(map[string]any{
//	    "price": map[string]any{"$gt": 70, "$lte": 100},
//	})
//	// where == "price > 70 AND price <= 100"
//
//	if where != "" {
//	    query := "SELECT * FROM items WHERE " + where
//	}
//
// # Column Mapping
//
// Map filter field paths to storage column names, or replace them with
// SQL expressions:
//
//	tr := sqlfilter.New(&sqlfilter.Options{
//	    ColumnMapping: map[string]string{
//	        "user.id": "uid",
//	    },
//	    ColumnExpressions: map[string]string{
//	        "full_name": "CONCAT(first_name, ' ', last_name)",
//	    },
//	})
//
// # Rendering Rules
//
//   - null renders IS NULL / IS NOT NULL
//   - dates render as timestamp '2024-01-02T03:04:05.000Z'
//   - an empty $in renders false, an empty $nin renders true
//   - an empty $and renders true, an empty $or renders false
//   - $regex renders regexp_match(field, 'pattern')
//   - field segments with whitespace, punctuation, upper-case names and
//     reserved words are back-quoted
//
// $all, $elemMatch and $nor are not supported and fail with
// *filter.UnsupportedOperatorError.
package sqlfilter
