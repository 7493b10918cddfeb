// Package vecfilter translates MongoDB-style metadata filters into query
// fragments for vector store backends.
//
// A filter is a tree of field conditions and logical operators:
//
//	{"category": "fruit", "price": {"$gte": 1, "$lt": 10}, "$or": [{"tags": ["new"]}, {"stock": {"$gt": 0}}]}
//
// The package is a thin facade over the backend packages:
//
//   - [github.com/hugr-lab/vecfilter/filter] parses and validates filters into a typed tree
//   - [github.com/hugr-lab/vecfilter/sqlfilter] renders SQL WHERE fragments
//   - [github.com/hugr-lab/vecfilter/dslfilter] renders search query DSL trees
//   - [github.com/hugr-lab/vecfilter/arrowfilter] evaluates filters over Arrow records
//
// # Quick Start
//
//	t, err := vecfilter.New(vecfilter.Config{Backend: vecfilter.BackendSQL})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Close()
//
//	out, err := t.TranslateBytes([]byte(`{"price": {"$lt": 10}}`), vecfilter.FormatJSON)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out) // price < 10
//
// # Payloads
//
// Filters can be supplied as Go values or decoded from JSON, BSON or
// MessagePack. Decoding keeps object key order so output is stable.
// Payloads compressed with ZStandard are detected by their frame header and
// decompressed transparently.
//
// # Errors
//
// Every rejected filter returns an error wrapping filter.ErrInvalidFilter.
// Use errors.As with the typed errors in the filter package for details:
//
//	var unsupported *filter.UnsupportedOperatorError
//	if errors.As(err, &unsupported) {
//	    log.Printf("operator %s not supported", unsupported.Operator)
//	}
//
// Configuration errors wrap ErrInvalidConfig.
//
// # Thread Safety
//
// Translators keep no per-call state and may be shared between goroutines.
package vecfilter
