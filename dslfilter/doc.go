// Package dslfilter renders filter expressions as search engine query DSL
// trees (term, terms, range, bool, exists, regexp, wildcard, match_all).
//
// Fields are addressed under a metadata prefix, and fields compared with
// strings get a keyword suffix for exact matching:
//
//	tr := dslfilter.New(nil)
//	q, err := tr.Translate(map[string]any{"tags": []string{"a", "b"}})
//	// q == {"terms": {"metadata.tags.keyword": ["a", "b"]}}
//
//	body, _ := json.Marshal(dslfilter.SearchBody(q))
//
// Empty collections keep the identities of this backend: an empty $in is an
// empty terms query, an empty $nin or $and matches everything, and an empty
// $all or $or matches nothing. An empty $not is an error.
package dslfilter
