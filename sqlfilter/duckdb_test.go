package sqlfilter

import (
	"database/sql"
	"slices"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
)

// openDuckDB opens an in-memory DuckDB database with a small items table.
func openDuckDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("DuckDB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	stmts := []string{
		`CREATE TABLE items (
			id INTEGER,
			name VARCHAR,
			price DOUBLE,
			active BOOLEAN,
			category VARCHAR,
			meta STRUCT(rating INTEGER)
		)`,
		`INSERT INTO items VALUES
			(1, 'apple', 1.5, true, 'fruit', {'rating': 5}),
			(2, 'banana', 0.5, false, 'fruit', {'rating': 3}),
			(3, 'carrot', 2.0, true, 'vegetable', {'rating': NULL}),
			(4, 'O''Reilly book', 40.0, NULL, 'book', {'rating': 4}),
			(5, NULL, 100.0, true, NULL, NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}

	return db
}

func selectIDs(t *testing.T, db *sql.DB, where string) []int {
	t.Helper()

	query := "SELECT id FROM items"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"

	rows, err := db.Query(query)
	if err != nil {
		t.Fatalf("query %q failed: %v", query, err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows failed: %v", err)
	}
	return ids
}

func TestDuckDBSemantics(t *testing.T) {
	db := openDuckDB(t)
	tr := New(nil)

	tests := []struct {
		name     string
		expr     any
		expected []int
	}{
		{"no filter", nil, []int{1, 2, 3, 4, 5}},
		{"equality", obj("category", "fruit"), []int{1, 2}},
		{"range", obj("price", obj("$gt", 1, "$lte", 40)), []int{1, 3, 4}},
		{"array", obj("category", []any{"fruit", "book"}), []int{1, 2, 4}},
		{"empty array", obj("category", []any{}), []int{}},
		{"empty nin", obj("category", obj("$nin", []any{})), []int{1, 2, 3, 4, 5}},
		{"nin", obj("category", obj("$nin", []any{"fruit"})), []int{3, 4}},
		{"empty and", obj("$and", []any{}), []int{1, 2, 3, 4, 5}},
		{"empty or", obj("$or", []any{}), []int{}},
		{"quoted string", obj("name", "O'Reilly book"), []int{4}},
		{"null", obj("active", nil), []int{4}},
		{"boolean", obj("active", false), []int{2}},
		{"not exists", obj("category", obj("$exists", false)), []int{5}},
		{"ne", obj("category", obj("$ne", "fruit")), []int{3, 4}},
		{"or", obj("$or", []any{obj("category", "book"), obj("price", obj("$lt", 1))}), []int{2, 4}},
		{"and inside or", obj("$or", []any{obj("category", "fruit", "active", true), obj("price", obj("$gte", 100))}), []int{1, 5}},
		{"or inside and", obj("$and", []any{obj("$or", []any{obj("category", "fruit"), obj("category", "book")}), obj("price", obj("$gt", 1))}), []int{1, 4}},
		{"not", obj("$not", obj("category", "fruit")), []int{3, 4}},
		{"struct field", obj("meta", obj("rating", obj("$gte", 4))), []int{1, 4}},
		{"dotted struct field", obj("meta.rating", obj("$gte", 4)), []int{1, 4}},
		{"like", obj("name", obj("$like", "%an%")), []int{2}},
		{"not like", obj("name", obj("$notLike", "%an%")), []int{1, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, err := tr.Translate(tt.expr)
			if err != nil {
				t.Fatalf("Translate failed: %v", err)
			}
			got := selectIDs(t, db, where)
			if !slices.Equal(got, tt.expected) {
				t.Errorf("WHERE %s: expected %v, got %v", where, tt.expected, got)
			}
		})
	}
}

// TestDuckDBConjunction checks that {$and: [A, B]} selects the intersection
// of the rows selected by A and by B.
func TestDuckDBConjunction(t *testing.T) {
	db := openDuckDB(t)
	tr := New(nil)

	pairs := [][2]any{
		{obj("category", "fruit"), obj("price", obj("$gt", 1))},
		{obj("$or", []any{obj("active", true), obj("category", "book")}), obj("price", obj("$lt", 50))},
		{obj("category", []any{}), obj("active", true)},
		{obj("$and", []any{}), obj("meta.rating", obj("$lt", 5))},
	}

	for _, p := range pairs {
		a, err := tr.Translate(p[0])
		if err != nil {
			t.Fatal(err)
		}
		b, err := tr.Translate(p[1])
		if err != nil {
			t.Fatal(err)
		}
		both, err := tr.Translate(obj("$and", []any{p[0], p[1]}))
		if err != nil {
			t.Fatal(err)
		}

		idsA := selectIDs(t, db, a)
		idsB := selectIDs(t, db, b)
		expected := []int{}
		for _, id := range idsA {
			if slices.Contains(idsB, id) {
				expected = append(expected, id)
			}
		}

		if got := selectIDs(t, db, both); !slices.Equal(got, expected) {
			t.Errorf("WHERE %s: expected %v, got %v", both, expected, got)
		}
	}
}
