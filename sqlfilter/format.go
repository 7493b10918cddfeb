package sqlfilter

import (
	"strings"

	"github.com/hugr-lab/vecfilter/filter"
)

// escapeString escapes single quotes in a string value for SQL.
func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quoteLiteral returns a SQL string literal with proper escaping.
func quoteLiteral(s string) string {
	return "'" + escapeString(s) + "'"
}

// formatValue renders a scalar as a SQL literal.
func formatValue(v filter.Value) string {
	switch v.Kind {
	case filter.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case filter.KindNumber:
		return v.Number.String()
	case filter.KindString:
		return quoteLiteral(v.String)
	case filter.KindTime:
		return "timestamp " + quoteLiteral(v.Time.Format(filter.TimeLayout))
	default:
		return "NULL"
	}
}

// formatList renders values as a comma-separated IN list body.
func formatList(values []filter.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatValue(v)
	}
	return strings.Join(parts, ", ")
}

// escapeField renders a dotted path, back-quoting each segment that needs it.
func escapeField(path filter.Path) string {
	parts := make([]string, len(path))
	for i, segment := range path {
		parts[i] = quoteIdentifier(segment)
	}
	return strings.Join(parts, ".")
}

// quoteIdentifier returns a back-quoted identifier if needed.
func quoteIdentifier(name string) string {
	if needsQuoting(name) {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return name
}

// needsQuoting returns true if the identifier needs quoting: it is not a plain
// identifier (whitespace, hyphens and other punctuation), it is written in
// upper case, or it is a reserved word.
func needsQuoting(name string) bool {
	if len(name) == 0 {
		return true
	}

	// Check first character (must be letter or underscore)
	c := name[0]
	if !isLetter(c) && c != '_' {
		return true
	}

	// Check remaining characters (letters, digits, or underscore)
	for i := 1; i < len(name); i++ {
		c = name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return true
		}
	}

	if isUpper(name) {
		return true
	}

	return isReserved(name)
}

// isUpper reports whether name has letters and none of them are lower case.
func isUpper(name string) bool {
	hasLetter := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			return false
		}
		if c >= 'A' && c <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func isReserved(name string) bool {
	switch strings.ToUpper(name) {
	case "SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "NULL", "TRUE", "FALSE",
		"INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER", "TABLE", "INDEX",
		"JOIN", "LEFT", "RIGHT", "INNER", "OUTER", "ON", "AS", "IN", "IS", "LIKE",
		"BETWEEN", "EXISTS", "CASE", "WHEN", "THEN", "ELSE", "END", "ORDER", "BY",
		"GROUP", "HAVING", "LIMIT", "OFFSET", "UNION", "EXCEPT", "INTERSECT",
		"ALL", "DISTINCT", "VALUES", "SET", "INTO", "PRIMARY", "KEY", "FOREIGN",
		"REFERENCES", "CONSTRAINT", "DEFAULT", "CHECK", "UNIQUE", "ASC", "DESC",
		"NULLS", "FIRST", "LAST", "CAST", "INTERVAL", "DATE", "TIME", "TIMESTAMP",
		"REGEXP", "ANY", "SOME", "WITH", "USING", "LATERAL", "CROSS", "FULL":
		return true
	}
	return false
}

// isLetter returns true if c is an ASCII letter.
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isDigit returns true if c is an ASCII digit.
func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
