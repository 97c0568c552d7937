// Package ddl defines a small, backend-agnostic model for the warehouse
// tables and renders CREATE/DROP statements through a Dialect.
//
// Backends (internal/storage/*) supply the Dialect: identifier quoting and
// the mapping from logical types to SQL types.
package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders a CREATE TABLE statement.
//
// Rules:
//
//   - t.Name must be non-empty.
//   - Each column must have a non-empty Name and a Type the dialect maps.
//   - A column is rendered as `<name> <type> [NOT NULL]`.
//   - Columns with PrimaryKey == true are collected into a trailing
//     PRIMARY KEY (...) clause.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "", fmt.Errorf("%s ddl: table name must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string

	for _, c := range t.Columns {
		cn := strings.TrimSpace(c.Name)
		if cn == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, name)
		}
		typ := strings.TrimSpace(d.MapType(c.Type))
		if typ == "" {
			return "", fmt.Errorf("%s ddl: column %s has unmapped type %q", d.Name, cn, c.Type)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(cn))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.QuoteIdent(cn))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		d.QuoteIdent(name),
		strings.Join(cols, ",\n  "),
	), nil
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS for t.
func BuildDropTableSQL(t TableDef, d Dialect) (string, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "", fmt.Errorf("%s ddl: table name must not be empty", d.Name)
	}
	return "DROP TABLE IF EXISTS " + d.QuoteIdent(name), nil
}

// BuildInsertSQL renders a multi-row INSERT with rows*len(columns)
// placeholders. placeholder(i) returns the i-th (1-based) bind marker.
func BuildInsertSQL(table string, columns []string, rows int, d Dialect, placeholder func(int) string) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(d.QuoteIdent(table))
	sb.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.QuoteIdent(c))
	}
	sb.WriteString(") VALUES ")
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := range columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(placeholder(n))
			n++
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// QuestionMark is the placeholder style of MySQL and SQLite.
func QuestionMark(int) string { return "?" }

// DoubleQuote quotes an identifier with ANSI double quotes, doubling any
// embedded quote.
func DoubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
