package ddl

// Type is a logical column type. Backends map it to a concrete SQL (or
// Arrow) type.
type Type string

const (
	TypeInt   Type = "int"
	TypeFloat Type = "float"
	TypeText  Type = "text"
)

// ColumnDef describes a single column.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - Type: logical type, mapped by the Dialect
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
type ColumnDef struct {
	Name       string
	Type       Type
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds a table name and its ordered columns.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// ColumnNames returns the column names in declaration order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Dialect captures the per-backend differences the builders need.
type Dialect struct {
	// Name is used in error messages, e.g. "mysql".
	Name string

	// QuoteIdent quotes a single identifier.
	QuoteIdent func(string) string

	// MapType returns the SQL type for a logical type.
	MapType func(Type) string
}
