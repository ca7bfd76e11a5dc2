package schema

// Schema represents a parsed database schema definition.
type Schema struct {
	Version int               `json:"version"`
	Tables  map[string]*Table `json:"tables"`
}

// Table represents a single table declaration.
type Table struct {
	Name       string    `json:"name"`
	Columns    []*Column `json:"columns"`
	Indexes    []*Index  `json:"indexes"`
	PrimaryKey []string  `json:"primary_key"`
}

// Column represents a column declaration inside a create_table block.
type Column struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`     // One of the fixed declaration vocabulary (string, integer, ...)
	Nullable   bool           `json:"nullable"` // false when declared with null: false
	Default    string         `json:"default,omitempty"`
	PrimaryKey bool           `json:"primary_key"`
	ForeignKey *ForeignKeyRef `json:"foreign_key,omitempty"`
}

// ForeignKeyRef records the conventional target of a foreign-key column.
// The target is derived from naming convention and is not guaranteed to exist.
type ForeignKeyRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Index represents an index declaration (t.index or add_index).
type Index struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

// ColumnRubyTypes maps schema column types to the inferred runtime type name.
// Used by the type inference engine for schema-backed attribute lookups.
var ColumnRubyTypes = map[string]string{
	"string":   "String",
	"text":     "String",
	"integer":  "Integer",
	"bigint":   "Integer",
	"float":    "Float",
	"decimal":  "BigDecimal",
	"datetime": "Time",
	"date":     "Date",
	"time":     "Time",
	"boolean":  "Boolean",
	"binary":   "String",
	"json":     "Hash",
	"jsonb":    "Hash",
	"uuid":     "String",
}

// Table returns the named table, or nil if the schema does not declare it.
func (s *Schema) Table(name string) *Table {
	if s == nil {
		return nil
	}
	return s.Tables[name]
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	if t == nil {
		return nil
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}
