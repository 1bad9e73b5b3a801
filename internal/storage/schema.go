// To keep the loader generic, the TableSpec types need to live in a place both
// loader and backend packages can import without circular deps.
package storage

// TableSpec describes one destination table. Backends translate it to their
// own DDL dialect (serial vs identity vs auto_increment, etc).
type TableSpec struct {
	Name        string
	PrimaryKey  *PrimaryKeySpec
	Columns     []ColumnSpec
	Constraints []ConstraintSpec
}

type PrimaryKeySpec struct {
	Name string
	Type string // "serial" is translated per backend
}

type ColumnSpec struct {
	Name       string
	Type       string
	References string // "table(column)" foreign key target
	Nullable   bool
	Default    string // literal SQL default, e.g. "'Pending'"
}

type ConstraintSpec struct {
	Kind    string // "unique"
	Columns []string
}
