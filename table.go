package xdb

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"reflect"
	"slices"
)

// Column describes one column of a Table or Reader.
type Column struct {
	Name string
	Type reflect.Type // nil accepts values of any type
}

// Col declares a column holding the native type of tag.
func Col(name string, tag DbType) Column {
	t := ToNativeType(tag)
	if t == anyType {
		t = nil
	}
	return Column{Name: name, Type: t}
}

// DbType is the tag of the column's declared type.
func (c Column) DbType() DbType { return ToDbType(c.Type) }

// Table is an in-memory result set with a fixed column schema. Rows hold
// values of their column's declared type, or nil.
//
// A Table is safe for concurrent reads once it is no longer being appended to.
type Table struct {
	cols  []Column
	index columnIndex
	rows  []*Row
}

// NewTable returns an empty table with the given schema.
func NewTable(cols ...Column) *Table {
	cols = slices.Clone(cols)
	return &Table{cols: cols, index: newColumnIndex(cols)}
}

func (t *Table) Columns() []Column { return slices.Clone(t.cols) }

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index.find(name); ok {
		return i
	}
	return -1
}

func (t *Table) Len() int { return len(t.rows) }

// Row returns the i-th row; it panics when i is out of range.
func (t *Table) Row(i int) *Row { return t.rows[i] }

// All iterates the rows in insertion order.
func (t *Table) All() iter.Seq2[int, *Row] { return slices.All(t.rows) }

// AddRow appends a row. values must match the schema positionally; each
// non-null value is converted to its column's type the way ChangeType does.
func (t *Table) AddRow(values ...any) (*Row, error) {
	if len(values) != len(t.cols) {
		return nil, fmt.Errorf("%w: row has %d values, table has %d columns",
			ErrArgumentInvalid, len(values), len(t.cols))
	}
	vals := make([]any, len(values))
	for i, v := range values {
		v = normalize(v)
		if v == nil {
			continue
		}
		out, ok := changeType(v, t.cols[i].Type)
		if !ok {
			return nil, fmt.Errorf("%w: column %q: %T to %s",
				ErrConversion, t.cols[i].Name, v, t.cols[i].Type)
		}
		vals[i] = out
	}
	r := &Row{table: t, values: vals}
	t.rows = append(t.rows, r)
	return r, nil
}

// Row is one row of a Table. It implements FieldSource.
type Row struct {
	table  *Table
	values []any
}

func (r *Row) Field(name string) (Field, bool) {
	if r == nil || r.table == nil {
		return Field{}, false
	}
	i, ok := r.table.index.find(name)
	if !ok {
		return Field{}, false
	}
	c := r.table.cols[i]
	return Field{Name: c.Name, Type: c.Type, Value: r.values[i]}, true
}

// Value returns the raw stored value of the named column.
func (r *Row) Value(name string) (any, bool) {
	f, ok := r.Field(name)
	return f.Value, ok
}

// IsNull reports whether the named column is null. Missing columns are not.
func (r *Row) IsNull(name string) bool {
	f, ok := r.Field(name)
	return ok && f.IsNull()
}

func (r *Row) Values() []any { return slices.Clone(r.values) }

// ReadTable buffers every remaining row of rows. Column types come from the
// driver's scan types, reduced to the native type of their tag. ReadTable
// does not close rows.
func ReadTable(rows *sql.Rows) (*Table, error) {
	cols, err := readColumns(rows)
	if err != nil {
		return nil, err
	}
	t := NewTable(cols...)
	for rows.Next() {
		vals, err := scanValues(rows, len(cols))
		if err != nil {
			return nil, err
		}
		if _, err := t.AddRow(vals...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTable runs query and buffers the result into a Table.
//
// Example:
//
//	t, err := xdb.LoadTable(ctx, db, `SELECT id, email FROM users`)
//	if err != nil {
//	    return err
//	}
//	for _, row := range t.All() {
//	    id, _ := xdb.GetInt64OrDefault(row, "id")
//	    email, _ := xdb.GetStringOrDefault(row, "email")
//	    fmt.Println(id, email)
//	}
func LoadTable(ctx context.Context, q Querier, query string, args ...any) (t *Table, err error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	// Ensure Close error is propagated if no earlier error occurred.
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			t, err = nil, cerr
		}
	}()
	return ReadTable(rows)
}

func readColumns(rows *sql.Rows) ([]Column, error) {
	cts, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	if len(cts) == 0 {
		return nil, fmt.Errorf("xdb: query returned zero columns")
	}
	cols := make([]Column, len(cts))
	for i, ct := range cts {
		cols[i] = Column{Name: unquoteIdent(ct.Name()), Type: scanType(ct)}
	}
	return cols, nil
}

// scanType is the declared Go type of a result column: the native type of
// the tag the driver's scan type maps to. Unknown scan types yield nil.
func scanType(ct *sql.ColumnType) reflect.Type {
	tag := ToDbType(ct.ScanType())
	if tag == TypeObject {
		return nil
	}
	return ToNativeType(tag)
}

// scanValues scans the current row into driver values; NULL is nil.
func scanValues(rows *sql.Rows, n int) ([]any, error) {
	vals := make([]any, n)
	ptrs := make([]any, n)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return vals, nil
}
