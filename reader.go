package xdb

import (
	"database/sql"
	"slices"
)

// Reader is a forward-only FieldSource over *sql.Rows. Values are the
// driver's values as scanned into any; NULL is nil.
//
// Example:
//
//	rows, err := db.QueryContext(ctx, `SELECT id, name FROM users`)
//	if err != nil {
//	    return err
//	}
//	r, err := xdb.NewReader(rows)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	for r.Next() {
//	    name, _ := xdb.GetStringOrDefault(r, "name", "anonymous")
//	    fmt.Println(name)
//	}
//	return r.Err()
type Reader struct {
	rows  *sql.Rows
	cols  []Column
	index columnIndex
	vals  []any
	err   error
}

// NewReader wraps rows. The Reader owns rows from here on.
func NewReader(rows *sql.Rows) (*Reader, error) {
	cols, err := readColumns(rows)
	if err != nil {
		return nil, err
	}
	return &Reader{rows: rows, cols: cols, index: newColumnIndex(cols)}, nil
}

// Next advances to the next row. It returns false at the end of the result
// or on error; check Err.
func (r *Reader) Next() bool {
	r.vals = nil
	if r.err != nil || !r.rows.Next() {
		return false
	}
	vals, err := scanValues(r.rows, len(r.cols))
	if err != nil {
		r.err = err
		return false
	}
	r.vals = vals
	return true
}

func (r *Reader) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *Reader) Close() error { return r.rows.Close() }

func (r *Reader) Columns() []Column { return slices.Clone(r.cols) }

// Field implements FieldSource for the current row. Before the first Next
// and after the last, no field exists.
func (r *Reader) Field(name string) (Field, bool) {
	if r == nil || r.vals == nil {
		return Field{}, false
	}
	i, ok := r.index.find(name)
	if !ok {
		return Field{}, false
	}
	c := r.cols[i]
	return Field{Name: c.Name, Type: c.Type, Value: r.vals[i]}, true
}

// Values returns a copy of the current row.
func (r *Reader) Values() []any { return slices.Clone(r.vals) }
