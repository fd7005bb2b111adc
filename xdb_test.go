package xdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"reflect"
	"sync"
	"testing"
)

// --- In-memory database/sql driver used across the package tests ----------

type DBHandler func(query string, args []driver.NamedValue) (cols []string, rows [][]driver.Value, err error)

type execHandler func(query string, args []driver.NamedValue) (driver.Result, error)

type testConnector struct {
	h       DBHandler
	exec    execHandler
	types   []reflect.Type // optional scan type per column
	nextErr error          // returned by the first rows.Next
	log     *txLog
}

func (c *testConnector) Connect(context.Context) (driver.Conn, error) { return &testConn{c: c}, nil }
func (c *testConnector) Driver() driver.Driver                        { return testDriver{} }

type testDriver struct{}

func (testDriver) Open(name string) (driver.Conn, error) {
	return nil, errors.New("testDriver.Open should not be called; use sql.OpenDB with connector")
}

// txLog records transaction outcomes.
type txLog struct {
	mu          sync.Mutex
	begins      int
	commits     int
	rollbacks   int
	rollbackErr error
}

func (l *txLog) counts() (begins, commits, rollbacks int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.begins, l.commits, l.rollbacks
}

type testConn struct {
	c *testConnector
}

func (c *testConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *testConn) Close() error                        { return nil }

func (c *testConn) Begin() (driver.Tx, error) {
	if c.c.log == nil {
		return nil, errors.New("transactions not configured")
	}
	c.c.log.mu.Lock()
	c.c.log.begins++
	c.c.log.mu.Unlock()
	return &testTx{log: c.c.log}, nil
}

func (c *testConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if c.c.h == nil {
		return nil, errors.New("queries not configured")
	}
	cols, data, err := c.c.h(query, args)
	if err != nil {
		return nil, err
	}
	return &testRows{cols: cols, data: data, types: c.c.types, nextErr: c.c.nextErr}, nil
}

func (c *testConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if c.c.exec == nil {
		return nil, errors.New("exec not configured")
	}
	return c.c.exec(query, args)
}

// CheckNamedValue lets sql.Out through untouched; everything else takes the
// default conversion.
func (c *testConn) CheckNamedValue(nv *driver.NamedValue) error {
	if _, ok := nv.Value.(sql.Out); ok {
		return nil
	}
	return driver.ErrSkip
}

type testTx struct{ log *txLog }

func (t *testTx) Commit() error {
	t.log.mu.Lock()
	defer t.log.mu.Unlock()
	t.log.commits++
	return nil
}

func (t *testTx) Rollback() error {
	t.log.mu.Lock()
	defer t.log.mu.Unlock()
	t.log.rollbacks++
	return t.log.rollbackErr
}

type testRows struct {
	cols    []string
	data    [][]driver.Value
	types   []reflect.Type
	nextErr error
	i       int
}

func (r *testRows) Columns() []string { return append([]string(nil), r.cols...) }
func (r *testRows) Close() error      { return nil }
func (r *testRows) Next(dest []driver.Value) error {
	if r.nextErr != nil {
		return r.nextErr
	}
	if r.i >= len(r.data) {
		return io.EOF
	}
	row := r.data[r.i]
	for i := range dest {
		if i < len(row) {
			dest[i] = row[i]
		} else {
			dest[i] = nil
		}
	}
	r.i++
	return nil
}

func (r *testRows) ColumnTypeScanType(i int) reflect.Type {
	if i < len(r.types) && r.types[i] != nil {
		return r.types[i]
	}
	return reflect.TypeFor[any]()
}

// Result implementation for tests.
type testResult struct {
	lastID int64
	rows   int64
}

func (r testResult) LastInsertId() (int64, error) { return r.lastID, nil }
func (r testResult) RowsAffected() (int64, error) { return r.rows, nil }

// newTestDB creates a *sql.DB backed by the in-memory test driver.
func newTestDB(t *testing.T, h DBHandler) *sql.DB {
	t.Helper()
	return openTestDB(t, &testConnector{h: h})
}

func openTestDB(t *testing.T, c *testConnector) *sql.DB {
	t.Helper()
	db := sql.OpenDB(c)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// static returns a handler that always yields the same result set.
func static(cols []string, rows ...[]driver.Value) DBHandler {
	return func(string, []driver.NamedValue) ([]string, [][]driver.Value, error) {
		return cols, rows, nil
	}
}
