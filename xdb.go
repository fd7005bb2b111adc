package xdb

import (
	"context"
	"database/sql"
)

// Querier runs a statement that returns rows. LoadTable, Command.Query and
// Command.Scalar read through it, so they work the same on *sql.DB, *sql.Tx
// and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Execer runs a statement without a result set. Command.Exec binds its
// parameters first and hands the final text to it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Beginner opens the transaction InTx scopes to its callback. *sql.DB and
// *sql.Conn satisfy it.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// ConnProvider hands out the dedicated connection WithConn lends to its
// callback. *sql.DB satisfies it.
type ConnProvider interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}
