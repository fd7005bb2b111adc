package xdb

import (
	"context"
	"database/sql"
	"errors"
)

// InTx runs fn inside a transaction started on b. The transaction commits
// when fn returns nil and rolls back when fn returns an error or panics; the
// panic is re-raised after the rollback. A failed rollback is joined to fn's
// error.
//
// Example:
//
//	err := xdb.InTx(ctx, db, nil, func(tx *sql.Tx) error {
//	    if _, err := xdb.Exec(ctx, tx, `UPDATE a SET n = n - 1`); err != nil {
//	        return err
//	    }
//	    _, err := xdb.Exec(ctx, tx, `UPDATE b SET n = n + 1`)
//	    return err
//	})
func InTx(ctx context.Context, b Beginner, opts *sql.TxOptions, fn func(*sql.Tx) error) (err error) {
	tx, err := b.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return errors.Join(err, rerr)
		}
		return err
	}
	return tx.Commit()
}

// WithConn runs fn on a dedicated connection from p and closes the
// connection afterwards. Use it for session state (temporary tables, SET
// options) that must outlive a single statement.
func WithConn(ctx context.Context, p ConnProvider, fn func(*sql.Conn) error) (err error) {
	conn, err := p.Conn(ctx)
	if err != nil {
		return err
	}
	// Propagate Close error if nothing else failed.
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(conn)
}
