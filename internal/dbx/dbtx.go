// Package dbx holds the small database plumbing shared by the repositories:
// the DBTX handle interface and a transaction wrapper. The user store and the
// reset-token ledger both run against DBTX so a flow can point them at the
// pool or at one shared transaction.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the slice of database/sql the repositories actually call.
// *sql.DB and *sql.Tx both satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx opens a transaction, hands it to fn, and commits when fn returns
// nil. Any error (or panic, which is re-raised) rolls the transaction back.
//
// The reset-password flow uses it to couple the used-marking with the
// password update:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if err := rm.ResetTokens(tx).MarkUsed(ctx, token); err != nil {
//	        return err
//	    }
//	    return rm.Users(tx).UpdatePasswordHash(ctx, userID, hash)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
