package pg

import (
	"context"
	"database/sql"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
)

// RunInTx executes fn inside a single database transaction.
//
// The transaction is committed when fn returns nil and rolled back otherwise.
// Multi-row write compositions (such as demote-all-then-promote-one) must go
// through this helper so concurrent callers never observe partially applied
// state.
func RunInTx(ctx context.Context, db *bun.DB, fn func(ctx context.Context, tx bun.Tx) error) error {
	err := db.RunInTx(ctx, &sql.TxOptions{}, fn)
	if err != nil {
		return errx.Wrap(err)
	}
	return nil
}
