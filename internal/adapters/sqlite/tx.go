package sqlite

import (
	"context"
	"database/sql"
)

// withTx runs fn in a transaction, committing on success and rolling back
// on error
func (l *Library) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
