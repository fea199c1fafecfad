package sqlrepo

import (
	"context"
	"database/sql"

	"github.com/meowmeowcode/orlok"
)

type txContextKey struct{}

// TransactionFromContext extracts the *sql.Tx carried by a unit-of-work
// context, when present.
func TransactionFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}

// WithTx executes fn as one unit of work. The transaction handle rides
// the context passed to fn; repository verbs called with that context
// run inside the transaction. A nil return commits; an error or panic
// rolls back, and the closure's error is returned to the caller
// unchanged. Opening a unit of work while one is already active fails
// with ErrNestedTransaction rather than flattening.
func (s *Service) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TransactionFromContext(ctx); ok {
		return orlok.ErrNestedTransaction
	}

	tx, err := s.db.BeginTx(ctx, s.adapter.DefaultTxOptions())
	if err != nil {
		return orlok.NewConnectivityError(err, "begin")
	}

	done := false
	defer func() {
		// A panic inside the unit of work must still roll back before
		// it propagates.
		if !done {
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		done = true
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		done = true
		return orlok.NewConnectivityError(err, "commit")
	}
	done = true
	return nil
}
