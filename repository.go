// Package orlok implements the repository pattern over interchangeable
// storage backends. Callers describe what they want with a composable
// filter/query algebra; the engine runs the same intent against a
// relational database (package sql) or an in-memory document store
// (package memory) with identical semantics.
//
// Core abstractions at the root level, backend-specific implementations
// in sub-packages.
package orlok

import "context"

// Mapping binds an entity type to its record shape. Dump and Load must
// be pure: Load(Dump(e)) reproduces an entity equal to e, and Dump emits
// exactly the fields declared in Schema.
type Mapping[T any] struct {
	// Table is the table or collection name the repository owns.
	Table string
	// Schema declares the record shape for validation and row scanning.
	Schema Schema
	// Dump converts an entity to its record form.
	Dump func(entity T) *Record
	// Load reconstructs an entity from a record.
	Load func(rec *Record) (T, error)
}

// Repository defines the verbs every backend must implement. A repository
// is constructed once, is immutable afterwards, and is safe for
// concurrent use. Transactions ride the context: run verbs inside a
// Transactor.WithTx closure to scope them to one atomic unit of work.
type Repository[T any] interface {
	// Add stores a new entity and runs the repository's after-add hooks
	// in the same atomic unit. Uniqueness and foreign-key breaches
	// surface as ConstraintError.
	Add(ctx context.Context, entity T) error

	// Get returns at most one entity matching the filter, or nil when
	// nothing matches. When several records match, the first one in the
	// backend's natural order (or the custom read statement's order) is
	// returned; callers needing uniqueness must constrain the filter.
	Get(ctx context.Context, filter Filter) (*T, error)

	// GetMany returns all entities matching the query, fully
	// materialized in query order.
	GetMany(ctx context.Context, query Query) ([]T, error)

	// Update overwrites every matching record with the entity's fields,
	// then runs after-update hooks atomically. Zero matches is a
	// successful no-op.
	Update(ctx context.Context, filter Filter, entity T) error

	// Delete removes every matching record. Zero matches is a successful
	// no-op.
	Delete(ctx context.Context, filter Filter) error

	// Exists reports whether any record matches the filter without
	// fetching full records.
	Exists(ctx context.Context, filter Filter) (bool, error)

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, filter Filter) (int64, error)

	// CountAll returns the number of records in the repository.
	CountAll(ctx context.Context) (int64, error)

	// GetForUpdate behaves like Get but additionally holds an exclusive
	// lock on the matched records until the enclosing transaction ends.
	// Calling it outside an active transaction is a UsageError.
	GetForUpdate(ctx context.Context, filter Filter) (*T, error)
}

// Transactor executes a unit of work atomically. The closure's context
// carries the transaction handle; repository verbs called with it run
// inside the transaction. A nil return commits, an error or panic rolls
// back. Opening a transaction inside another fails with
// ErrNestedTransaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunTx executes a unit of work that produces a result. It is a
// convenience wrapper over Transactor.WithTx.
func RunTx[R any](ctx context.Context, tx Transactor, fn func(ctx context.Context) (R, error)) (R, error) {
	var result R
	err := tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return result, nil
}
