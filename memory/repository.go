package memrepo

import (
	"context"

	"go.uber.org/zap"

	"github.com/meowmeowcode/orlok"
)

// Hook produces follow-up mutations for a just-written entity.
type Hook[T any] func(entity T) []Mutation

// DeleteHook produces follow-up mutations for a just-applied delete
// filter.
type DeleteHook func(filter orlok.Filter) []Mutation

// Repository stores entities of type T in one collection of a shared
// Store. It is immutable after construction and safe for concurrent
// use.
type Repository[T any] struct {
	store   *Store
	mapping orlok.Mapping[T]

	afterAdd    Hook[T]
	afterUpdate Hook[T]
	afterDelete DeleteHook
}

// RepositoryOption configures a repository at construction time.
type RepositoryOption[T any] func(*Repository[T])

// WithAfterAdd registers a hook run after every add, inside the same
// atomic unit.
func WithAfterAdd[T any](hook Hook[T]) RepositoryOption[T] {
	return func(r *Repository[T]) {
		r.afterAdd = hook
	}
}

// WithAfterUpdate registers a hook run after every update, inside the
// same atomic unit.
func WithAfterUpdate[T any](hook Hook[T]) RepositoryOption[T] {
	return func(r *Repository[T]) {
		r.afterUpdate = hook
	}
}

// WithAfterDelete registers a hook run after every delete, inside the
// same atomic unit.
func WithAfterDelete[T any](hook DeleteHook) RepositoryOption[T] {
	return func(r *Repository[T]) {
		r.afterDelete = hook
	}
}

// Ensure Repository satisfies the backend-agnostic contract.
var _ orlok.Repository[struct{}] = (*Repository[struct{}])(nil)

// NewRepository creates a repository bound to a store and an entity
// mapping. The mapping's table name doubles as the collection key.
func NewRepository[T any](store *Store, mapping orlok.Mapping[T], opts ...RepositoryOption[T]) *Repository[T] {
	r := &Repository[T]{store: store, mapping: mapping}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the first record matching the filter in insertion order,
// or nil when nothing matches.
func (r *Repository[T]) Get(ctx context.Context, filter orlok.Filter) (*T, error) {
	if err := r.mapping.Schema.ValidateFilter(r.mapping.Table, filter); err != nil {
		return nil, err
	}

	var entity *T
	err := r.store.read(ctx, func(data map[string][]*orlok.Record) error {
		for _, rec := range data[r.mapping.Table] {
			ok, err := matches(rec, filter)
			if err != nil {
				return err
			}
			if ok {
				loaded, err := r.load(rec)
				if err != nil {
					return err
				}
				entity = loaded
				return nil
			}
		}
		return nil
	})
	return entity, err
}

// GetForUpdate returns the first matching record inside an active
// transaction. The transaction already holds the store's exclusive
// lock, so no further locking is needed; outside a transaction the call
// is a UsageError.
func (r *Repository[T]) GetForUpdate(ctx context.Context, filter orlok.Filter) (*T, error) {
	if !r.store.InTransaction(ctx) {
		return nil, orlok.NewUsageError("GetForUpdate requires an active transaction")
	}
	return r.Get(ctx, filter)
}

// GetMany returns every entity matching the query: filtered, stably
// sorted, then sliced by offset and limit.
func (r *Repository[T]) GetMany(ctx context.Context, query orlok.Query) ([]T, error) {
	if err := r.mapping.Schema.ValidateQuery(r.mapping.Table, query); err != nil {
		return nil, err
	}
	if query.Limit != nil && *query.Limit == 0 {
		return []T{}, nil
	}

	entities := []T{}
	err := r.store.read(ctx, func(data map[string][]*orlok.Record) error {
		var selected []*orlok.Record
		for _, rec := range data[r.mapping.Table] {
			ok, err := matches(rec, query.Filter)
			if err != nil {
				return err
			}
			if ok {
				selected = append(selected, rec)
			}
		}

		if len(query.OrderBy) > 0 {
			sortRecords(selected, query.OrderBy)
		}
		if query.Offset != nil {
			if *query.Offset >= len(selected) {
				selected = nil
			} else {
				selected = selected[*query.Offset:]
			}
		}
		if query.Limit != nil && *query.Limit < len(selected) {
			selected = selected[:*query.Limit]
		}

		for _, rec := range selected {
			loaded, err := r.load(rec)
			if err != nil {
				return err
			}
			entities = append(entities, *loaded)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// Add appends the entity's record to the collection and runs after-add
// hooks in the same atomic unit.
func (r *Repository[T]) Add(ctx context.Context, entity T) error {
	rec := r.mapping.Dump(entity)
	return r.store.write(ctx, func(data map[string][]*orlok.Record) error {
		data[r.mapping.Table] = append(data[r.mapping.Table], rec.Clone())
		if r.afterAdd != nil {
			return applyMutations(data, r.afterAdd(entity))
		}
		return nil
	})
}

// Update overwrites every matching record with the entity's fields and
// runs after-update hooks atomically. Zero matches is a successful
// no-op.
func (r *Repository[T]) Update(ctx context.Context, filter orlok.Filter, entity T) error {
	if err := r.mapping.Schema.ValidateFilter(r.mapping.Table, filter); err != nil {
		return err
	}
	rec := r.mapping.Dump(entity)
	return r.store.write(ctx, func(data map[string][]*orlok.Record) error {
		records := data[r.mapping.Table]
		for i, stored := range records {
			ok, err := matches(stored, filter)
			if err != nil {
				return err
			}
			if ok {
				records[i] = rec.Clone()
			}
		}
		if r.afterUpdate != nil {
			return applyMutations(data, r.afterUpdate(entity))
		}
		return nil
	})
}

// Delete removes every matching record. Zero matches is a successful
// no-op.
func (r *Repository[T]) Delete(ctx context.Context, filter orlok.Filter) error {
	if err := r.mapping.Schema.ValidateFilter(r.mapping.Table, filter); err != nil {
		return err
	}
	return r.store.write(ctx, func(data map[string][]*orlok.Record) error {
		if err := (Delete{Collection: r.mapping.Table, Where: filter}).apply(data); err != nil {
			return err
		}
		if r.afterDelete != nil {
			return applyMutations(data, r.afterDelete(filter))
		}
		return nil
	})
}

// Exists reports whether any record matches the filter, without loading
// entities.
func (r *Repository[T]) Exists(ctx context.Context, filter orlok.Filter) (bool, error) {
	if err := r.mapping.Schema.ValidateFilter(r.mapping.Table, filter); err != nil {
		return false, err
	}
	exists := false
	err := r.store.read(ctx, func(data map[string][]*orlok.Record) error {
		for _, rec := range data[r.mapping.Table] {
			ok, err := matches(rec, filter)
			if err != nil {
				return err
			}
			if ok {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}

// Count returns the number of records matching the filter.
func (r *Repository[T]) Count(ctx context.Context, filter orlok.Filter) (int64, error) {
	if err := r.mapping.Schema.ValidateFilter(r.mapping.Table, filter); err != nil {
		return 0, err
	}
	var count int64
	err := r.store.read(ctx, func(data map[string][]*orlok.Record) error {
		for _, rec := range data[r.mapping.Table] {
			ok, err := matches(rec, filter)
			if err != nil {
				return err
			}
			if ok {
				count++
			}
		}
		return nil
	})
	return count, err
}

// CountAll returns the number of records in the collection.
func (r *Repository[T]) CountAll(ctx context.Context) (int64, error) {
	return r.Count(ctx, nil)
}

func (r *Repository[T]) load(rec *orlok.Record) (*T, error) {
	entity, err := r.mapping.Load(rec)
	if err != nil {
		return nil, orlok.NewSerializationError(err, r.mapping.Table)
	}
	r.store.logger.Debug("loaded record", zap.String("collection", r.mapping.Table))
	return &entity, nil
}

func applyMutations(data map[string][]*orlok.Record, mutations []Mutation) error {
	for _, m := range mutations {
		if err := m.apply(data); err != nil {
			return err
		}
	}
	return nil
}
