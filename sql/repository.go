package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meowmeowcode/orlok"
)

// Statement is an extra write produced by a side-effect hook. It is
// executed verbatim, in hook-declaration order, inside the same atomic
// unit as the primary write; the engine does not inspect its content.
type Statement struct {
	SQL  string
	Args []any
}

// Hook produces follow-up statements for a just-written entity.
type Hook[T any] func(entity T) []Statement

// DeleteHook produces follow-up statements for a just-applied delete
// filter.
type DeleteHook func(filter orlok.Filter) []Statement

// Repository stores entities of type T in one table (or, through a
// custom read statement and hooks, a small set of tables presented as
// one entity). It is immutable after construction and safe for
// concurrent use.
type Repository[T any] struct {
	service   *Service
	mapping   orlok.Mapping[T]
	compiler  *Compiler
	baseQuery string

	afterAdd    Hook[T]
	afterUpdate Hook[T]
	afterDelete DeleteHook
}

// RepositoryOption configures a repository at construction time.
type RepositoryOption[T any] func(*Repository[T])

// WithQuery overrides the read statement records are selected with. The
// default is a plain select of the schema's columns from the mapping's
// table. Filters, ordering and locking clauses are appended to it.
func WithQuery[T any](query string) RepositoryOption[T] {
	return func(r *Repository[T]) {
		r.baseQuery = query
	}
}

// WithAfterAdd registers a hook run after every insert, inside the same
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

// NewRepository creates a repository bound to a service and an entity
// mapping.
func NewRepository[T any](service *Service, mapping orlok.Mapping[T], opts ...RepositoryOption[T]) *Repository[T] {
	r := &Repository[T]{
		service:  service,
		mapping:  mapping,
		compiler: NewCompiler(service.Adapter()),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.baseQuery == "" {
		r.baseQuery = defaultQuery(mapping.Table, mapping.Schema)
	}
	return r
}

func defaultQuery(table string, schema orlok.Schema) string {
	fields := schema.Fields()
	columns := make([]string, 0, len(fields))
	for _, f := range fields {
		columns = append(columns, f.Name)
	}
	return "SELECT " + strings.Join(columns, ", ") + " FROM " + table
}

// Get returns the first record matching the filter in the read
// statement's natural order, or nil when nothing matches.
func (r *Repository[T]) Get(ctx context.Context, filter orlok.Filter) (*T, error) {
	if err := r.mapping.Schema.ValidateFilter(r.mapping.Table, filter); err != nil {
		return nil, err
	}
	c, err := r.compiler.SelectFirst(r.baseQuery, filter)
	if err != nil {
		return nil, err
	}
	return r.fetchOne(ctx, c)
}

// GetForUpdate behaves like Get but locks every matched row until the
// enclosing transaction ends. It is only legal inside a unit of work.
func (r *Repository[T]) GetForUpdate(ctx context.Context, filter orlok.Filter) (*T, error) {
	if _, ok := TransactionFromContext(ctx); !ok {
		return nil, orlok.NewUsageError("GetForUpdate requires an active transaction")
	}
	if err := r.mapping.Schema.ValidateFilter(r.mapping.Table, filter); err != nil {
		return nil, err
	}
	c, err := r.compiler.SelectForUpdate(r.baseQuery, filter)
	if err != nil {
		return nil, err
	}
	return r.fetchOne(ctx, c)
}

// GetMany returns every entity matching the query, materialized in query
// order.
func (r *Repository[T]) GetMany(ctx context.Context, query orlok.Query) ([]T, error) {
	if err := r.mapping.Schema.ValidateQuery(r.mapping.Table, query); err != nil {
		return nil, err
	}
	if query.Limit != nil && *query.Limit == 0 {
		return []T{}, nil
	}
	c, err := r.compiler.SelectQuery(r.baseQuery, query)
	if err != nil {
		return nil, err
	}

	rows, err := r.service.query(ctx, c)
	if err != nil {
		return nil, r.service.classify(err, "get_many", r.mapping.Table)
	}
	defer rows.Close()

	var entities []T
	for rows.Next() {
		entity, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}
	if err := rows.Err(); err != nil {
		return nil, r.service.classify(err, "get_many", r.mapping.Table)
	}
	if entities == nil {
		entities = []T{}
	}
	return entities, nil
}

// Add inserts the entity and runs after-add hooks in the same atomic
// unit. Without an active transaction, a repository with hooks opens one
// internally so the insert and its side effects stay atomic.
func (r *Repository[T]) Add(ctx context.Context, entity T) error {
	c, err := r.compiler.Insert(r.mapping.Table, r.mapping.Dump(entity))
	if err != nil {
		return err
	}
	return r.atomically(ctx, r.afterAdd != nil, func(ctx context.Context) error {
		if _, err := r.service.exec(ctx, c); err != nil {
			return r.service.classify(err, "add", r.mapping.Table)
		}
		if r.afterAdd != nil {
			return r.runStatements(ctx, r.afterAdd(entity))
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
	c, err := r.compiler.Update(r.mapping.Table, r.mapping.Dump(entity), filter)
	if err != nil {
		return err
	}
	return r.atomically(ctx, r.afterUpdate != nil, func(ctx context.Context) error {
		if _, err := r.service.exec(ctx, c); err != nil {
			return r.service.classify(err, "update", r.mapping.Table)
		}
		if r.afterUpdate != nil {
			return r.runStatements(ctx, r.afterUpdate(entity))
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
	c, err := r.compiler.Delete(r.mapping.Table, filter)
	if err != nil {
		return err
	}
	return r.atomically(ctx, r.afterDelete != nil, func(ctx context.Context) error {
		if _, err := r.service.exec(ctx, c); err != nil {
			return r.service.classify(err, "delete", r.mapping.Table)
		}
		if r.afterDelete != nil {
			return r.runStatements(ctx, r.afterDelete(filter))
		}
		return nil
	})
}

// Exists reports whether any record matches the filter, without fetching
// rows.
func (r *Repository[T]) Exists(ctx context.Context, filter orlok.Filter) (bool, error) {
	if err := r.mapping.Schema.ValidateFilter(r.mapping.Table, filter); err != nil {
		return false, err
	}
	c, err := r.compiler.Exists(r.baseQuery, filter)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := r.service.queryRow(ctx, c).Scan(&exists); err != nil {
		return false, r.service.classify(err, "exists", r.mapping.Table)
	}
	return exists, nil
}

// Count returns the number of records matching the filter.
func (r *Repository[T]) Count(ctx context.Context, filter orlok.Filter) (int64, error) {
	if err := r.mapping.Schema.ValidateFilter(r.mapping.Table, filter); err != nil {
		return 0, err
	}
	c, err := r.compiler.Count(r.baseQuery, filter)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := r.service.queryRow(ctx, c).Scan(&count); err != nil {
		return 0, r.service.classify(err, "count", r.mapping.Table)
	}
	return count, nil
}

// CountAll returns the number of records in the repository.
func (r *Repository[T]) CountAll(ctx context.Context) (int64, error) {
	return r.Count(ctx, nil)
}

// atomically runs fn inside the transaction already on the context, or,
// when side-effect hooks demand atomicity, inside a new one.
func (r *Repository[T]) atomically(ctx context.Context, needsTx bool, fn func(ctx context.Context) error) error {
	if _, ok := TransactionFromContext(ctx); ok || !needsTx {
		return fn(ctx)
	}
	return r.service.WithTx(ctx, fn)
}

func (r *Repository[T]) runStatements(ctx context.Context, statements []Statement) error {
	for _, stmt := range statements {
		c := &Compiled{SQL: stmt.SQL, Args: stmt.Args}
		if _, err := r.service.exec(ctx, c); err != nil {
			return r.service.classify(err, "hook", r.mapping.Table)
		}
	}
	return nil
}

func (r *Repository[T]) fetchOne(ctx context.Context, c *Compiled) (*T, error) {
	rows, err := r.service.query(ctx, c)
	if err != nil {
		return nil, r.service.classify(err, "get", r.mapping.Table)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, r.service.classify(err, "get", r.mapping.Table)
		}
		return nil, nil
	}
	return r.scan(rows)
}

// scan decodes the current row into an entity via the schema-driven
// record form and the load mapping.
func (r *Repository[T]) scan(rows *sql.Rows) (*T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, orlok.NewSerializationError(err, r.mapping.Table)
	}

	dests := make([]any, len(columns))
	for i, column := range columns {
		kind, ok := r.mapping.Schema.Kind(column)
		if !ok {
			return nil, orlok.NewSerializationError(
				fmt.Errorf("column %q is not declared in the schema", column), r.mapping.Table)
		}
		dests[i] = scanDest(kind)
	}
	if err := rows.Scan(dests...); err != nil {
		return nil, orlok.NewSerializationError(err, r.mapping.Table)
	}

	rec := orlok.NewRecord()
	for i, column := range columns {
		rec.Set(column, scannedValue(dests[i]))
	}

	entity, err := r.mapping.Load(rec)
	if err != nil {
		return nil, orlok.NewSerializationError(err, r.mapping.Table)
	}
	return &entity, nil
}

func scanDest(kind orlok.Kind) any {
	switch kind {
	case orlok.KindText:
		return &sql.NullString{}
	case orlok.KindInt:
		return &sql.NullInt64{}
	case orlok.KindDecimal:
		return &decimal.NullDecimal{}
	case orlok.KindBool:
		return &sql.NullBool{}
	case orlok.KindTime:
		return &sql.NullTime{}
	case orlok.KindID:
		return &uuid.NullUUID{}
	}
	return new(any)
}

func scannedValue(dest any) orlok.Value {
	switch d := dest.(type) {
	case *sql.NullString:
		if d.Valid {
			return orlok.Text(d.String)
		}
	case *sql.NullInt64:
		if d.Valid {
			return orlok.Int(d.Int64)
		}
	case *decimal.NullDecimal:
		if d.Valid {
			return orlok.Dec(d.Decimal)
		}
	case *sql.NullBool:
		if d.Valid {
			return orlok.Bool(d.Bool)
		}
	case *sql.NullTime:
		if d.Valid {
			return orlok.Time(d.Time)
		}
	case *uuid.NullUUID:
		if d.Valid {
			return orlok.ID(d.UUID)
		}
	}
	return orlok.Null()
}
