// Package sqlrepo implements the repository engine over a relational
// database. Filters compile to parameterized SQL through a pluggable
// dialect adapter; transactions map to real database transactions.
package sqlrepo

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/meowmeowcode/orlok"
	"github.com/meowmeowcode/orlok/sql/adapter"
)

// Service wraps a SQL adapter and an open connection pool. Repositories
// share one service; the service also acts as the transaction
// coordinator for its database.
type Service struct {
	adapter adapter.Adapter
	db      *sql.DB
	config  orlok.Config
	logger  *zap.Logger
}

// Ensure Service acts as a transaction coordinator.
var _ orlok.Transactor = (*Service)(nil)

// ServiceOption configures a service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for statement-level debug logging.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a disconnected service with the given adapter.
func NewService(adpt adapter.Adapter, config orlok.Config, opts ...ServiceOption) *Service {
	s := &Service{
		adapter: adpt,
		config:  config,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect establishes the database connection.
func (s *Service) Connect(ctx context.Context) error {
	db, err := s.adapter.Connect(ctx, &s.config)
	if err != nil {
		return err
	}
	s.db = db
	s.logger.Debug("connected",
		zap.String("adapter", string(s.adapter.Name())),
		zap.String("host", s.config.Host))
	return nil
}

// Close closes the database connection.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying connection pool.
func (s *Service) DB() *sql.DB { return s.db }

// Adapter returns the dialect adapter.
func (s *Service) Adapter() adapter.Adapter { return s.adapter }

// Stats returns connection pool statistics.
func (s *Service) Stats() sql.DBStats {
	if s.db != nil {
		return s.db.Stats()
	}
	return sql.DBStats{}
}

// Open creates and connects a service using the given adapter.
func Open(ctx context.Context, adpt adapter.Adapter, config orlok.Config, opts ...ServiceOption) (*Service, error) {
	service := NewService(adpt, config, opts...)
	if err := service.Connect(ctx); err != nil {
		return nil, err
	}
	return service, nil
}

// OpenWithName creates and connects a service using a registered adapter
// name ("postgres", "mysql", "sqlite").
func OpenWithName(ctx context.Context, name adapter.Name, config orlok.Config, opts ...ServiceOption) (*Service, error) {
	adpt, err := adapter.Get(name)
	if err != nil {
		return nil, err
	}
	return Open(ctx, adpt, config, opts...)
}

// Statement execution. Every path routes through the transaction carried
// by the context when one is present.

func (s *Service) query(ctx context.Context, c *Compiled) (*sql.Rows, error) {
	s.logStatement(c)
	if tx, ok := TransactionFromContext(ctx); ok {
		return tx.QueryContext(ctx, c.SQL, c.Args...)
	}
	return s.db.QueryContext(ctx, c.SQL, c.Args...)
}

func (s *Service) queryRow(ctx context.Context, c *Compiled) *sql.Row {
	s.logStatement(c)
	if tx, ok := TransactionFromContext(ctx); ok {
		return tx.QueryRowContext(ctx, c.SQL, c.Args...)
	}
	return s.db.QueryRowContext(ctx, c.SQL, c.Args...)
}

func (s *Service) exec(ctx context.Context, c *Compiled) (sql.Result, error) {
	s.logStatement(c)
	if tx, ok := TransactionFromContext(ctx); ok {
		return tx.ExecContext(ctx, c.SQL, c.Args...)
	}
	return s.db.ExecContext(ctx, c.SQL, c.Args...)
}

func (s *Service) logStatement(c *Compiled) {
	s.logger.Debug("executing statement",
		zap.String("sql", c.SQL),
		zap.Int("args", len(c.Args)))
}

// classify maps driver errors into the engine's taxonomy. Errors that
// match no known class pass through unchanged; nothing is retried.
func (s *Service) classify(err error, operation, table string) error {
	if err == nil {
		return nil
	}
	switch {
	case s.adapter.IsUniqueConstraintViolation(err):
		return orlok.NewConstraintError(err, orlok.ConstraintUnique, table)
	case s.adapter.IsForeignKeyViolation(err):
		return orlok.NewConstraintError(err, orlok.ConstraintForeignKey, table)
	case s.adapter.IsConnectionError(err):
		return orlok.NewConnectivityError(err, operation)
	}
	return err
}
