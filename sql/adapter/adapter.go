// Package adapter provides pluggable SQL database adapters for the
// relational backend. An adapter owns everything dialect-specific:
// connection strings, placeholder syntax, row-locking clauses and the
// classification of driver errors into the engine's taxonomy.
package adapter

import (
	"context"
	"database/sql"

	"github.com/meowmeowcode/orlok"
)

// Name identifies a registered adapter.
type Name string

// Adapter represents a SQL database adapter (PostgreSQL, MySQL, SQLite).
type Adapter interface {
	// Name returns the adapter's unique identifier.
	Name() Name

	// Connect establishes a connection to the database.
	Connect(ctx context.Context, config *orlok.Config) (*sql.DB, error)

	// ConnectionString builds the connection string from config.
	ConnectionString(config *orlok.Config) string

	// Placeholder returns the parameter placeholder for the n-th
	// argument, counting from 1 ($1 for PostgreSQL, ? elsewhere).
	Placeholder(n int) string

	// LockingClause returns the clause appended to a select to lock the
	// matched rows until the transaction ends. Empty when the dialect
	// has no row locks.
	LockingClause() string

	// LikeOperator returns the operator for case-sensitive substring
	// matching (LIKE BINARY on MySQL, whose default collations compare
	// case-insensitively).
	LikeOperator() string

	// LikeEscapeClause returns the ESCAPE clause naming backslash as
	// the pattern escape character, in the dialect's string-literal
	// syntax.
	LikeEscapeClause() string

	// AllRowsLimit returns the LIMIT value meaning "no limit", for
	// dialects that cannot express OFFSET without LIMIT. Empty when the
	// dialect allows a bare OFFSET.
	AllRowsLimit() string

	// SupportsRowLocking reports whether LockingClause yields real
	// row-level locks.
	SupportsRowLocking() bool

	// DefaultTxOptions returns the isolation level used for units of
	// work.
	DefaultTxOptions() *sql.TxOptions

	// Error classification
	IsUniqueConstraintViolation(err error) bool
	IsForeignKeyViolation(err error) bool
	IsConnectionError(err error) bool

	// Close releases any resources held by the adapter.
	Close() error
}
