package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/meowmeowcode/orlok"
)

// SQLiteAdapter implements Adapter for SQLite via mattn/go-sqlite3.
type SQLiteAdapter struct {
	*baseAdapter
}

// NewSQLiteAdapter creates a new SQLite adapter.
func NewSQLiteAdapter() *SQLiteAdapter {
	return &SQLiteAdapter{baseAdapter: newBaseAdapter("sqlite3", "sqlite")}
}

// Connect establishes a connection to SQLite.
func (a *SQLiteAdapter) Connect(ctx context.Context, config *orlok.Config) (*sql.DB, error) {
	return a.connect(ctx, config, a.ConnectionString(config))
}

// ConnectionString constructs a SQLite DSN. Foreign keys are enabled and
// LIKE is made case-sensitive so the dialect matches the engine's filter
// semantics.
func (a *SQLiteAdapter) ConnectionString(config *orlok.Config) string {
	path := config.FilePath
	if path == "" {
		path = ":memory:"
	}

	params := []string{"_foreign_keys=on", "_case_sensitive_like=on"}
	params = appendOptions(params, config.Options, "%s=%s")
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&"))
}

// LockingClause returns an empty clause: SQLite has no row locks, and
// concurrent writers already serialize on the database write lock.
func (a *SQLiteAdapter) LockingClause() string { return "" }

// SupportsRowLocking reports that SQLite locks at database granularity.
func (a *SQLiteAdapter) SupportsRowLocking() bool { return false }

// AllRowsLimit returns SQLite's "no limit" value, required because
// OFFSET cannot appear without LIMIT.
func (a *SQLiteAdapter) AllRowsLimit() string { return "-1" }

// DefaultTxOptions returns SQLite's serializable default.
func (a *SQLiteAdapter) DefaultTxOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: sql.LevelSerializable}
}

// IsUniqueConstraintViolation checks sqlite3 extended result codes.
func (a *SQLiteAdapter) IsUniqueConstraintViolation(err error) bool {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return a.baseAdapter.IsUniqueConstraintViolation(err)
}

// IsForeignKeyViolation checks sqlite3 extended result codes.
func (a *SQLiteAdapter) IsForeignKeyViolation(err error) bool {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return a.baseAdapter.IsForeignKeyViolation(err)
}
