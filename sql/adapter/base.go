package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/meowmeowcode/orlok"
)

// baseAdapter provides connection handling and fallback error
// classification shared by all SQL adapters.
type baseAdapter struct {
	db         *sql.DB
	driverName string
	name       Name
}

func newBaseAdapter(driverName string, name Name) *baseAdapter {
	return &baseAdapter{driverName: driverName, name: name}
}

// Name returns the adapter name.
func (a *baseAdapter) Name() Name { return a.name }

// connect opens a connection, configures pooling and verifies it with a
// ping.
func (a *baseAdapter) connect(ctx context.Context, config *orlok.Config, connectionString string) (*sql.DB, error) {
	db, err := sql.Open(a.driverName, connectionString)
	if err != nil {
		return nil, orlok.NewConnectivityError(err, "connect")
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}
	if config.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
	}

	pingCtx := ctx
	if config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, orlok.NewConnectivityError(err, "ping")
	}

	a.db = db
	return db, nil
}

// Close closes the database connection.
func (a *baseAdapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Placeholder returns the ?-style placeholder most dialects use.
func (a *baseAdapter) Placeholder(int) string { return "?" }

// LockingClause returns the standard row-locking clause.
func (a *baseAdapter) LockingClause() string { return " FOR UPDATE" }

// LikeOperator returns the standard LIKE operator.
func (a *baseAdapter) LikeOperator() string { return "LIKE" }

// LikeEscapeClause names backslash as the pattern escape character.
func (a *baseAdapter) LikeEscapeClause() string { return ` ESCAPE '\'` }

// AllRowsLimit returns empty: most dialects accept OFFSET without LIMIT.
func (a *baseAdapter) AllRowsLimit() string { return "" }

// SupportsRowLocking reports row-locking support.
func (a *baseAdapter) SupportsRowLocking() bool { return true }

// DefaultTxOptions returns read-committed, read-write options.
func (a *baseAdapter) DefaultTxOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
}

// Fallback error classification by message, used when a driver error
// does not carry a typed code.

func (a *baseAdapter) IsUniqueConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

func (a *baseAdapter) IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}

func (a *baseAdapter) IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"connection closed",
		"network is unreachable",
		"driver: bad connection",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// appendOptions joins extra connection options onto a DSN.
func appendOptions(parts []string, options map[string]string, format string) []string {
	for key, value := range options {
		parts = append(parts, fmt.Sprintf(format, key, value))
	}
	return parts
}
