package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/meowmeowcode/orlok"
)

// PostgreSQL error codes, per the SQLSTATE standard.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresAdapter implements Adapter for PostgreSQL via lib/pq.
type PostgresAdapter struct {
	*baseAdapter
}

// NewPostgresAdapter creates a new PostgreSQL adapter.
func NewPostgresAdapter() *PostgresAdapter {
	return &PostgresAdapter{baseAdapter: newBaseAdapter("postgres", "postgres")}
}

// Connect establishes a connection to PostgreSQL.
func (a *PostgresAdapter) Connect(ctx context.Context, config *orlok.Config) (*sql.DB, error) {
	return a.connect(ctx, config, a.ConnectionString(config))
}

// ConnectionString constructs a PostgreSQL connection string.
func (a *PostgresAdapter) ConnectionString(config *orlok.Config) string {
	var parts []string
	if config.Host != "" {
		parts = append(parts, fmt.Sprintf("host=%s", config.Host))
	}
	if config.Port > 0 {
		parts = append(parts, fmt.Sprintf("port=%d", config.Port))
	}
	if config.Database != "" {
		parts = append(parts, fmt.Sprintf("dbname=%s", config.Database))
	}
	if config.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", config.Username))
	}
	if config.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", config.Password))
	}

	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts = append(parts, fmt.Sprintf("sslmode=%s", sslMode))

	parts = appendOptions(parts, config.Options, "%s=%s")
	return strings.Join(parts, " ")
}

// Placeholder returns PostgreSQL's $N placeholder.
func (a *PostgresAdapter) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// IsUniqueConstraintViolation checks for SQLSTATE 23505.
func (a *PostgresAdapter) IsUniqueConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return a.baseAdapter.IsUniqueConstraintViolation(err)
}

// IsForeignKeyViolation checks for SQLSTATE 23503.
func (a *PostgresAdapter) IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgForeignKeyViolation
	}
	return a.baseAdapter.IsForeignKeyViolation(err)
}
