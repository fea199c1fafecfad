package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/meowmeowcode/orlok"
)

// MySQL server error numbers.
const (
	myUniqueViolation     = 1062
	myForeignKeyViolation = 1452
	myForeignKeyRestrict  = 1451
)

// MySQLAdapter implements Adapter for MySQL via go-sql-driver/mysql.
type MySQLAdapter struct {
	*baseAdapter
}

// NewMySQLAdapter creates a new MySQL adapter.
func NewMySQLAdapter() *MySQLAdapter {
	return &MySQLAdapter{baseAdapter: newBaseAdapter("mysql", "mysql")}
}

// Connect establishes a connection to MySQL.
func (a *MySQLAdapter) Connect(ctx context.Context, config *orlok.Config) (*sql.DB, error) {
	return a.connect(ctx, config, a.ConnectionString(config))
}

// ConnectionString constructs a MySQL DSN. parseTime is always enabled
// so timestamp columns scan into time.Time.
func (a *MySQLAdapter) ConnectionString(config *orlok.Config) string {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	port := config.Port
	if port == 0 {
		port = 3306
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		config.Username, config.Password, host, port, config.Database)

	var extra []string
	extra = appendOptions(extra, config.Options, "%s=%s")
	if len(extra) > 0 {
		dsn += "&" + strings.Join(extra, "&")
	}
	return dsn
}

// LikeOperator forces byte-wise comparison: MySQL's default collations
// make plain LIKE case-insensitive.
func (a *MySQLAdapter) LikeOperator() string { return "LIKE BINARY" }

// LikeEscapeClause doubles the backslash, which MySQL string literals
// treat as an escape character.
func (a *MySQLAdapter) LikeEscapeClause() string { return ` ESCAPE '\\'` }

// AllRowsLimit returns MySQL's documented "no limit" value, required
// because OFFSET cannot appear without LIMIT.
func (a *MySQLAdapter) AllRowsLimit() string { return "18446744073709551615" }

// IsUniqueConstraintViolation checks for MySQL error 1062.
func (a *MySQLAdapter) IsUniqueConstraintViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == myUniqueViolation
	}
	return a.baseAdapter.IsUniqueConstraintViolation(err)
}

// IsForeignKeyViolation checks for MySQL errors 1451 and 1452.
func (a *MySQLAdapter) IsForeignKeyViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == myForeignKeyViolation || myErr.Number == myForeignKeyRestrict
	}
	return a.baseAdapter.IsForeignKeyViolation(err)
}
