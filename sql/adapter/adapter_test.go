package adapter_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meowmeowcode/orlok"
	"github.com/meowmeowcode/orlok/sql/adapter"
)

func TestPostgresConnectionString(t *testing.T) {
	a := adapter.NewPostgresAdapter()
	config := orlok.NewConfig(
		orlok.WithConnection("db.local", 5432, "app", "secret", "appdb"),
	)

	assert.Equal(t,
		"host=db.local port=5432 dbname=appdb user=app password=secret sslmode=disable",
		a.ConnectionString(&config))

	config.SSLMode = "require"
	assert.Contains(t, a.ConnectionString(&config), "sslmode=require")
}

func TestMySQLConnectionString(t *testing.T) {
	a := adapter.NewMySQLAdapter()
	config := orlok.NewConfig(
		orlok.WithConnection("db.local", 3307, "app", "secret", "appdb"),
	)

	assert.Equal(t,
		"app:secret@tcp(db.local:3307)/appdb?parseTime=true",
		a.ConnectionString(&config))

	// Host and port default when unset.
	config = orlok.Config{Username: "app", Password: "secret", Database: "appdb"}
	assert.Equal(t,
		"app:secret@tcp(localhost:3306)/appdb?parseTime=true",
		a.ConnectionString(&config))
}

func TestSQLiteConnectionString(t *testing.T) {
	a := adapter.NewSQLiteAdapter()

	config := orlok.NewConfig(orlok.WithFilePath("/tmp/app.db"))
	assert.Equal(t,
		"file:/tmp/app.db?_foreign_keys=on&_case_sensitive_like=on",
		a.ConnectionString(&config))

	config = orlok.NewConfig()
	assert.Equal(t,
		"file::memory:?_foreign_keys=on&_case_sensitive_like=on",
		a.ConnectionString(&config))
}

func TestPlaceholders(t *testing.T) {
	pg := adapter.NewPostgresAdapter()
	assert.Equal(t, "$1", pg.Placeholder(1))
	assert.Equal(t, "$7", pg.Placeholder(7))

	assert.Equal(t, "?", adapter.NewMySQLAdapter().Placeholder(3))
	assert.Equal(t, "?", adapter.NewSQLiteAdapter().Placeholder(3))
}

func TestDialectClauses(t *testing.T) {
	pg := adapter.NewPostgresAdapter()
	my := adapter.NewMySQLAdapter()
	lite := adapter.NewSQLiteAdapter()

	assert.Equal(t, " FOR UPDATE", pg.LockingClause())
	assert.True(t, pg.SupportsRowLocking())
	assert.Equal(t, "", lite.LockingClause())
	assert.False(t, lite.SupportsRowLocking())

	assert.Equal(t, "LIKE", pg.LikeOperator())
	assert.Equal(t, "LIKE BINARY", my.LikeOperator())
	assert.Equal(t, ` ESCAPE '\'`, pg.LikeEscapeClause())
	assert.Equal(t, ` ESCAPE '\\'`, my.LikeEscapeClause())

	assert.Equal(t, "", pg.AllRowsLimit())
	assert.Equal(t, "18446744073709551615", my.AllRowsLimit())
	assert.Equal(t, "-1", lite.AllRowsLimit())
}

func TestPostgresErrorClassification(t *testing.T) {
	a := adapter.NewPostgresAdapter()

	assert.True(t, a.IsUniqueConstraintViolation(&pq.Error{Code: "23505"}))
	assert.True(t, a.IsForeignKeyViolation(&pq.Error{Code: "23503"}))
	assert.False(t, a.IsUniqueConstraintViolation(&pq.Error{Code: "23503"}))

	wrapped := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	assert.True(t, a.IsUniqueConstraintViolation(wrapped))
}

func TestMySQLErrorClassification(t *testing.T) {
	a := adapter.NewMySQLAdapter()

	assert.True(t, a.IsUniqueConstraintViolation(&mysql.MySQLError{Number: 1062}))
	assert.True(t, a.IsForeignKeyViolation(&mysql.MySQLError{Number: 1452}))
	assert.True(t, a.IsForeignKeyViolation(&mysql.MySQLError{Number: 1451}))
	assert.False(t, a.IsUniqueConstraintViolation(&mysql.MySQLError{Number: 1045}))
}

func TestSQLiteErrorClassification(t *testing.T) {
	a := adapter.NewSQLiteAdapter()

	assert.True(t, a.IsUniqueConstraintViolation(sqlite3.Error{
		Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique,
	}))
	assert.True(t, a.IsUniqueConstraintViolation(sqlite3.Error{
		Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey,
	}))
	assert.True(t, a.IsForeignKeyViolation(sqlite3.Error{
		Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey,
	}))
}

func TestFallbackErrorClassification(t *testing.T) {
	// Untyped errors fall back to message matching.
	a := adapter.NewPostgresAdapter()

	assert.True(t, a.IsUniqueConstraintViolation(errors.New("duplicate key value violates unique constraint")))
	assert.True(t, a.IsForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")))
	assert.True(t, a.IsConnectionError(errors.New("dial tcp: connection refused")))
	assert.False(t, a.IsConnectionError(errors.New("syntax error")))
	assert.False(t, a.IsUniqueConstraintViolation(nil))
}

func TestRegistry(t *testing.T) {
	for _, name := range []adapter.Name{"postgres", "postgresql", "mysql", "sqlite", "sqlite3"} {
		require.True(t, adapter.Exists(name), "adapter %q", name)
		a, err := adapter.Get(name)
		require.NoError(t, err)
		assert.NotNil(t, a)
	}

	_, err := adapter.Get("oracle")
	assert.ErrorContains(t, err, `adapter "oracle" not found`)
	assert.False(t, adapter.Exists("oracle"))
	assert.Len(t, adapter.List(), 5)

	registry := adapter.NewRegistry()
	registry.Register("custom", func() adapter.Adapter { return adapter.NewSQLiteAdapter() })
	assert.True(t, registry.Exists("custom"))
	custom, err := registry.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, adapter.Name("sqlite"), custom.Name())
}
