package orlok_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meowmeowcode/orlok"
)

func TestDefaultConfig(t *testing.T) {
	config := orlok.DefaultConfig()

	assert.Equal(t, "localhost", config.Host)
	assert.Equal(t, 25, config.MaxOpenConns)
	assert.Equal(t, 10, config.MaxIdleConns)
	assert.Equal(t, time.Hour, config.ConnMaxLifetime)
	assert.Equal(t, 30*time.Second, config.ConnectTimeout)
	assert.Equal(t, "disable", config.SSLMode)
}

func TestConfigOptions(t *testing.T) {
	config := orlok.NewConfig(
		orlok.WithConnection("db.local", 5432, "app", "secret", "appdb"),
		orlok.WithSSL("require"),
		orlok.WithPooling(50, 20, 2*time.Hour),
		orlok.WithConnectTimeout(5*time.Second),
		orlok.WithOption("application_name", "orlok"),
	)

	assert.Equal(t, "db.local", config.Host)
	assert.Equal(t, 5432, config.Port)
	assert.Equal(t, "app", config.Username)
	assert.Equal(t, "secret", config.Password)
	assert.Equal(t, "appdb", config.Database)
	assert.Equal(t, "require", config.SSLMode)
	assert.Equal(t, 50, config.MaxOpenConns)
	assert.Equal(t, 20, config.MaxIdleConns)
	assert.Equal(t, 2*time.Hour, config.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, config.ConnectTimeout)
	assert.Equal(t, "orlok", config.Options["application_name"])
}

func TestConfigFilePath(t *testing.T) {
	config := orlok.NewConfig(orlok.WithFilePath("/tmp/app.db"))
	assert.Equal(t, "/tmp/app.db", config.FilePath)
}

func TestConfigCredentials(t *testing.T) {
	config := orlok.NewConfig(
		orlok.WithCredentials("user", "pass"),
		orlok.WithDatabase("db"),
	)
	assert.Equal(t, "user", config.Username)
	assert.Equal(t, "pass", config.Password)
	assert.Equal(t, "db", config.Database)
}
