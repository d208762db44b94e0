package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "dGVzdC1zZWNyZXQtdGVzdC1zZWNyZXQtdGVzdC1zZWNyZXQ=" // 32 bytes

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsAndSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_B64", testSecret)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "memory", cfg.Cache.Kind)
	assert.Equal(t, time.Hour, cfg.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL())
	assert.Equal(t, time.Hour, cfg.SweepInterval())
}

func TestLoad_MissingSecretFails(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_B64")
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	t.Setenv("JWT_SECRET_B64", testSecret)
	t.Setenv("SERVER_ADDR", ":9999")

	path := writeYAML(t, `
app:
  env: prod
server:
  addr: ":8081"
storage:
  driver: postgres
  dsn: "postgres://localhost/auth"
jwt:
  refresh_ttl: 72h
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, ":9999", cfg.Server.Addr, "env pisa YAML")
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 72*time.Hour, cfg.RefreshTTL())
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("JWT_SECRET_B64", testSecret)

	t.Run("driver desconocido", func(t *testing.T) {
		path := writeYAML(t, "storage:\n  driver: mongo\n")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("postgres sin dsn", func(t *testing.T) {
		path := writeYAML(t, "storage:\n  driver: postgres\n")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("redis sin addr", func(t *testing.T) {
		path := writeYAML(t, "cache:\n  kind: redis\n")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("ttl inválido", func(t *testing.T) {
		path := writeYAML(t, "jwt:\n  access_ttl: nope\n")
		_, err := Load(path)
		assert.Error(t, err)
	})
}
