package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("STAYLINE_TEST_PORT", "9090")

	in := []byte("port: ${STAYLINE_TEST_PORT:5080}\nhost: ${STAYLINE_TEST_MISSING:localhost}\n")
	out := string(resolveEnv(in))

	assert.Contains(t, out, "port: 9090")
	assert.Contains(t, out, "host: localhost")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apiserver.yaml")
	content := `
server:
  port: 6080
database:
  type: sqlite
  dbname: ` + filepath.Join(dir, "test.db") + `
jwt:
  secret_key: ${STAYLINE_TEST_SECRET:fallback-secret-key-for-unit-tests!!}
  duration: 24h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, cfgPath, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfgPath)
	assert.Equal(t, 6080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, "fallback-secret-key-for-unit-tests!!", cfg.JWT.SecretKey)

	// defaults applied
	assert.Equal(t, time.Second, cfg.Notifier.Interval)
	assert.Equal(t, 100, cfg.Notifier.Batch)
	assert.Equal(t, "stayline", cfg.Metrics.Namespace)
}

func TestGetDSN(t *testing.T) {
	mysql := DatabaseConfig{Type: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", DBName: "stayline"}
	assert.Equal(t, "u:p@tcp(db:3306)/stayline?charset=utf8mb4&parseTime=True&loc=Local", mysql.GetDSN())

	pg := DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "stayline", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/stayline?sslmode=disable", pg.GetDSN())

	unknown := DatabaseConfig{Type: "oracle"}
	assert.Empty(t, unknown.GetDSN())
}
