package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9001
llm:
  provider: gemini
  model: small
database:
  host: db.local
  username: milo
  password: secret
  database: alumni
  parse_time: true
session:
  store: redis
  redis_url: redis://localhost:6379/0
`)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("DATABASE_USERNAME", "")
	t.Setenv("DATABASE_PASSWORD", "")

	cfg := LoadFrom(path)

	assert.Equal(t, ":9001", cfg.Server.Addr)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "small", cfg.LLM.Model)
	assert.Equal(t, "gpt-4o", cfg.LLM.ChatModel, "chat model should default")
	assert.Equal(t, "milo:secret@tcp(db.local:3306)/alumni?charset=utf8mb4&parseTime=true", cfg.DB.DSN)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "sample_data.json", cfg.Data.SampleFile)
	assert.Equal(t, "yale.db", cfg.Data.SQLitePath)
}

func TestEnvOverridesWin(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres_url: postgres://from-file
llm:
  api_key: file-key
`)
	t.Setenv("DATABASE_URL", "postgres://from-env")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("REDIS_URL", "redis://env:6379/1")

	cfg := LoadFrom(path)

	assert.Equal(t, "postgres://from-env", cfg.DB.PostgresURL)
	assert.Equal(t, "openai-key", cfg.LLM.APIKey)
	assert.Equal(t, "redis://env:6379/1", cfg.Session.RedisURL)
	assert.Empty(t, cfg.DB.DSN, "no mysql host means no dsn")
}

func TestMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("SESSION_STORE", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("DB_DSN", "user:pw@tcp(h:3306)/d")

	cfg := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "user:pw@tcp(h:3306)/d", cfg.DB.DSN)
}
