package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiteflow/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "kiteflow.yaml", `
log_level: debug
strict_ids: true
http:
  port: "9000"
redis:
  addr: localhost:6379
plugin:
  prefix: "!"
  limit: 3
`)
	t.Setenv(config.EnvRedisAddr, "redis:6380")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.StrictIDs)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.True(t, cfg.HTTP.Metrics, "defaults survive partial sections")
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "kiteflow:flow", cfg.Redis.FlowKey)

	plugin, err := cfg.PluginSource().Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"prefix": "!", "limit": "3"}, plugin)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", config.EnvHTTPPort+"=7070\n")
	t.Setenv(config.EnvHTTPPort, "")
	os.Unsetenv(config.EnvHTTPPort)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.HTTP.Port)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, dir, "bad.yaml", "http: [1, 2"))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, dir, "unknown.yaml", "colour: blue\n"))
	assert.ErrorContains(t, err, "colour")

	t.Setenv(config.EnvHTTPPort, "eighty")
	_, err = config.Load("")
	assert.ErrorContains(t, err, config.EnvHTTPPort)
}
