package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/historyviewer/internal/config"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, config.StoreMemory, cfg.Store.Backend)
	assert.Equal(t, []string{"SecurityID"}, cfg.Diff.ProtectedFields)
	assert.True(t, cfg.Diff.SanitizeEnabled())
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "historyviewer.yaml", `
addr: ":9090"
store:
  backend: redis
  redis:
    addr: redis:6379
    ttl: 45m
    lock: true
diff:
  sanitize: false
forms:
  Page:
    - name: Title
      title: Page name
    - type: composite
      name: Main
      children:
        - name: Content
          kind: html
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, config.StoreRedis, cfg.Store.Backend)
	assert.Equal(t, 45*time.Minute, cfg.Store.Redis.TTL.Duration)
	assert.True(t, cfg.Store.Redis.Lock)
	assert.Equal(t, "historyviewer:selection:", cfg.Store.Redis.Prefix, "unset keys keep defaults")
	assert.False(t, cfg.Diff.SanitizeEnabled())

	require.Len(t, cfg.Forms["Page"], 2)
	assert.Equal(t, domain.KindHTML, cfg.Forms["Page"][1].Children[0].Kind)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "historyviewer.json", `{"store":{"backend":"file","dir":"/tmp/sel"},"diff":{"protected_fields":["Token"]}}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.StoreFile, cfg.Store.Backend)
	assert.Equal(t, "/tmp/sel", cfg.Store.Dir)
	assert.Equal(t, []string{"Token"}, cfg.Diff.ProtectedFields)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(config.EnvAddr, ":7000")
	t.Setenv(config.EnvRedisAddr, "cache:6379")
	t.Setenv(config.EnvLogLevel, "debug")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := config.Load(write(t, "bad.yaml", "store:\n  backend: etcd\n"))
	assert.ErrorContains(t, err, "etcd")

	_, err = config.Load(write(t, "bad-form.yaml", "forms:\n  Page:\n    - type: grid\n      name: x\n"))
	assert.ErrorContains(t, err, "form Page")

	_, err = config.Load(write(t, "bad-ttl.yaml", "store:\n  redis:\n    ttl: soon\n"))
	assert.Error(t, err)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
