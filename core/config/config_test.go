package config

import (
	"os"
	"path/filepath"
	"testing"

	"manifest-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "manifests", cfg.Storage.Bucket)
	assert.Equal(t, 30, cfg.Storage.TimeoutSeconds)
	assert.Equal(t, reconcile.DefaultSettings(), cfg.Reconcile)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("RECONCILE_IGNORED_KEYS", "url,token")
	t.Setenv("RECONCILE_MASTER_TEMPLATE", "template")
	t.Setenv("RECONCILE_WORKERS", "4")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, []string{"url", "token"}, cfg.Reconcile.IgnoredKeys)
	assert.Equal(t, "template", cfg.Reconcile.MasterTemplate)
	assert.Equal(t, 4, cfg.Reconcile.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORAGE_BUCKET=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("STORAGE_BUCKET") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Storage.Bucket)
}
