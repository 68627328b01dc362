package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangxinyong12/auto-fill-extension/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "autofill", cfg.Logger.ServiceName)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, time.Second, cfg.Browser.PostLoadWait)
	assert.Equal(t, "gpt-4o-mini", cfg.Generator.Model)
	assert.Equal(t, 20, cfg.Generator.RequestsPerMinute)
	assert.True(t, cfg.Sites.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logger:
  level: debug
  format: json
browser:
  headless: false
  post_load_wait: 2s
generator:
  model: gpt-4o
sites:
  enabled: false
  allowed_domains:
    - example.com
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 2*time.Second, cfg.Browser.PostLoadWait)
	assert.Equal(t, "gpt-4o", cfg.Generator.Model)
	assert.False(t, cfg.Sites.Enabled)
	assert.Equal(t, []string{"example.com"}, cfg.Sites.AllowedDomains)
}

func TestLoadBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger: [not: valid"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestSitesAllows(t *testing.T) {
	sites := config.SitesConfig{AllowedDomains: []string{"Example.com"}}

	assert.True(t, sites.Allows("localhost"), "development hosts are always allowed")
	assert.True(t, sites.Allows("127.0.0.1"))
	assert.True(t, sites.Allows("example.com"), "allow-list matching is case-insensitive")
	assert.True(t, sites.Allows("EXAMPLE.COM"))
	assert.False(t, sites.Allows("evil.com"))
}

func TestIsPermanentlyAllowed(t *testing.T) {
	assert.True(t, config.IsPermanentlyAllowed("localhost"))
	assert.True(t, config.IsPermanentlyAllowed("LOCALHOST"))
	assert.False(t, config.IsPermanentlyAllowed("example.com"))
}
