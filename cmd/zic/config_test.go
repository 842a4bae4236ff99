package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - /var/tzdb/2024a
  - /var/tzdb/local-patches
out: /var/zoneinfo
limit_year: 2125
workers: 8
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/var/tzdb/2024a", "/var/tzdb/local-patches"}, cfg.Sources)
	assert.Equal(t, "/var/zoneinfo", cfg.Out)
	assert.Equal(t, 2125, cfg.LimitYear)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("outt: /oops\n"), 0o644))

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestCompileConfigFlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources: [/var/tzdb/2024a]
out: /var/zoneinfo
workers: 8
`), 0o644))

	cmd := compileCmd
	require.NoError(t, cmd.Flags().Set("config", path))
	require.NoError(t, cmd.Flags().Set("out", "/tmp/override"))
	require.NoError(t, cmd.Flags().Set("workers", "2"))

	cfg, err := compileConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"/var/tzdb/2024a"}, cfg.Sources)
	assert.Equal(t, "/tmp/override", cfg.Out)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 0, cfg.LimitYear)
}
