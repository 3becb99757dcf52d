package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAbortsOnFatalTrap(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.AbortOnFatal())
}

func TestEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.AbortOnFatal())
	assert.Equal(t, 0, cfg.DRAMSizeBytes)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
dram_size_bytes = 67108864
abort_on_fatal_trap = false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 67108864, cfg.DRAMSizeBytes)
	assert.False(t, cfg.AbortOnFatal())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}
