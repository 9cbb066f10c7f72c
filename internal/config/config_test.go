package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Setenv("OTL_TAO_COMMAND", "")
	t.Setenv("OTL_ADDRESS", "")
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "python", cfg.Tao.CommandPrefix)
	assert.Equal(t, "r1.g", cfg.Plot.LayoutGraph)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle())
	assert.Equal(t, time.Minute, cfg.CommandTimeout())
	assert.Len(t, cfg.PlotOptions(), 3)

	pc := cfg.ProcessConfig()
	assert.Equal(t, "tao", pc.Command)
	assert.Equal(t, 30*time.Second, pc.StartupTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Tao.Command = "/opt/bmad/bin/tao"
	cfg.Tao.Args = []string{"-init", "lat.init", "-noplot"}
	cfg.Render.Width = 1600
	cfg.Server.EnableRequestLogging = false
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadPartialFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plot:\n  region: top\nrender:\n  height: 600\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "top", cfg.Plot.Region)
	assert.Equal(t, 600, cfg.Render.Height)
	assert.Equal(t, 1000, cfg.Render.Width, "unset keys keep their defaults")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("OTL_TAO_COMMAND", "/usr/local/bin/tao")
	t.Setenv("OTL_ADDRESS", ":9000")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/tao", cfg.Tao.Command)
	assert.Equal(t, ":9000", cfg.Server.Address)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tao: [unclosed\n"), 0o644))
	_, err := Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("render:\n  width: 0\nserver:\n  max_sessions: -1\n"), 0o644))
	_, err = Load(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid image size")
	assert.Contains(t, err.Error(), "server.max_sessions")
}
