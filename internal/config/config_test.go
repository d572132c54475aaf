package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults with no file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, ":5000", cfg.Listen)
		assert.Equal(t, "dungeon-master-system", cfg.Namespace)
		assert.True(t, cfg.Orchestrator)
		assert.Equal(t, "/metrics", cfg.MetricsPath)
		assert.Empty(t, cfg.LockFile)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "portal.toml")
		require.NoError(t, os.WriteFile(path, []byte(
			"listen = \":8080\"\nnamespace = \"games\"\norchestrator = false\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Listen)
		assert.Equal(t, "games", cfg.Namespace)
		assert.False(t, cfg.Orchestrator)
		// Untouched keys keep their defaults.
		assert.Equal(t, "/metrics", cfg.MetricsPath)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "portal.toml")
		require.NoError(t, os.WriteFile(path, []byte("listen = \":8080\"\n"), 0o644))
		t.Setenv("PORTAL_LISTEN", ":9999")
		t.Setenv("PORTAL_LOCK_FILE", "/tmp/portal.lock")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":9999", cfg.Listen)
		assert.Equal(t, "/tmp/portal.lock", cfg.LockFile)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := Load("/does/not/exist.toml")
		assert.Error(t, err)
	})
}
