package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := New("")
		require.NoError(t, err)
		assert.Equal(t, "development", cfg.Environment)
		assert.Equal(t, 3690, cfg.ServerPort)
		assert.Equal(t, "rules.json", cfg.RulesFilePath)
		assert.Equal(t, 1, cfg.WorkerProcesses)
		assert.Equal(t, 5*time.Second, cfg.DatabaseBusyTimeout)
		assert.NotEmpty(t, cfg.Hostname)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fb2shelf.yaml")
		content := "server_port: 8123\nworking_directory: /srv/library\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := New(path)
		require.NoError(t, err)
		assert.Equal(t, 8123, cfg.ServerPort)
		assert.Equal(t, "/srv/library", cfg.WorkingDirectory)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fb2shelf.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server_port: 8123\n"), 0600))
		t.Setenv("FB2SHELF_SERVER_PORT", "9001")

		cfg, err := New(path)
		require.NoError(t, err)
		assert.Equal(t, 9001, cfg.ServerPort)
	})

	t.Run("missing file is fine", func(t *testing.T) {
		cfg, err := New(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 3690, cfg.ServerPort)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		t.Setenv("FB2SHELF_ENVIRONMENT", "staging")

		_, err := New("")
		assert.Error(t, err)
	})
}
