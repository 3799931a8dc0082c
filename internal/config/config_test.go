package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moodlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 400, cfg.Camera.Width)
	assert.Equal(t, 300, cfg.Camera.Height)
	assert.Equal(t, 30, cfg.Camera.FPS)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 5*time.Second, cfg.Plugins.Timeout)
	assert.Equal(t, filepath.Join(cfg.DataDir, "plugins"), cfg.Plugins.Dir)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := writeFile(t, `
listen: "127.0.0.1:9000"
camera:
  device: 2
  fps: 15
mediapipe:
  python: /opt/venv/bin/python3
plugins:
  timeout: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, 2, cfg.Camera.Device)
	assert.Equal(t, 15, cfg.Camera.FPS)
	assert.Equal(t, 400, cfg.Camera.Width, "unset fields keep defaults")
	assert.Equal(t, "/opt/venv/bin/python3", cfg.MediaPipe.Python)
	assert.Equal(t, 2*time.Second, cfg.Plugins.Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "camera: [",
		"zero fps":     "camera:\n  fps: 0\n",
		"negative dev": "camera:\n  device: -1\n",
		"zero width":   "camera:\n  width: 0\n",
		"no timeout":   "plugins:\n  timeout: 0s\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, content))
			assert.Error(t, err)
		})
	}
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.DataDir = filepath.Join(root, "data")
	cfg.Plugins.Dir = filepath.Join(root, "data", "plugins")

	require.NoError(t, cfg.EnsureDirs())

	assert.DirExists(t, cfg.DataDir)
	assert.DirExists(t, cfg.Plugins.Dir)
	assert.Equal(t, filepath.Join(cfg.DataDir, "moodlens.db"), cfg.DBPath())
}
