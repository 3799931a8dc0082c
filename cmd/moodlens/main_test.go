package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/moodlens/internal/store"
)

// writeConfig creates a config rooted in a temp dir and returns its path
// and data dir.
func writeConfig(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "data_dir: " + dir + "\nplugins:\n  dir: " + filepath.Join(dir, "plugins") + "\n  timeout: 2s\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path, dir
}

func execute(t *testing.T, args ...string) string {
	t.Helper()

	t.Cleanup(func() {
		configPath = ""
		capturesLimit = store.DefaultListLimit
		capturesJSON = false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCapturesCommand_JSON(t *testing.T) {
	path, dir := writeConfig(t)

	st, err := store.New(filepath.Join(dir, "moodlens.db"))
	require.NoError(t, err)
	require.NoError(t, st.Captures().Create(&store.Capture{Mood: "sad", Gesture: "none", Message: "The user looks sad.Ask him Why.."}))
	require.NoError(t, st.Close())

	out := execute(t, "captures", "--config", path, "--json")

	var captures []store.Capture
	require.NoError(t, json.Unmarshal([]byte(out), &captures))
	require.Len(t, captures, 1)
	assert.Equal(t, "sad", captures[0].Mood)
}

func TestCapturesCommand_EmptyTable(t *testing.T) {
	path, _ := writeConfig(t)

	out := execute(t, "captures", "--config", path)

	assert.Contains(t, out, "CREATED")
	assert.Contains(t, out, "MOOD")
}

func TestPluginsCommand(t *testing.T) {
	path, dir := writeConfig(t)
	hook := filepath.Join(dir, "plugins", "chat-forward")
	require.NoError(t, os.MkdirAll(hook, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(hook, "plugin.json"),
		[]byte(`{"name":"chat-forward","version":"1.0.0","executable":"chat-forward","events":["capture"]}`), 0644))

	out := execute(t, "plugins", "--config", path)

	assert.Contains(t, out, "chat-forward")
	assert.Contains(t, out, "1.0.0")
}

func TestDashboardURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", dashboardURL(":8080"))
	assert.Equal(t, "http://127.0.0.1:9000", dashboardURL("127.0.0.1:9000"))
}
