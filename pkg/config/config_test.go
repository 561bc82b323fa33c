package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileName, `
[engine]
max_suggestions = 8
accept_distance = 1

[keys]
layout = "fdsjkl"

[dict]
active = "custom"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Engine.MaxSuggestions)
	assert.Equal(t, 1, cfg.Engine.AcceptDistance)
	assert.Equal(t, "fdsjkl", cfg.Keys.Layout)
	assert.Equal(t, "custom", cfg.Dict.Active)
	// untouched keys keep their defaults
	assert.Equal(t, 300, cfg.Keys.ChordTimeoutMs)
	assert.Equal(t, 60, cfg.Server.MaxWordLen)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	// layout has the wrong type, so strict decoding fails
	path := writeFile(t, t.TempDir(), FileName, `
[engine]
max_suggestions = 3

[keys]
layout = 42
chord_timeout_ms = 150

[cli]
show_candidates = false
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Engine.MaxSuggestions)
	assert.Equal(t, "asdjkl", cfg.Keys.Layout)
	assert.Equal(t, 150, cfg.Keys.ChordTimeoutMs)
	assert.False(t, cfg.CLI.ShowCandidates)
}

func TestLoadConfigGarbage(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileName, "this is [not toml")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigNormalizes(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileName, `
[engine]
max_suggestions = 0
char_candidates = -1

[keys]
layout = ""
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Engine.MaxSuggestions)
	assert.Equal(t, 3, cfg.Engine.CharCandidates)
	assert.Equal(t, "asdjkl", cfg.Keys.Layout)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mine.toml", "[engine]\nmax_suggestions = 7\n")

	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 7, cfg.Engine.MaxSuggestions)

	t.Setenv(EnvConfig, path)
	cfg, used, err = LoadConfigWithPriority("")
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 7, cfg.Engine.MaxSuggestions)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "BRAILLE_DATA_DIR=/tmp/braille-data\nBRAILLE_DEBUG=true\n")

	// register the vars so the test cleans them up
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvDebug, "")
	os.Unsetenv(EnvDataDir)
	os.Unsetenv(EnvDebug)

	LoadEnv(envFile, filepath.Join(dir, "missing.env"))
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, "/tmp/braille-data", cfg.DataDir)
	assert.True(t, cfg.Debug)

	t.Setenv(EnvDebug, "sometimes")
	cfg = DefaultConfig()
	cfg.ApplyEnv()
	assert.False(t, cfg.Debug)
}
