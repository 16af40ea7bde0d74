package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 50, cfg.MaxRounds)
	assert.Equal(t, 120*time.Second, cfg.CommandTimeout)
	assert.Equal(t, 100, cfg.MaxSearchResults)
	assert.Equal(t, ".", cfg.WorkingRoot)
	assert.False(t, cfg.Confine)
}

func TestLoadFileOverlaysKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	doc := "model: gpt-4o-mini\nmax_rounds: 7\ncommand_timeout: 5s\nconfine: true\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadFile(DefaultConfig(), path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 7, cfg.MaxRounds)
	assert.Equal(t, 5*time.Second, cfg.CommandTimeout)
	assert.True(t, cfg.Confine)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(DefaultConfig(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("max_rounds: [1, 2"), 0o644))
	_, err = LoadFile(DefaultConfig(), bad)
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY":  " sk-test ",
		"OPENAI_BASE_URL": "http://localhost:11434/v1",
	}
	cfg := ApplyEnv(DefaultConfig(), func(k string) string { return env[k] })

	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
	assert.Equal(t, DefaultModel, cfg.Model, "unset OPENAI_MODEL keeps the current model")
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	cfg := Normalize(Config{Model: "  m  ", MaxRounds: -3, MaxTokens: -1})

	assert.Equal(t, "m", cfg.Model)
	assert.Equal(t, ".", cfg.WorkingRoot)
	assert.Equal(t, DefaultMaxRounds, cfg.MaxRounds)
	assert.Equal(t, 0, cfg.MaxTokens)
	assert.Equal(t, DefaultCommandTimeout, cfg.CommandTimeout)
	assert.Equal(t, DefaultSearchTimeout, cfg.SearchTimeout)
	assert.Equal(t, DefaultMaxOutputBytes, cfg.MaxOutputBytes)
}

func TestResolveWorkingRoot(t *testing.T) {
	dir := t.TempDir()
	abs, err := ResolveWorkingRoot(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))

	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = ResolveWorkingRoot(file)
	require.ErrorIs(t, err, ErrInvalidWorkRoot)

	_, err = ResolveWorkingRoot(filepath.Join(dir, "nope"))
	require.ErrorIs(t, err, ErrInvalidWorkRoot)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkingRoot = t.TempDir()
	require.ErrorIs(t, Validate(cfg), ErrMissingAPIKey)

	cfg.APIKey = "k"
	cfg.Model = ""
	require.ErrorIs(t, Validate(cfg), ErrMissingModel)

	cfg.Model = "m"
	require.NoError(t, Validate(cfg))
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, DefaultLogLevel, Normalize(Config{}).LogLevel)
	assert.Equal(t, "info", Normalize(Config{LogLevel: " INFO "}).LogLevel)
	assert.Equal(t, "debug", Normalize(Config{LogLevel: "error", Verbose: true}).LogLevel)
}
