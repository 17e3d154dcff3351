package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "lexical", cfg.Scorer.Provider)
	assert.Equal(t, "production", cfg.Log.Mode)
	assert.Equal(t, 4, cfg.Extraction.Workers)
}

func TestLoad_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 9090\nscorer:\n  provider: remote\n  base_url: http://scorer:8000\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "remote", cfg.Scorer.Provider)
	assert.Equal(t, "http://scorer:8000", cfg.Scorer.BaseURL)
	assert.Equal(t, "KEYSCOPE_SCORER_API_KEY", cfg.Scorer.APIKeyEnv)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.Scorer.Model)
	assert.Equal(t, 60, cfg.Scorer.TimeoutSecs)
	assert.Equal(t, 3, cfg.Jobs.MaxRetries)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	orig := defaultConfig()
	orig.Server.Port = 7070
	orig.Jobs.DBPath = "/tmp/jobs.db"
	require.NoError(t, Save(path, orig))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/tmp/jobs.db", cfg.Jobs.DBPath)
}
