package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/flagx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	clearEnv(t)

	path := writeTempJSON(t, "flag.json", map[string]any{
		"storage_backend":   "s3",
		"s3_bucket":         "health",
		"s3_region":         "eu-west-1",
		"s3_access_key":     "ak",
		"s3_secret_key":     "sk",
		"redis_db":          3,
		"inference_timeout": "30s",
		"log_backend":       "zap",
		"passphrase":        "pw",
	})

	t.Run("loads from json, keeps unspecified fields", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-config", path})

		assert.Equal(t, BackendS3, cfg.StorageBackend)
		assert.Equal(t, "health", cfg.S3Bucket)
		assert.Equal(t, "eu-west-1", cfg.S3Region)
		assert.Equal(t, "ak", cfg.S3AccessKey)
		assert.Equal(t, "sk", cfg.S3SecretKey)
		assert.Equal(t, 3, cfg.RedisDB)
		assert.Equal(t, 30*time.Second, cfg.InferenceTimeout)
		assert.Equal(t, "zap", cfg.LogBackend)
		assert.Equal(t, "pw", cfg.Passphrase)

		assert.Equal(t, "medigenie.db", cfg.SQLitePath)
		assert.Equal(t, "gemini-3-pro-preview", cfg.Model)
	})

	t.Run("no config and no flags means no changes", func(t *testing.T) {
		cfg := &Config{SQLitePath: "keep.db", InferenceTimeout: time.Minute}
		parseJson(cfg, nil)
		assert.Equal(t, &Config{SQLitePath: "keep.db", InferenceTimeout: time.Minute}, cfg)
	})

	t.Run("environment names the file", func(t *testing.T) {
		t.Setenv(flagx.ConfigEnvVar, path)
		cfg := &Config{}
		parseJson(cfg, nil)
		assert.Equal(t, "health", cfg.S3Bucket)
	})

	t.Run("flags override json", func(t *testing.T) {
		cfg := load([]string{"-c", path, "-b", "override", "-t", "5"})
		assert.Equal(t, "override", cfg.S3Bucket)
		assert.Equal(t, 5*time.Second, cfg.InferenceTimeout)
		assert.Equal(t, BackendS3, cfg.StorageBackend)
	})
}

func Test_parseJson_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file panics", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope.json")
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", missing}) })
	})

	t.Run("bad json panics", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", path}) })
	})

	t.Run("bad duration panics", func(t *testing.T) {
		path := writeTempJSON(t, "dur.json", map[string]any{"inference_timeout": true})
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", path}) })
	})
}
