package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := filepath.Join(dir, "full.json")
	require.NoError(t, os.WriteFile(full, []byte(`{
		"server_endpoint_addr": "meta:50051",
		"access_token": "abc",
		"request_timeout": "2s",
		"page_size": 5
	}`), 0o600))

	partial := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`{"access_token":"xyz"}`), 0o600))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o600))

	t.Run("flag path", func(t *testing.T) {
		os.Args = []string{"omctl", "-c", full}
		t.Setenv(ConfigEnvVar, "")

		var cfg Config
		require.NoError(t, parseJson(&cfg))
		assert.Equal(t, Config{ServerEndpointAddr: "meta:50051", AccessToken: "abc", RequestTimeout: 2 * time.Second, PageSize: 5}, cfg)
	})

	t.Run("env path keeps defaults", func(t *testing.T) {
		os.Args = []string{"omctl"}
		t.Setenv(ConfigEnvVar, partial)

		var cfg Config
		cfg.LoadDefaults()
		require.NoError(t, parseJson(&cfg))
		assert.Equal(t, "xyz", cfg.AccessToken)
		assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
		assert.Equal(t, 20, cfg.PageSize)
	})

	t.Run("no file", func(t *testing.T) {
		os.Args = []string{"omctl"}
		t.Setenv(ConfigEnvVar, "")

		cfg := Config{PageSize: 3}
		require.NoError(t, parseJson(&cfg))
		assert.Equal(t, Config{PageSize: 3}, cfg)
	})

	t.Run("errors", func(t *testing.T) {
		os.Args = []string{"omctl", "-config", bad}
		require.Error(t, parseJson(&Config{}))

		os.Args = []string{"omctl", "-config", filepath.Join(dir, "missing.json")}
		require.Error(t, parseJson(&Config{}))
	})
}
