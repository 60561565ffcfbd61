package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WAREHOUSEDASH_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	require.Equal(t, 15*time.Second, cfg.API.Timeout)
	require.Equal(t, 10, cfg.UI.PageSize)
	require.Equal(t, "en", cfg.UI.Locale)
	require.Equal(t, 2*time.Second, cfg.UI.PasswordCloseDelay)
	require.Equal(t, "WAREHOUSEDASH_TOKEN", cfg.API.TokenEnv)
	require.Equal(t, ":8000", cfg.DevServer.Addr)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "https://wh.example.com"
timeout = "3s"

[ui]
page_size = 25
locale = "de"
`), 0o600))
	t.Setenv("WAREHOUSEDASH_CONFIG", path)
	t.Setenv("WAREHOUSEDASH_UI_PAGE_SIZE", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://wh.example.com", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, 5, cfg.UI.PageSize)
	require.Equal(t, "de", cfg.UI.Locale)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api\nbase_url ="), 0o600))
	t.Setenv("WAREHOUSEDASH_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
}

func TestResolveToken(t *testing.T) {
	t.Setenv("WH_TEST_TOKEN", "")
	cfg := Config{API: APIConfig{Token: " from-file ", TokenEnv: "WH_TEST_TOKEN"}}
	require.Equal(t, "from-file", cfg.ResolveToken())

	t.Setenv("WH_TEST_TOKEN", "from-env")
	require.Equal(t, "from-env", cfg.ResolveToken())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("WAREHOUSEDASH_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.UI.PageSize = 20
	cfg.UI.Locale = "fr"
	cfg.API.Token = "secret"
	require.NoError(t, Save(cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret")

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, 20, loaded.UI.PageSize)
	require.Equal(t, "fr", loaded.UI.Locale)
	require.Equal(t, cfg.UI.PasswordCloseDelay, loaded.UI.PasswordCloseDelay)
}
