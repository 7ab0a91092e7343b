package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JASKBOOKS_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "gemini", cfg.LLM.Provider)
	require.Equal(t, "GEMINI_API_KEY", cfg.LLM.APIKeyEnv)
	require.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	require.Equal(t, "₹", cfg.UI.CurrencySymbol)
	require.Equal(t, "Asia/Kolkata", cfg.UI.Timezone)
	require.Contains(t, cfg.Database.Path, "jaskbooks.db")
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("JASKBOOKS_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.UI.CurrencySymbol = "$"
	cfg.LLM.APIKey = "sk-test"
	cfg.Database.Path = "/tmp/books.db"
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, "$", loaded.UI.CurrencySymbol)
	require.Equal(t, "sk-test", loaded.LLM.APIKey)
	require.Equal(t, "/tmp/books.db", loaded.Database.Path)
}

func TestResolveAPIKeyPrefersEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	cfg := Config{LLM: LLMConfig{APIKeyEnv: "GEMINI_API_KEY", APIKey: "from-file"}}
	require.Equal(t, "from-env", ResolveAPIKey(cfg))

	t.Setenv("GEMINI_API_KEY", "")
	require.Equal(t, "from-file", ResolveAPIKey(cfg))
}
