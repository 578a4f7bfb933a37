package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
faq:
  similarityThreshold: 0.65
  brand: "Clinique Vision"
catalog:
  file: "seed.yaml"
cache:
  ttl: 2m
`), 0o600))

	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("FAQ_CONTACT_PHONE=01 23 45 67 89\nHTTP_ADDRESS=:7070\n"), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ENV_FILE", envPath)
	t.Cleanup(func() { _ = os.Unsetenv("FAQ_CONTACT_PHONE") })
	t.Setenv("HTTP_ADDRESS", ":8181")
	t.Setenv("FAQ_KEYWORD_WEIGHT", "0.25")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8181", cfg.HTTP.Address)
	require.InDelta(t, 0.65, cfg.FAQ.SimilarityThreshold, 1e-9)
	require.InDelta(t, 0.25, cfg.FAQ.KeywordWeight, 1e-9)
	require.Equal(t, "Clinique Vision", cfg.FAQ.Brand)
	require.Equal(t, "01 23 45 67 89", os.Getenv("FAQ_CONTACT_PHONE"))
	require.Equal(t, "01 23 45 67 89", cfg.FAQ.ContactPhone)
	require.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	require.NoError(t, loadDotEnv())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "threshold out of range", mutate: func(c *Config) { c.FAQ.SimilarityThreshold = 1.5 }, errMsg: "similarityThreshold"},
		{name: "keyword weight out of range", mutate: func(c *Config) { c.FAQ.KeywordWeight = -0.1 }, errMsg: "keywordWeight"},
		{name: "no catalog location", mutate: func(c *Config) { c.Catalog.File = "" }, errMsg: "catalog requires"},
		{name: "valkey without addr", mutate: func(c *Config) { c.Cache.Backend = CacheBackendValkey }, errMsg: "cache.valkey.addr"},
		{name: "unknown provider", mutate: func(c *Config) { c.Embedder.Provider = "bert" }, errMsg: "embedder.provider"},
		{name: "conversation without dsn", mutate: func(c *Config) { c.Conversation.Enabled = true }, errMsg: "conversation.dsn"},
		{name: "half configured admin", mutate: func(c *Config) { c.Admin.Secret = "s" }, errMsg: "admin.passwordHash"},
		{name: "empty cookie name", mutate: func(c *Config) { c.HTTP.Session.CookieName = "" }, errMsg: "cookieName"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestConversationDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.Catalog.DSN = "postgres://catalog"
	require.Equal(t, "postgres://catalog", cfg.ConversationDSN())
	cfg.Conversation.DSN = "sqlite:turns.db"
	require.Equal(t, "sqlite:turns.db", cfg.ConversationDSN())
}
