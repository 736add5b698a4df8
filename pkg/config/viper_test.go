package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 15*time.Second, cfg.Timeout)
	require.Equal(t, 2, cfg.MaxRetries)
	require.Equal(t, 3*time.Second, cfg.RetryDelay)
	require.Equal(t, 3*time.Second, cfg.Politeness)
	require.Equal(t, "Recipe Book", cfg.BookTitle)
	require.Equal(t, "Recipe Collector", cfg.Author)
	require.Equal(t, "recipes.epub", cfg.OutputPath)
	require.Equal(t, "recipe_links.md", cfg.LinksPath)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
development: true
fetch:
  timeout: 5s
pipeline:
  max_retries: 1
  retry_delay: 1s
book:
  title: Family Cookbook
  output: family.epub
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.Development)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, 1, cfg.MaxRetries)
	require.Equal(t, time.Second, cfg.RetryDelay)
	require.Equal(t, "Family Cookbook", cfg.BookTitle)
	require.Equal(t, "family.epub", cfg.OutputPath)
	// Untouched keys keep their defaults.
	require.Equal(t, 3*time.Second, cfg.Politeness)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RECIPEPRESS_BOOK_TITLE", "Env Cookbook")
	t.Setenv("RECIPEPRESS_PIPELINE_RETRY_DELAY", "7s")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "Env Cookbook", cfg.BookTitle)
	require.Equal(t, 7*time.Second, cfg.RetryDelay)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		Timeout:    time.Second,
		RetryDelay: time.Second,
		BookTitle:  "T",
		OutputPath: "o.epub",
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"zero retry delay", func(c *Config) { c.RetryDelay = 0 }},
		{"negative politeness", func(c *Config) { c.Politeness = -time.Second }},
		{"empty title", func(c *Config) { c.BookTitle = "" }},
		{"empty output", func(c *Config) { c.OutputPath = "" }},
	}
	for _, tc := range cases {
		cfg := valid
		tc.mutate(&cfg)
		require.Error(t, cfg.Validate(), tc.name)
	}
}
