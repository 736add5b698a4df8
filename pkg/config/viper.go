// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file and environment variables, providing a unified configuration system.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries every tunable the CLI and pipeline consume.
type Config struct {
	// Development switches the logger to the human-readable encoder.
	Development bool

	// Fetch settings.
	UserAgent string
	Timeout   time.Duration

	// Pacing settings.
	MaxRetries int
	RetryDelay time.Duration
	Politeness time.Duration

	// Book settings.
	BookTitle  string
	Author     string
	OutputPath string

	// LinksPath is the markdown link cache location.
	LinksPath string
}

// Load initializes Viper, applies defaults, reads the optional config file
// plus RECIPEPRESS_* environment variables, and returns the validated Config.
// An explicit cfgFile wins over the search paths.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/recipepress/")
		v.AddConfigPath("$HOME/.recipepress")
	}

	v.SetDefault("development", false)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("pipeline.max_retries", 2)
	v.SetDefault("pipeline.retry_delay", "3s")
	v.SetDefault("pipeline.politeness", "3s")
	v.SetDefault("book.title", "Recipe Book")
	v.SetDefault("book.author", "Recipe Collector")
	v.SetDefault("book.output", "recipes.epub")
	v.SetDefault("links.path", "recipe_links.md")

	v.SetEnvPrefix("RECIPEPRESS") // e.g. RECIPEPRESS_BOOK_OUTPUT=family.epub
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file is fine when we are on the default search path;
		// defaults and environment variables carry the run.
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Development: v.GetBool("development"),
		UserAgent:   v.GetString("fetch.user_agent"),
		Timeout:     v.GetDuration("fetch.timeout"),
		MaxRetries:  v.GetInt("pipeline.max_retries"),
		RetryDelay:  v.GetDuration("pipeline.retry_delay"),
		Politeness:  v.GetDuration("pipeline.politeness"),
		BookTitle:   v.GetString("book.title"),
		Author:      v.GetString("book.author"),
		OutputPath:  v.GetString("book.output"),
		LinksPath:   v.GetString("links.path"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return errors.New("fetch.timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("pipeline.max_retries must be >= 0")
	}
	if c.RetryDelay <= 0 {
		return errors.New("pipeline.retry_delay must be positive")
	}
	if c.Politeness < 0 {
		return errors.New("pipeline.politeness must be >= 0")
	}
	if c.BookTitle == "" {
		return errors.New("book.title must not be empty")
	}
	if c.OutputPath == "" {
		return errors.New("book.output must not be empty")
	}
	return nil
}
