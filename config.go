package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/tailscale/hujson"
)

// configFileName is looked up in the working directory when --config is not given.
const configFileName = ".fbdiary.json"

// Config holds the settings shared by every subcommand. Values come from
// defaultConfig, then the config file, then per-command flags.
type Config struct {
	ArticlesDir       string      `json:"articles_dir"`
	DB                string      `json:"db"`
	Home              string      `json:"home"`
	ContentSelector   string      `json:"content_selector"`
	PlaceholderPhrase string      `json:"placeholder_phrase"`
	MinTextLen        int         `json:"min_text_len"`
	ExcerptLen        int         `json:"excerpt_len"`
	ThumbWidth        int         `json:"thumb_width"`
	ThemePrefixes     []string    `json:"theme_prefixes"`
	Fetch             FetchConfig `json:"fetch"`
}

// FetchConfig controls remote image downloads.
type FetchConfig struct {
	Timeout      duration `json:"timeout"`
	UserAgent    string   `json:"user_agent"`
	AllowPrivate bool     `json:"allow_private"`
	MaxBytes     int64    `json:"max_bytes"`
}

// duration decodes "30s"-style strings.
type duration time.Duration

func (d *duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

func defaultConfig() Config {
	return Config{
		ArticlesDir:       "articles",
		DB:                "articles.db",
		Home:              "home.html",
		ContentSelector:   "div.article-content",
		PlaceholderPhrase: "Yao Min posted something via Microsoft",
		MinTextLen:        30,
		ExcerptLen:        160,
		ThumbWidth:        360,
		ThemePrefixes:     []string{"/rte", "/static", "skycity_cutout"},
		Fetch: FetchConfig{
			Timeout:   duration(30 * time.Second),
			UserAgent: defaultUA,
			MaxBytes:  64 * 1024 * 1024,
		},
	}
}

// loadConfig returns the defaults overlaid with the config file. An explicit
// path must exist; the implicit .fbdiary.json in workDir is optional.
func loadConfig(workDir, explicitPath string) (Config, string, error) {
	cfg := defaultConfig()

	path := explicitPath
	mustExist := path != ""
	if path == "" {
		path = configFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return cfg, "", validateConfig(cfg)
		}
		return Config{}, "", fmt.Errorf("reading config: %w", err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}
	// Unmarshal onto the defaults so absent keys keep their default value.
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, "", fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

func validateConfig(cfg Config) error {
	if cfg.ArticlesDir == "" {
		return fmt.Errorf("%w: articles_dir is empty", errConfigInvalid)
	}
	if _, err := cascadia.Compile(cfg.ContentSelector); err != nil {
		return fmt.Errorf("%w: content_selector %q: %w", errConfigInvalid, cfg.ContentSelector, err)
	}
	if cfg.MinTextLen < 0 || cfg.ExcerptLen <= 0 || cfg.ThumbWidth <= 0 {
		return fmt.Errorf("%w: min_text_len, excerpt_len and thumb_width must be positive", errConfigInvalid)
	}
	if cfg.Fetch.Timeout <= 0 {
		return fmt.Errorf("%w: fetch.timeout must be positive", errConfigInvalid)
	}
	return nil
}
