package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, path, err := loadConfig(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if path != "" {
		t.Errorf("path = %q, want none", path)
	}
	if diff := cmp.Diff(defaultConfig(), cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, configFileName), `{
	// site layout
	"articles_dir": "posts",
	"excerpt_len": 80,
	"theme_prefixes": ["/assets"],
	"fetch": {"timeout": "5s", "allow_private": true,},
}`)
	cfg, path, err := loadConfig(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, configFileName) {
		t.Errorf("path = %q", path)
	}

	want := defaultConfig()
	want.ArticlesDir = "posts"
	want.ExcerptLen = 80
	want.ThemePrefixes = []string{"/assets"}
	want.Fetch.Timeout = duration(5 * time.Second)
	want.Fetch.AllowPrivate = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_ExplicitMissing(t *testing.T) {
	_, _, err := loadConfig(t.TempDir(), "nope.json")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `{"db": `},
		{"bad selector", `{"content_selector": "div[["}`},
		{"bad duration", `{"fetch": {"timeout": "soon"}}`},
		{"numeric duration", `{"fetch": {"timeout": 30}}`},
		{"zero excerpt", `{"excerpt_len": 0}`},
		{"empty articles", `{"articles_dir": ""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "cfg.json")
			writeFile(t, p, tt.body)
			_, _, err := loadConfig("", p)
			if !errors.Is(err, errConfigInvalid) {
				t.Errorf("err = %v, want errConfigInvalid", err)
			}
		})
	}
}
