package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(envConfigPath, t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server != "http://localhost:5000" {
		t.Fatalf("server = %q", cfg.Server)
	}
	if cfg.Timeout != 2*time.Minute || cfg.Progress != 3*time.Second || cfg.Toast != 3*time.Second {
		t.Fatalf("durations = %v %v %v", cfg.Timeout, cfg.Progress, cfg.Toast)
	}
	if !cfg.Datestamp || cfg.Mode != "single" {
		t.Fatalf("datestamp=%t mode=%q", cfg.Datestamp, cfg.Mode)
	}
	if strings.HasPrefix(cfg.DownloadsPath(), "~") {
		t.Fatalf("downloads not expanded: %q", cfg.DownloadsPath())
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "server: http://exam.local:8080/\ntoast: 5s\nmode: multi\ndatestamp: false\n"
	if err := os.WriteFile(filepath.Join(dir, configName+".yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(envConfigPath, dir)
	t.Setenv("EXAMMERGE_TOAST", "7s")
	t.Setenv("EXAMMERGE_DOWNLOADS", filepath.Join(dir, "out"))

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server != "http://exam.local:8080" {
		t.Fatalf("server = %q", cfg.Server)
	}
	if cfg.Toast != 7*time.Second {
		t.Fatalf("env should override file, toast = %v", cfg.Toast)
	}
	if cfg.Mode != "multi" || cfg.Datestamp {
		t.Fatalf("mode=%q datestamp=%t", cfg.Mode, cfg.Datestamp)
	}
	if cfg.Downloads != filepath.Join(dir, "out") {
		t.Fatalf("downloads = %q", cfg.Downloads)
	}
	if cfg.File == "" {
		t.Fatalf("expected config file to be recorded")
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, dotEnvName), []byte("EXAMMERGE_MODE=multi\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv(envConfigPath, dir)
	// godotenv sets the variable for the process; restore it afterwards.
	t.Setenv("EXAMMERGE_MODE", "")
	os.Unsetenv("EXAMMERGE_MODE")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "multi" {
		t.Fatalf("mode = %q", cfg.Mode)
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	good := Config{
		Server:    "http://localhost:5000",
		Downloads: "/tmp/x",
		Timeout:   time.Second,
		Progress:  time.Second,
		Toast:     time.Second,
		Mode:      "single",
	}
	if err := ValidateConfig(&good); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	tests := map[string]func(c *Config){
		"relative server": func(c *Config) { c.Server = "localhost" },
		"zero timeout":    func(c *Config) { c.Timeout = 0 },
		"unknown mode":    func(c *Config) { c.Mode = "many" },
		"unknown level":   func(c *Config) { c.LogLevel = "trace" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := good
			mutate(&c)
			if err := ValidateConfig(&c); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestDownloadsSaveAndList(t *testing.T) {
	base := t.TempDir()
	d, err := OpenDownloads(base)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	first, err := d.Save("가나고_1학년_서술형.pdf", []byte("one"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first != filepath.Join(base, "가나고_1학년_서술형.pdf") {
		t.Fatalf("path = %q", first)
	}
	second, err := d.Save("가나고_1학년_서술형.pdf", []byte("two"))
	if err != nil {
		t.Fatalf("save again: %v", err)
	}
	if filepath.Base(second) != "가나고_1학년_서술형-1.pdf" {
		t.Fatalf("collision name = %q", second)
	}
	if data, _ := os.ReadFile(first); string(data) != "one" {
		t.Fatalf("first file overwritten: %q", data)
	}
	if _, err := d.Save("../escape.pdf", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "escape.pdf")); err != nil {
		t.Fatalf("expected traversal to be flattened: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	saved := d.List(context.Background())
	if len(saved) != 3 {
		t.Fatalf("expected 3 pdfs, got %+v", saved)
	}
}
