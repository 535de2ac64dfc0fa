package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	envPrefix     = "EXAMMERGE"
	envConfigPath = "EXAMMERGE_CONFIG_PATH"
	configName    = ".exammerge" // .yaml is implicit
	dotEnvName    = ".env"
)

// Config is the resolved client configuration.
type Config struct {
	Server    string        `json:"server" validate:"required,url"`
	Downloads string        `json:"downloads" validate:"required"`
	Timeout   time.Duration `json:"timeout" validate:"gt=0"`
	Progress  time.Duration `json:"progress" validate:"gt=0"`
	Toast     time.Duration `json:"toast" validate:"gt=0"`
	Datestamp bool          `json:"datestamp"`
	Log       string        `json:"log"`
	LogLevel  string        `json:"logLevel" validate:"omitempty,oneof=debug info warn error"`
	Mode      string        `json:"mode" validate:"oneof=single multi"`
	File      string        `json:"file,omitempty"`
}

// DownloadsPath is where merged PDFs are written.
func (c *Config) DownloadsPath() string {
	return c.Downloads
}

// LoadConfig reads defaults, an optional .exammerge.yaml, an optional .env and
// EXAMMERGE_* environment variables, in increasing precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("server", "http://localhost:5000")
	v.SetDefault("downloads", "~/Downloads/exammerge")
	v.SetDefault("timeout", 2*time.Minute)
	v.SetDefault("progress", 3*time.Second)
	v.SetDefault("toast", 3*time.Second)
	v.SetDefault("datestamp", true)
	v.SetDefault("log", "")
	v.SetDefault("logLevel", "info")
	v.SetDefault("mode", "single")
	v.SetConfigName(configName)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	dirs := []string{"./"}
	if override := os.Getenv(envConfigPath); override != "" {
		dirs = append([]string{override}, dirs...)
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := loadDotEnv(dirs); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	downloads, err := homedir.Expand(strings.TrimSpace(v.GetString("downloads")))
	if err != nil {
		return nil, fmt.Errorf("store: expand downloads: %w", err)
	}
	logPath, err := homedir.Expand(strings.TrimSpace(v.GetString("log")))
	if err != nil {
		return nil, fmt.Errorf("store: expand log: %w", err)
	}

	cfg := &Config{
		Server:    strings.TrimRight(strings.TrimSpace(v.GetString("server")), "/"),
		Downloads: downloads,
		Timeout:   v.GetDuration("timeout"),
		Progress:  v.GetDuration("progress"),
		Toast:     v.GetDuration("toast"),
		Datestamp: v.GetBool("datestamp"),
		Log:       logPath,
		LogLevel:  strings.ToLower(v.GetString("logLevel")),
		Mode:      strings.ToLower(strings.TrimSpace(v.GetString("mode"))),
		File:      v.ConfigFileUsed(),
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig checks cfg against its struct tags.
func ValidateConfig(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("store: invalid config: %w", err)
	}
	return nil
}

// loadDotEnv loads the first .env found in dirs. Variables already set in the
// environment win.
func loadDotEnv(dirs []string) error {
	for _, dir := range dirs {
		path := filepath.Join(dir, dotEnvName)
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return fmt.Errorf("store: load %s: %w", path, err)
			}
			return nil
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("store: stat %s: %w", path, err)
		}
	}
	return nil
}
