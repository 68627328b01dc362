// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config is the whole application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Browser   BrowserConfig   `mapstructure:"browser" yaml:"browser"`
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`
	Sites     SitesConfig     `mapstructure:"sites" yaml:"sites"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
}

// BrowserConfig configures the chromedp session.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// GeneratorConfig configures the chat-completions client.
type GeneratorConfig struct {
	APIKey            string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
	Model             string `mapstructure:"model" yaml:"model"`
	PromptOverride    string `mapstructure:"prompt_override" yaml:"prompt_override"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// SitesConfig gates where the filler is allowed to run.
type SitesConfig struct {
	Enabled        bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedDomains []string `mapstructure:"allowed_domains" yaml:"allowed_domains"`
}

// permanentlyAllowed hostnames are always fillable and cannot be removed
// from the allow-list.
var permanentlyAllowed = []string{"localhost", "127.0.0.1"}

// IsPermanentlyAllowed reports whether a hostname is one of the permanent
// development hosts.
func IsPermanentlyAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, h := range permanentlyAllowed {
		if host == h {
			return true
		}
	}
	return false
}

// Allows reports whether a hostname is on the allow-list. The permanent
// development hostnames are always allowed.
func (s SitesConfig) Allows(host string) bool {
	if IsPermanentlyAllowed(host) {
		return true
	}
	for _, h := range s.AllowedDomains {
		if strings.EqualFold(host, h) {
			return true
		}
	}
	return false
}

// DefaultDir returns the per-user directory holding config and state files.
func DefaultDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".autofill"), nil
}

// Load reads configuration from the given file, or from ./config.yaml and
// ~/.autofill/config.yaml when no path is given, with AUTOFILL_* environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if dir, err := DefaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("AUTOFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "autofill")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout", 30*time.Second)
	v.SetDefault("browser.post_load_wait", time.Second)

	v.SetDefault("generator.model", "gpt-4o-mini")
	v.SetDefault("generator.requests_per_minute", 20)

	v.SetDefault("sites.enabled", true)
}
