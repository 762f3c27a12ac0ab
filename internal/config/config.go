// Package config loads gemforward settings from flags, environment and an
// optional YAML or JSON config file through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mark3labs/gemforward/internal/forwarder"
	"github.com/mark3labs/gemforward/internal/gemini"
	"github.com/mark3labs/gemforward/internal/prompt"
)

const (
	// ConfigName is the base name searched for in the current and home
	// directories.
	ConfigName = ".gemforward"
	// EnvPrefix prefixes environment overrides, e.g. GEMFORWARD_MODEL.
	EnvPrefix = "GEMFORWARD"
)

// configExtensions are tried in order for each search directory.
var configExtensions = []string{".yml", ".yaml", ".json"}

// apiKeyEnv lists the environment variables consulted for the API key, in
// priority order.
var apiKeyEnv = []string{"GEMFORWARD_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"}

// Config is the resolved configuration for one invocation.
type Config struct {
	APIKey       string                 `mapstructure:"api-key"`
	Model        string                 `mapstructure:"model"`
	BaseURL      string                 `mapstructure:"base-url"`
	Language     string                 `mapstructure:"language"`
	Template     string                 `mapstructure:"template"`
	TemplateFile string                 `mapstructure:"template-file"`
	Temperature  float32                `mapstructure:"temperature"`
	TopP         float32                `mapstructure:"top-p"`
	TopK         float32                `mapstructure:"top-k"`
	MaxTokens    int32                  `mapstructure:"max-tokens"`
	Timeout      time.Duration          `mapstructure:"timeout"`
	Pretty       bool                   `mapstructure:"pretty"`
	Debug        bool                   `mapstructure:"debug"`
	Templates    map[string]prompt.Spec `mapstructure:"templates"`
}

// Defaults holds the built-in values registered by New.
var Defaults = map[string]any{
	"model":       gemini.DefaultModel,
	"language":    forwarder.DefaultLanguage,
	"template":    prompt.DefaultTemplate,
	"temperature": gemini.DefaultTemperature,
	"top-p":       gemini.DefaultTopP,
	"top-k":       gemini.DefaultTopK,
	"max-tokens":  gemini.DefaultMaxOutputTokens,
	"timeout":     time.Duration(0),
}

// New returns a viper instance with defaults and environment bindings
// registered.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(append([]string{"api-key"}, apiKeyEnv...)...)
	return v
}

// Init loads configFile into v, or when configFile is empty searches the
// current directory and then the home directory for ConfigName. It returns
// the path of the file loaded, or "" when none was found.
func Init(v *viper.Viper, configFile string) (string, error) {
	if configFile != "" {
		if err := LoadFile(v, configFile); err != nil {
			return "", err
		}
		return configFile, nil
	}

	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}

	for _, dir := range dirs {
		for _, ext := range configExtensions {
			path := filepath.Join(dir, ConfigName+ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := LoadFile(v, path); err != nil {
				return "", fmt.Errorf("error reading config file '%s': %w", path, err)
			}
			return path, nil
		}
	}
	return "", nil
}

// LoadFile reads a config file with ${env://VAR} expansion into v.
func LoadFile(v *viper.Viper, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	content := string(raw)
	if HasEnvVars(content) {
		substituter := &EnvSubstituter{}
		if content, err = substituter.Substitute(content); err != nil {
			return fmt.Errorf("config env substitution failed: %w", err)
		}
	}

	configType := "yaml"
	if strings.HasSuffix(path, ".json") {
		configType = "json"
	}
	v.SetConfigType(configType)
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.MaxTokens < 0 {
		return nil, errors.New("max-tokens must not be negative")
	}
	return &cfg, nil
}

// Catalog returns the built-in templates overlaid with those defined in the
// config file and, when set, the template file.
func (c *Config) Catalog() (*prompt.Catalog, string, error) {
	catalog := prompt.DefaultCatalog()
	catalog.Merge(c.Templates)

	name := c.Template
	if c.TemplateFile != "" {
		tpl, err := prompt.LoadTemplate(c.TemplateFile)
		if err != nil {
			return nil, "", err
		}
		catalog.Add(tpl)
		name = tpl.Name
	}
	return catalog, name, nil
}
