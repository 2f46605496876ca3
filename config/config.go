package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config mirrors filetally.yaml. Every field can also be set by a CLI flag,
// and flags given explicitly win over the file.
type Config struct {
	Root                string   `yaml:"root"`
	Locale              string   `yaml:"locale"`
	Exclude             []string `yaml:"exclude"`
	MaxFileSizeBytes    int64    `yaml:"max_file_size"`
	Watch               bool     `yaml:"watch"`
	SyncIntervalSeconds int      `yaml:"sync_interval"`
	MaxResults          int      `yaml:"max_results"`
	CountersPath        string   `yaml:"counters_path"`
	LogLevel            string   `yaml:"log_level"`
	LogFile             string   `yaml:"log_file"`

	// Path is the file the configuration was read from, empty when none was.
	Path string `yaml:"-"`
}

// Default returns the configuration used when neither file nor flags say otherwise.
func Default() Config {
	return Config{
		Locale:     "en",
		Watch:      true,
		MaxResults: 50,
		LogLevel:   "info",
	}
}

// Load reads a YAML file on top of Default. A missing path is not an error
// when optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if absolutePath, err := filepath.Abs(path); err == nil {
		cfg.Path = absolutePath
	} else {
		cfg.Path = path
	}
	return cfg, nil
}

// WithDefaults fills the derived paths that depend on Root and validates the rest.
func (c Config) WithDefaults() (Config, error) {
	result := c

	if result.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return result, fmt.Errorf("getting working directory: %w", err)
		}
		result.Root = wd
	}
	root, err := filepath.Abs(result.Root)
	if err != nil {
		return result, fmt.Errorf("resolving root %s: %w", result.Root, err)
	}
	result.Root = root

	if result.Locale == "" {
		result.Locale = "en"
	}
	if _, err := language.Parse(result.Locale); err != nil {
		return result, fmt.Errorf("invalid locale %q: %w", result.Locale, err)
	}
	if result.MaxResults <= 0 {
		result.MaxResults = 50
	}
	if result.SyncIntervalSeconds < 0 {
		result.SyncIntervalSeconds = 0
	}
	if result.MaxFileSizeBytes < 0 {
		result.MaxFileSizeBytes = 0
	}
	switch strings.ToLower(result.LogLevel) {
	case "debug", "info", "warn", "error":
		result.LogLevel = strings.ToLower(result.LogLevel)
	default:
		result.LogLevel = "info"
	}
	if result.LogFile == "" {
		result.LogFile = filepath.Join(result.Root, "filetally.log")
	}
	if result.CountersPath == "" {
		result.CountersPath = filepath.Join(result.Root, "filetally.db")
	}

	return result, nil
}

// LocaleTag returns the parsed collation locale, English when unparsable.
func (c Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}
