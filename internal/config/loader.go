package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is searched in the current and home directories.
	DefaultConfigFile = ".sitescope"

	// XDGConfigFile is searched in XDGConfigDir.
	XDGConfigFile = "config.yaml"
)

// Names of the command-line flags that a config file value yields to.
const (
	FlagStageDelay  = "stage-delay"
	FlagConcurrency = "concurrency"
	FlagFormat      = "format"
	FlagLocale      = "locale"
	FlagSave        = "save"
	FlagHistory     = "history"
	FlagListen      = "listen"
)

// File is the YAML configuration file.
//
//	stage_delay: 800ms
//	concurrency: 4
//	format: markdown
//	locale: en
//	listen: 127.0.0.1:8080
//	examples:
//	  - https://github.com
//	history:
//	  enabled: true
//	  location: postgres://scope@localhost/sitescope
type File struct {
	StageDelay  string      `yaml:"stage_delay,omitempty"`
	Concurrency int         `yaml:"concurrency,omitempty"`
	Format      string      `yaml:"format,omitempty"`
	Locale      string      `yaml:"locale,omitempty"`
	Listen      string      `yaml:"listen,omitempty"`
	Examples    []string    `yaml:"examples,omitempty"`
	History     HistoryFile `yaml:"history,omitempty"`
}

// HistoryFile is the history block of File.
type HistoryFile struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Location string `yaml:"location,omitempty"`
}

// LoadConfigFile reads the YAML file at path.
// A missing file yields ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfigFile, path, err)
	}
	return &f, nil
}

// FindConfigFile returns the first config file that exists, searching:
//  1. configPath, when given (no other location is tried)
//  2. .sitescope in the current directory
//  3. config.yaml in XDGConfigDir
//  4. .sitescope in the home directory
//
// It returns "" when none exists.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if exists(configPath) {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), XDGConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if exists(c) {
			return c
		}
	}
	return ""
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ApplyFile copies the values set in f into c, except those whose flag
// was given on the command line. explicit reports whether a flag was set;
// nil means no flag was.
func (c *Config) ApplyFile(f *File, explicit func(flag string) bool) error {
	if f == nil {
		return nil
	}
	if explicit == nil {
		explicit = func(string) bool { return false }
	}

	if f.StageDelay != "" && !explicit(FlagStageDelay) {
		d, err := time.ParseDuration(f.StageDelay)
		if err != nil {
			return fmt.Errorf("%w: stage_delay: %w", ErrInvalidConfigFile, err)
		}
		c.StageDelay = d
	}
	if f.Concurrency != 0 && !explicit(FlagConcurrency) {
		c.Concurrency = f.Concurrency
	}
	if f.Format != "" && !explicit(FlagFormat) {
		c.Format = f.Format
	}
	if f.Locale != "" && !explicit(FlagLocale) {
		c.Locale = f.Locale
	}
	if f.Listen != "" && !explicit(FlagListen) {
		c.ListenAddr = f.Listen
	}
	if len(f.Examples) > 0 {
		c.Examples = append([]string(nil), f.Examples...)
	}
	if f.History.Enabled && !explicit(FlagSave) {
		c.SaveHistory = true
	}
	if f.History.Location != "" && !explicit(FlagHistory) {
		c.HistoryLocation = f.History.Location
	}
	return nil
}

// Load fills c from the config file found by FindConfigFile, if any, and
// returns the path that was used. An explicit ConfigFilePath that does not
// exist is an error; a missing default file is not.
func (c *Config) Load(explicit func(flag string) bool) (string, error) {
	path := FindConfigFile(c.ConfigFilePath)
	if path == "" {
		if c.ConfigFilePath != "" {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, c.ConfigFilePath)
		}
		return "", nil
	}

	f, err := LoadConfigFile(path)
	if err != nil {
		return "", err
	}
	if err := c.ApplyFile(f, explicit); err != nil {
		return "", err
	}
	return path, nil
}
