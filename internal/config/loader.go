// Package config loads host settings for the authmcp binary: which driver
// to use, the .env fallback file and the log path.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"authmcp/internal/appdirs"
)

// Driver names.
const (
	DriverRod        = "rod"
	DriverPlaywright = "playwright"
)

// Settings are the resolved host settings.
type Settings struct {
	Driver  string `yaml:"driver"`
	EnvFile string `yaml:"env_file"`
	LogPath string `yaml:"log_path"`
	// PlaywrightInstall downloads the Playwright driver on first connect.
	PlaywrightInstall bool `yaml:"playwright_install"`
}

const (
	defaultDriver  = DriverRod
	defaultEnvFile = ".env"
)

// Loader resolves settings from an optional YAML file and environment
// overrides.
type Loader struct {
	// ConfigPath allows tests to point at an alternate config file. If empty
	// the loader falls back to appdirs.ConfigPath().
	ConfigPath string

	// Getenv is used to pull environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// ReadFile is used to read the config file. Defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

// Load resolves settings. Precedence, lowest first: defaults, config file,
// AUTHMCP_* environment variables. Command-line flags are applied by the
// caller on top of the result.
func (l *Loader) Load() (Settings, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	readFile := l.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	configPath := l.ConfigPath
	if strings.TrimSpace(configPath) == "" {
		if p, err := appdirs.ConfigPath(); err == nil {
			configPath = p
		}
	}

	s, err := readConfig(configPath, readFile)
	if err != nil {
		return Settings{}, err
	}

	applyEnvOverrides(&s, getenv)
	applyDefaults(&s)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects unknown driver names.
func (s Settings) Validate() error {
	switch s.Driver {
	case DriverRod, DriverPlaywright:
		return nil
	}
	return fmt.Errorf("unknown driver %q (want %s or %s)", s.Driver, DriverRod, DriverPlaywright)
}

func readConfig(path string, readFile func(string) ([]byte, error)) (Settings, error) {
	var s Settings
	if strings.TrimSpace(path) == "" {
		return s, nil
	}

	data, err := readFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode settings %s: %w", path, err)
	}
	return s, nil
}

func applyEnvOverrides(s *Settings, getenv func(string) string) {
	if val := strings.TrimSpace(getenv("AUTHMCP_DRIVER")); val != "" {
		s.Driver = val
	}
	if val := strings.TrimSpace(getenv("AUTHMCP_ENV_FILE")); val != "" {
		s.EnvFile = val
	}
	if val := strings.TrimSpace(getenv("AUTHMCP_LOG_PATH")); val != "" {
		s.LogPath = val
	}
	switch strings.ToLower(strings.TrimSpace(getenv("AUTHMCP_PLAYWRIGHT_INSTALL"))) {
	case "1", "true", "yes":
		s.PlaywrightInstall = true
	case "0", "false", "no":
		s.PlaywrightInstall = false
	}
}

func applyDefaults(s *Settings) {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	if s.Driver == "" {
		s.Driver = defaultDriver
	}
	if strings.TrimSpace(s.EnvFile) == "" {
		s.EnvFile = defaultEnvFile
	}
}
