package appdirs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	envHomeOverride = "AUTHMCP_HOME"
	envLogsOverride = "AUTHMCP_LOG_DIR"
)

// BaseDir is $AUTHMCP_HOME, else <user config dir>/authmcp, else ~/.authmcp.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(envHomeOverride)); dir != "" {
		return filepath.Clean(dir), nil
	}

	if cfgDir, err := os.UserConfigDir(); err == nil && strings.TrimSpace(cfgDir) != "" {
		return filepath.Join(cfgDir, "authmcp"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		if err == nil {
			err = errors.New("empty home directory")
		}
		return "", fmt.Errorf("determine authmcp base dir: %w", err)
	}

	return filepath.Join(home, ".authmcp"), nil
}

func LogsDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(envLogsOverride)); dir != "" {
		return filepath.Clean(dir), nil
	}

	base, err := BaseDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(base, "logs"), nil
}

// ConfigPath is the optional settings file, <base>/config.yaml.
func ConfigPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

func EnsureDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("ensure dir: empty path")
	}
	return os.MkdirAll(path, 0o755)
}
