package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - BCL_CONFIG_PATH: config file location (default: ~/.config/bcl.toml)
//   - BCL_HOME: base directory for logs, reports and keys (default: ~/.local/share/bcl)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"report_dir":  filepath.Join(baseDir, "reports"),
	}, nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv("BCL_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "bcl.toml"), nil
}

// getBaseDir falls back to the XDG default ~/.local/share/bcl.
func getBaseDir() (string, error) {
	if path := os.Getenv("BCL_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "bcl"), nil
}
