package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the fileagent home directory.
const HomeEnv = "FILEAGENT_HOME"

// GetHome returns the fileagent home directory, creating it when missing.
// Priority order:
//  1. FILEAGENT_HOME environment variable (if set)
//  2. ~/.fileagent
func GetHome() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve user home: %w", err)
		}
		home = filepath.Join(userHome, ".fileagent")
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		return "", fmt.Errorf("create fileagent home directory: %w", err)
	}
	return home, nil
}

// DefaultConfigPath returns $FILEAGENT_HOME/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

// HistoryDBPath returns the configured history database or
// $FILEAGENT_HOME/history.db.
func (c *Config) HistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}

// LogDirectory returns the configured log directory or $FILEAGENT_HOME/logs.
func (c *Config) LogDirectory() (string, error) {
	if c.LogDir != "" {
		return c.LogDir, nil
	}
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "logs"), nil
}

// ResolveWorkDir returns WorkDir as an absolute path, defaulting to the
// process working directory.
func (c *Config) ResolveWorkDir() (string, error) {
	if c.WorkDir != "" {
		abs, err := filepath.Abs(c.WorkDir)
		if err != nil {
			return "", fmt.Errorf("resolve work dir: %w", err)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return cwd, nil
}

// SearchRoot returns Search.DefaultRoot or the user home directory.
func (c *Config) SearchRoot() string {
	if c.Search.DefaultRoot != "" {
		return c.Search.DefaultRoot
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return string(filepath.Separator)
}

// QuickRoots returns the quick search directories under userHome followed by
// workDir.
func (c *Config) QuickRoots(userHome, workDir string) []string {
	roots := make([]string, 0, len(c.Search.QuickDirs)+1)
	for _, name := range c.Search.QuickDirs {
		if filepath.IsAbs(name) {
			roots = append(roots, name)
			continue
		}
		roots = append(roots, filepath.Join(userHome, name))
	}
	if workDir != "" {
		roots = append(roots, workDir)
	}
	return roots
}
