package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Root            string `toml:"root"`
	LogLevel        string `toml:"log_level"`
	AuditLimit      *int   `toml:"audit_limit"`
	GuardPendingWAL *bool  `toml:"guard_pending_wal"`
	ForceCompact    *bool  `toml:"force_compact"`
	WatchDebounce   string `toml:"watch_debounce"`
	AutoRecover     *bool  `toml:"auto_recover"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.graphwal/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".graphwal", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("root", fc.Root, &cfg.Root)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setInt("limit", fc.AuditLimit, &cfg.AuditLimit)

	if err := s.setDuration("debounce", fc.WatchDebounce, &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setBool("guard", fc.GuardPendingWAL, &cfg.GuardPendingWAL)
	s.setBool("force", fc.ForceCompact, &cfg.ForceCompact)
	s.setBool("auto-recover", fc.AutoRecover, &cfg.AutoRecover)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
