package cliconfig

import "os"

// EnvPrefix is the prefix of every environment variable read by ApplyEnvConfig.
const EnvPrefix = "GRAPHWAL_"

// ApplyEnvConfig applies GRAPHWAL_* environment variables to cfg.
// They override file values but not flags that were set explicitly.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("root", os.Getenv(EnvPrefix+"ROOT"), &cfg.Root)
	s.setString("log-level", os.Getenv(EnvPrefix+"LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("limit", os.Getenv(EnvPrefix+"AUDIT_LIMIT"), &cfg.AuditLimit); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv(EnvPrefix+"WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setBoolFromString("guard", os.Getenv(EnvPrefix+"GUARD_PENDING_WAL"), &cfg.GuardPendingWAL)
	s.setBoolFromString("force", os.Getenv(EnvPrefix+"FORCE_COMPACT"), &cfg.ForceCompact)
	s.setBoolFromString("auto-recover", os.Getenv(EnvPrefix+"AUTO_RECOVER"), &cfg.AutoRecover)

	return nil
}
