package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"GRAPHWAL_ROOT":           "/env/root",
				"GRAPHWAL_LOG_LEVEL":      "warn",
				"GRAPHWAL_AUDIT_LIMIT":    "3",
				"GRAPHWAL_WATCH_DEBOUNCE": "2s",
				"GRAPHWAL_AUTO_RECOVER":   "1",
				"GRAPHWAL_FORCE_COMPACT":  "true",
			},
			changed: map[string]bool{},
			initial: Config{GuardPendingWAL: true},
			expected: Config{
				Root:            "/env/root",
				LogLevel:        "warn",
				AuditLimit:      3,
				GuardPendingWAL: true,
				ForceCompact:    true,
				WatchDebounce:   2 * time.Second,
				AutoRecover:     true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"GRAPHWAL_ROOT": "/env/root",
			},
			changed:  map[string]bool{"root": true},
			initial:  Config{Root: "/flag/root"},
			expected: Config{Root: "/flag/root"},
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"GRAPHWAL_GUARD_PENDING_WAL": "false",
			},
			changed:  map[string]bool{},
			initial:  Config{GuardPendingWAL: true},
			expected: Config{GuardPendingWAL: false},
		},
		{
			name: "zero audit limit means all entries",
			envVars: map[string]string{
				"GRAPHWAL_AUDIT_LIMIT": "0",
			},
			changed:  map[string]bool{},
			initial:  Config{AuditLimit: 20},
			expected: Config{AuditLimit: 0},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"GRAPHWAL_WATCH_DEBOUNCE": "not-a-duration",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"GRAPHWAL_AUDIT_LIMIT": "many",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
