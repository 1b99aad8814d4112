package cliconfig

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/bft-labs/graphwal/pkg/log"
)

// Logger returns the CLI's console logger on stderr at the given level.
// An unknown level falls back to info.
func Logger(level string) zerolog.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return log.NewConsoleLogger(os.Stderr, lvl)
}
