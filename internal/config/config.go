// Package config wires up the application wide logger.
package config

import (
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates the logger for the translation run. Debug wins
// over quiet, quiet reduces the output to errors so a listing on
// stdout stays clean.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
