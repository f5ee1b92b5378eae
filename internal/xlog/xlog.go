// Package xlog wraps charmbracelet/log to give each airwave component a
// logger prefixed with its name.
package xlog

import (
	"os"

	"github.com/charmbracelet/log"
)

// New returns a logger prefixed with component, writing to stderr at
// Info level by default - overridden by profile.Config.LogLevel.
func New(component string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          component,
	})
	l.SetLevel(log.InfoLevel)
	return l
}

// SetLevel parses level (one of "debug", "info", "warn", "error") and
// applies it to l, leaving the level unchanged if level is empty or
// unrecognized.
func SetLevel(l *log.Logger, level string) {
	if level == "" {
		return
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return
	}
	l.SetLevel(parsed)
}
