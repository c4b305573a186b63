// Package logger builds charmbracelet/log loggers for wordfix components.
// Every logger writes to stderr: stdout carries IPC and report output.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var output io.Writer = os.Stderr

// Setup configures the global logger. Debug mode turns on timestamps and
// debug output, otherwise only warnings and errors are shown.
func Setup(debug bool) {
	log.SetOutput(output)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
}

// New creates a prefixed charm log that respects the global log level.
func New(prefix string) *log.Logger {
	level := log.GetLevel()
	return NewWithConfig(prefix, level, false, level == log.DebugLevel, log.TextFormatter)
}

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(output, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}
