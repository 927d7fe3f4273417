// Package output provides logging for xcb.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the global logger instance.
var Logger *log.Logger

func init() {
	Logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          "xcb",
	})
}

// SetupLogging configures the logger based on verbosity.
func SetupLogging(verbose bool) {
	SetupLoggingTo(os.Stderr, verbose)
}

// SetupLoggingTo is SetupLogging writing to w instead of stderr.
func SetupLoggingTo(w io.Writer, verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
		ReportCaller:    verbose,
		TimeFormat:      "15:04:05",
		Prefix:          "xcb",
	})
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}
