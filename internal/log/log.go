// Package log is a thin wrapper around charmbracelet/log with a
// package-level logger shared by the CLI. Commands never construct
// their own loggers; they toggle verbosity through SetVerbose.
package log

import (
	"io"
	"os"

	charm "github.com/charmbracelet/log"
)

var logger = charm.NewWithOptions(os.Stderr, charm.Options{
	ReportTimestamp: false,
	Level:           charm.WarnLevel,
})

// SetVerbose lowers the log level to debug when enabled.
func SetVerbose(enabled bool) {
	if enabled {
		logger.SetLevel(charm.DebugLevel)
		return
	}
	logger.SetLevel(charm.WarnLevel)
}

// SetOutput redirects log output, used by tests to keep output quiet.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func Debug(msg any, keyvals ...any) { logger.Debug(msg, keyvals...) }
func Info(msg any, keyvals ...any)  { logger.Info(msg, keyvals...) }
func Warn(msg any, keyvals ...any)  { logger.Warn(msg, keyvals...) }
func Error(msg any, keyvals ...any) { logger.Error(msg, keyvals...) }

func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
func Infof(format string, args ...any)  { logger.Infof(format, args...) }
func Warnf(format string, args ...any)  { logger.Warnf(format, args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
