package logging

import (
	"bytes"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls how NewAppLoggerWithOptions builds a logger.
type Options struct {
	// Debug enables debug level output. The DEBUG environment variable
	// also turns it on.
	Debug bool
	// LogFile, when set in debug mode, receives a copy of every record
	// through a rotating writer.
	LogFile string
}

type AppLogger struct {
	logger *log.Logger
	debug  bool
	closer io.Closer
}

var (
	defaultLogger *AppLogger
	once          sync.Once
)

// GetDefault returns the default logger instance (singleton-like for convenience)
func GetDefault() *AppLogger {
	once.Do(func() {
		defaultLogger = NewAppLogger()
	})
	return defaultLogger
}

// Package-level convenience functions for quick logging
func Info(msg string, keyvals ...interface{}) {
	GetDefault().Info(msg, keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	GetDefault().Debug(msg, keyvals...)
}

// NewAppLogger builds a logger from the environment only.
func NewAppLogger() *AppLogger {
	return NewAppLoggerWithOptions(Options{})
}

// NewAppLoggerWithOptions builds the application logger.
//
// Output always goes to stderr: stdout carries the MCP JSON-RPC stream and
// must never see log lines.
func NewAppLoggerWithOptions(opts Options) *AppLogger {
	debug := opts.Debug || os.Getenv("DEBUG") != ""

	var (
		logger *log.Logger
		closer io.Closer
	)

	if debug {
		var out io.Writer = os.Stderr
		if opts.LogFile != "" {
			rotating := &lumberjack.Logger{
				Filename:   opts.LogFile,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     7,
			}
			closer = rotating
			out = io.MultiWriter(os.Stderr, rotating)
		}

		logger = log.NewWithOptions(out, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          "M365Roadmap",
		})
		logger.SetLevel(log.DebugLevel)

		logger.Info("Debug logging enabled", "log_file", opts.LogFile)
	} else {
		// Production: warnings and errors to stderr only
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "M365Roadmap",
		})
		logger.SetLevel(log.WarnLevel)
	}
	logger.SetStyles(levelStyles())

	return &AppLogger{
		logger: logger,
		debug:  debug,
		closer: closer,
	}
}

func levelStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("204"))
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(lipgloss.Color("214"))
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	return styles
}

// Log application events
func (al *AppLogger) Info(msg string, keyvals ...interface{}) {
	al.logger.Info(msg, keyvals...)
}

func (al *AppLogger) Warn(msg string, keyvals ...interface{}) {
	al.logger.Warn(msg, keyvals...)
}

func (al *AppLogger) Error(msg string, keyvals ...interface{}) {
	al.logger.Error(msg, keyvals...)
}

func (al *AppLogger) Debug(msg string, keyvals ...interface{}) {
	if al.debug {
		al.logger.Debug(msg, keyvals...)
	}
}

// With returns a child logger that attaches keyvals to every record.
func (al *AppLogger) With(keyvals ...interface{}) *AppLogger {
	return &AppLogger{
		logger: al.logger.With(keyvals...),
		debug:  al.debug,
	}
}

// Pretty print any object
func (al *AppLogger) DebugObject(name string, obj interface{}) {
	if al.debug {
		al.logger.Debug("Object dump", "name", name, "object", fmt.Sprintf("%+v", obj))
	}
}

// Log performance metrics
func (al *AppLogger) LogPerformance(operation string, start time.Time) {
	if al.debug {
		duration := time.Since(start)
		al.logger.Debug("Performance",
			"operation", operation,
			"duration", duration,
		)
	}
}

// Close releases the rotating log file, if any.
func (al *AppLogger) Close() error {
	if al.closer == nil {
		return nil
	}
	return al.closer.Close()
}

// Testing Helper - NewTestLogger creates a logger that writes to a buffer for testing
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false, // Easier to test without timestamps
		ReportCaller:    false,
		Prefix:          "Test",
	})
	logger.SetLevel(log.DebugLevel)

	return &AppLogger{
		logger: logger,
		debug:  true,
	}, &buf
}

// StandardLog adapts the logger for libraries that expect a *log.Logger
// from the standard library. Records are written at error level.
func (al *AppLogger) StandardLog() *stdlog.Logger {
	return al.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})
}
