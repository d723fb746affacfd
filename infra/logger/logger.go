// Package logger provides the zerolog implementation of the core logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	corelogger "github.com/kilianp07/shiftboard/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.NopLogger

// Output formats accepted by Configure.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a Logger for the given component.
func New(component string) Logger {
	return NewZerologLogger(component)
}

// SetLevel sets the minimum level for every logger. Empty means info.
func SetLevel(level string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// Options selects level, format and destination of loggers.
type Options struct {
	Level  string
	Format string
	// File, when set, receives the logs instead of stdout and is rotated by
	// size. Sizes are in megabytes, ages in days.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Configure applies o to loggers created afterwards. Empty format means JSON.
func Configure(o Options) error {
	if err := SetLevel(o.Level); err != nil {
		return err
	}
	var console bool
	switch strings.ToLower(o.Format) {
	case "", FormatJSON:
	case FormatConsole:
		console = true
	default:
		return fmt.Errorf("log format %q: want %s or %s", o.Format, FormatJSON, FormatConsole)
	}
	var w io.Writer
	if o.File != "" {
		if dir := filepath.Dir(o.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("log dir: %w", err)
			}
		}
		w = &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
		}
	}
	setOutput(w, console)
	return nil
}

// SetOutput redirects loggers created afterwards to w.
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	output = w
}

func setOutput(w io.Writer, console bool) {
	outMu.Lock()
	defer outMu.Unlock()
	if w != nil {
		output = w
	}
	pretty = console
}
