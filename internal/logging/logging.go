// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DefaultMaxSizeMB replaces a MaxSizeMB below 1.
	DefaultMaxSizeMB = 50

	timeFormat = "2006-01-02 15:04:05"
)

// Levels lists the accepted level names.
var Levels = []string{"trace", "debug", "info", "warn", "error"}

// Options controls Setup. The rotation fields are passed to lumberjack as
// they are, except MaxSizeMB, which falls back to DefaultMaxSizeMB. A zero
// MaxBackups or MaxAgeDays keeps old files forever.
type Options struct {
	// Level is one of Levels. Unknown names mean info.
	Level string

	// File enables a rotating log file in addition to the console.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Out is the console destination. Defaults to os.Stderr.
	Out io.Writer
}

// Setup sets the global level and output writers (console + optional
// rotating file), installs the result as log.Logger and returns it.
func Setup(opts Options) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()

	if opts.File == "" {
		return log.Logger
	}

	if err := ensureLogDir(opts.File); err != nil {
		log.Error().Err(err).Str("path", opts.File).Msg("Failed to prepare log directory; logging to console only")
		return log.Logger
	}

	fileWriter := rotatingFile(opts)
	fileConsole := zerolog.ConsoleWriter{
		Out:        fileWriter,
		TimeFormat: timeFormat,
		NoColor:    true,
	}

	multi := zerolog.MultiLevelWriter(console, fileConsole)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()
	return log.Logger
}

// rotatingFile builds the lumberjack writer for opts.File.
func rotatingFile(opts Options) *lumberjack.Logger {
	maxSize := opts.MaxSizeMB
	if maxSize < 1 {
		maxSize = DefaultMaxSizeMB
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: max(opts.MaxBackups, 0),
		MaxAge:     max(opts.MaxAgeDays, 0),
		Compress:   opts.Compress,
	}
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
