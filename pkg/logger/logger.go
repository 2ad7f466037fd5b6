// Package logger builds the zerolog loggers used across the module. A
// logger can write to a file path or an arbitrary writer, defaulting to
// stdout; file writers are wrapped in a sync writer so concurrent
// operations can share one logger.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Build accumulates logger configuration.
type Build struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

// Log is a configured logger together with the file it writes to, when a
// path was given. Callers owning a Log with a file should close it when
// done.
type Log struct {
	Logger  zerolog.Logger
	LogFile *os.File
}

func New() *Build {
	return &Build{level: zerolog.InfoLevel}
}

// FromPath appends to the file at path, creating it if needed.
func (build *Build) FromPath(path string) *Build {
	build.path = path
	return build
}

// FromWriter sends output to w.
func (build *Build) FromWriter(w io.Writer) *Build {
	build.writer = w
	return build
}

// Level sets the minimum level. The default is info.
func (build *Build) Level(level zerolog.Level) *Build {
	build.level = level
	return build
}

func (build *Build) Make() (*Log, error) {
	log := &Log{}
	writer := build.writer
	if writer == nil {
		writer = os.Stdout
	}
	if build.path != "" {
		file, err := os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		log.LogFile = file
		writer = zerolog.SyncWriter(file)
	}
	log.Logger = zerolog.New(writer).Level(build.level).With().Timestamp().Logger()
	return log, nil
}

// Close closes the log file, if any.
func (log *Log) Close() error {
	if log.LogFile == nil {
		return nil
	}
	return log.LogFile.Close()
}
