// Package log writes diagnostics to a dated file when logs.write is enabled.
// Nothing is emitted otherwise.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/playctl/playctl/filesystem"
	"github.com/playctl/playctl/key"
	"github.com/playctl/playctl/where"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Fields are structured key-value pairs attached to an entry.
type Fields = logrus.Fields

var (
	logger  = logrus.New()
	enabled bool
)

// Setup opens today's log file and applies the configured level and format.
func Setup() error {
	if !viper.GetBool(key.LogsWrite) {
		enabled = false
		return nil
	}

	path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	configure(f, viper.GetBool(key.LogsJson), viper.GetString(key.LogsLevel))
	return nil
}

func configure(out io.Writer, json bool, level string) {
	logger.SetOutput(out)

	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	enabled = true
}

// Entry carries fields shared by a group of log lines, such as every line of one session.
type Entry struct {
	fields Fields
}

// With returns an entry that attaches fields to every line it writes.
func With(fields Fields) Entry {
	return Entry{fields: fields}
}

func (e Entry) entry() *logrus.Entry {
	return logger.WithFields(e.fields)
}

func (e Entry) Debugf(format string, args ...any) {
	if enabled {
		e.entry().Debugf(format, args...)
	}
}

func (e Entry) Infof(format string, args ...any) {
	if enabled {
		e.entry().Infof(format, args...)
	}
}

func (e Entry) Warnf(format string, args ...any) {
	if enabled {
		e.entry().Warnf(format, args...)
	}
}

func (e Entry) Errorf(format string, args ...any) {
	if enabled {
		e.entry().Errorf(format, args...)
	}
}

var std = Entry{}

func Debugf(format string, args ...any) { std.Debugf(format, args...) }
func Infof(format string, args ...any)  { std.Infof(format, args...) }
func Warnf(format string, args ...any)  { std.Warnf(format, args...) }
func Errorf(format string, args ...any) { std.Errorf(format, args...) }

// Error logs err at error level.
func Error(err error) {
	if enabled && err != nil {
		logger.WithError(err).Error("command failed")
	}
}
