// Package logging configures logrus for picam.
//
// The control panel owns the terminal, so logs normally go only to a
// rotating file. Headless subcommands also write to stderr.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options describes where and how to log
type Options struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	Stderr     bool
	JSON       bool
	Timezone   *time.Location
}

// ParseLevel maps a config level name to a logrus level. Unknown names
// fall back to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warning", "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// LocalTimeZoneFormatter stamps entries in a fixed zone
type LocalTimeZoneFormatter struct {
	Timezone  *time.Location
	Formatter logrus.Formatter
}

func (u LocalTimeZoneFormatter) Format(e *logrus.Entry) ([]byte, error) {
	if u.Timezone != nil {
		e.Time = e.Time.In(u.Timezone)
	}
	return u.Formatter.Format(e)
}

// Configure applies opts to logger and returns a func that closes the log file
func Configure(logger *logrus.Logger, opts Options) (func() error, error) {
	var inner logrus.Formatter = &logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	}
	if opts.JSON {
		inner = &logrus.JSONFormatter{}
	}
	tz := opts.Timezone
	if tz == nil {
		tz = time.Local
	}
	logger.SetFormatter(LocalTimeZoneFormatter{Timezone: tz, Formatter: inner})
	logger.SetLevel(ParseLevel(opts.Level))

	var writers []io.Writer
	closer := func() error { return nil }

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return closer, err
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB, // megabytes
			MaxBackups: opts.MaxBackups,
			Compress:   true,
		}
		writers = append(writers, lj)
		closer = lj.Close
	}
	if opts.Stderr {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}
	return closer, nil
}
