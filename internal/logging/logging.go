// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the logrus loggers used across sparos and
// registers the CLI flags that configure them.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Levels accepted by --loglevel.
var Levels = []string{"debug", "info", "warn", "error"}

// RegisterFlags adds --loglevel and --logformat to cmd's persistent flags.
func RegisterFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("loglevel", "warn", "set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("logformat", "text", "set the log format (text, json)")
}

// FromFlags builds a logger writing to w from the flags registered by
// RegisterFlags.
func FromFlags(cmd *cobra.Command, w io.Writer) (*logrus.Logger, error) {
	return New(flagValue(cmd, "loglevel"), flagValue(cmd, "logformat"), w)
}

// flagValue looks name up in cmd's own and inherited persistent flags.
func flagValue(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}

// New builds a logger for the given level and format names.
func New(level, format string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)

	switch format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false, FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	return l, nil
}

// ParseLevel maps a --loglevel value to a logrus level.
func ParseLevel(level string) (logrus.Level, error) {
	switch level {
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn", "":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.WarnLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// Discard returns a logger that drops everything. Components use it when
// no logger is injected.
func Discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// OrDiscard returns log, or a discard logger when log is nil.
func OrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return Discard()
	}
	return log
}
