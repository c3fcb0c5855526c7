// Package logging configures logrus and carries per-request log fields.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogging returns a JSON logger at the given level. Unknown levels fall
// back to info.
func SetupLogging(level string) *logrus.Logger {
	return NewLogger(os.Stdout, level)
}

// NewLogger is SetupLogging with an explicit writer.
func NewLogger(out io.Writer, level string) *logrus.Logger {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	return &logrus.Logger{
		Formatter: &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		},
		Hooks: make(logrus.LevelHooks),
		Out:   out,
		Level: lvl,
	}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	return NewLogger(io.Discard, "panic")
}
