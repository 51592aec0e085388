// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	std  *logrus.Logger
	once sync.Once
)

// Logger returns the shared logger instance.
func Logger() *logrus.Logger {
	once.Do(func() {
		std = logrus.New()
		std.SetOutput(os.Stdout)
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	})
	return std
}

// Configure applies the environment and level to l. Production logs are
// JSON, everything else is human readable text. Unknown levels fall back
// to info.
func Configure(l *logrus.Logger, environment, level string) {
	if environment == "production" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	SetLevel(l, level)
}

// SetLevel changes the level of l, ignoring unparsable values.
func SetLevel(l *logrus.Logger, level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
}

// Writer returns an io.Writer that logs each line at info level, used for
// the HTTP access log.
func Writer(l *logrus.Logger) io.Writer {
	return l.WriterLevel(logrus.InfoLevel)
}
