// Package logger configures logrus for the backtesting CLI and daemon, and
// provides run-lifecycle logging for the engine.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logger at the given level. Output is JSON when
// ENVIRONMENT is production, colored text otherwise.
func NewLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("ENVIRONMENT") == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger
}
