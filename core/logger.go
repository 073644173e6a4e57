package core

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// NewLogger returns a new pre-configured logger writing to out.
func NewLogger(level uint32, out io.Writer) *log.Logger {
	logger := log.New()

	logger.SetFormatter(&log.TextFormatter{})
	logger.SetOutput(out)
	logger.SetLevel(log.Level(level))

	return logger
}
