package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger. Cloud Logging reads the level from "severity".
func New() zerolog.Logger {
	return NewWithWriter(os.Stderr, os.Getenv("ENV"))
}

// NewWithWriter is New with an explicit sink and environment name.
func NewWithWriter(w io.Writer, env string) zerolog.Logger {
	zerolog.LevelFieldName = "severity"
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(w).With().Timestamp().Logger()
	if env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: w})
		return logger.Level(zerolog.DebugLevel)
	}
	return logger.Level(zerolog.InfoLevel)
}

// Service returns a sub-logger tagged with the owning component.
func Service(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("service", name).Logger()
}
