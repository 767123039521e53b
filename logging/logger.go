// Package logging builds the process-wide zerolog.Logger, the one
// exception to constructor injection per the pipeline's global-state rule.
package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/shortalex12333/Image-processing-sub000/config"
)

// New builds a zerolog.Logger configured from cfg: a human-readable
// console writer in development, JSON lines otherwise, leveled by
// cfg.LogLevel.
func New(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out zerolog.ConsoleWriter
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if cfg.IsDevelopment() {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
		logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	return logger.With().Str("service", "receiving-pipeline").Logger()
}
