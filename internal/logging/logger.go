// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Config represents logger settings.
type Config struct {
	Level  string `yaml:"level" env:"CURATOR_LOG_LEVEL" env-default:"info"`
	File   string `yaml:"file" env:"CURATOR_LOG_FILE"`
	Format string `yaml:"format" env:"CURATOR_LOG_FORMAT" env-default:"json"`
}

// New returns a logger writing to file, or to stderr when file is empty.
// Format "console" renders human readable lines instead of JSON.
//
// The level can be one of: trace, debug, info, warn, error, fatal, disabled.
func New(config Config) (zerolog.Logger, func(), error) {
	closer := func() {}
	if config.Level == "" {
		config.Level = zerolog.LevelInfoValue
	}
	lvl, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	var writer io.Writer = os.Stderr
	if config.File != "" {
		if err := os.MkdirAll(filepath.Dir(config.File), 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}
		osFile, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, closer, err
		}
		closer = func() { _ = osFile.Close() }
		writer = osFile
	}
	switch config.Format {
	case "", "json":
	case "console":
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: config.File != ""}
	default:
		closer()
		return zerolog.Logger{}, func() {}, fmt.Errorf("unsupported log format %q", config.Format)
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
