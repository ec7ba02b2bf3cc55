package commands

import (
	"github.com/rs/zerolog"

	"github.com/viant/curator"
)

// Flags holds the global flags and the state the Before hook builds for
// every command.
type Flags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string

	// Config is loaded in the Before hook and available to all commands
	Config *curator.Config

	// Service is the review engine the commands operate on
	Service *curator.Service

	Logger zerolog.Logger
}
