package log

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger = zerolog.Logger

type Fields map[string]interface{}

// New builds the service logger. Local runs get human-readable console
// output at debug level; everything else emits JSON at info.
func New(service, env string) Logger {
	level := zerolog.InfoLevel
	if env == "local" {
		level = zerolog.DebugLevel
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return log.Level(level).With().Str("service", service).Logger()
}

func With(logger Logger, fields Fields) Logger {
	event := logger
	for k, v := range fields {
		event = event.With().Interface(k, v).Logger()
	}
	return event
}
