// Package logger provides the global logger for the application.
package logger

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// Init configures the global zerolog logger: console output on stderr with
// caller info, level taken from LOG_LEVEL (info when unset or unparseable).
// A .env file is loaded first when present so LOG_LEVEL can live there.
//
// Example usage:
//
//	logger.Init() <- inside whichever main() function in your entrypoint
func Init() {
	// .env is optional; continue with the ambient environment otherwise.
	_ = godotenv.Load()

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

	level := zerolog.InfoLevel
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err == nil && parsed != zerolog.NoLevel {
			level = parsed
		} else {
			log.Warn().Str("log_level", raw).Msg("unknown LOG_LEVEL, defaulting to info")
		}
	}

	zerolog.SetGlobalLevel(level)
}
