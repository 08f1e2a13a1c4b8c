package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager-api/internal/config"
)

// NewDefaultLogger returns the JSON logger used until the config is read.
func NewDefaultLogger() zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()

	logger.Info().Msg("initialized default logger")
	return logger
}

func newApplicationLogger(logger zerolog.Logger, env string, out io.Writer) (zerolog.Logger, error) {
	w := out
	switch env {
	case config.EnvDev:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case config.EnvProd:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case config.EnvLocal:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = out
		w = consoleWriter
	default:
		return logger, fmt.Errorf("unknown env: %s", env)
	}

	return logger.Output(w), nil
}

func MustInitApplicationLogger(logger zerolog.Logger, env string) zerolog.Logger {
	appLogger, err := newApplicationLogger(logger, env, os.Stdout)
	if err != nil {
		logger.Error().
			Str("env", env).
			Msg("unknown env")
		panic(err)
	}

	appLogger.Info().Msg("initialized application logger")
	return appLogger
}
