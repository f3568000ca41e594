package logger

import (
	"io"
	"os"
	"time"

	"hotel/config"
	"hotel/shared/constant"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultLevel = zerolog.InfoLevel

// InitLogger installs a human readable console logger. SetLogLevel switches to JSON once the
// environment is known.
func InitLogger() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
}

// SetLogLevel applies SERVER_LOG_LEVEL, defaulting to info when it is empty or unknown.
// Production emits one JSON object per line tagged with the service name.
func SetLogLevel(cfg *config.Config) {
	if cfg.IsProduction() {
		Use(os.Stdout, cfg.App.Name)
	}

	level := defaultLevel

	if cfg.Server.LogLevel != constant.Empty {
		parsed, err := zerolog.ParseLevel(cfg.Server.LogLevel)
		if err != nil {
			log.Warn().Str("loglevel", cfg.Server.LogLevel).Msg("Unknown log level, using info")
		} else {
			level = parsed
		}
	}

	zerolog.SetGlobalLevel(level)

	log.Debug().Str("loglevel", level.String()).Msg("Log level set")
}

// Use sends structured JSON logs to out.
func Use(out io.Writer, service string) {
	ctx := zerolog.New(out).With().Timestamp()
	if service != constant.Empty {
		ctx = ctx.Str("service", service)
	}

	log.Logger = ctx.Logger()
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}
