package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Logger is the process-wide structured logger handed to services. It also
// replaces the zerolog global so middleware packages share the same output.
type Logger struct {
	log zerolog.Logger
}

func NewLogger() *Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zlog.Logger = logger
	return &Logger{log: logger}
}

func (l *Logger) Info(msg string) {
	l.log.Info().Msg(msg)
}

func (l *Logger) Error(msg string) {
	l.log.Error().Msg(msg)
}
