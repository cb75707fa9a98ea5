package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the service-wide zerolog Logger: JSON to stdout in
// production, a human-friendly console writer when APP_ENV=dev/development.
func NewLogger(env string) zerolog.Logger {
	l := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if env == "dev" || env == "development" {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return l
}
