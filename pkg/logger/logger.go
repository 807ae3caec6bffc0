// +build !logless

// Package logger provides the process-wide structured logger used by
// every pipeline stage.
package logger

import (
	"os"

	"github.com/rs/zerolog"
	logger "github.com/rs/zerolog/log"
)

var Log = logger.With().Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr})

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// Stage returns a logger bound to a pipeline stage name and an image
// fingerprint, so every line for one image/stage pair can be grepped
// together.
func Stage(stage, fingerprint string) zerolog.Logger {
	return Log.With().Str("stage", stage).Str("img", fingerprint).Logger()
}
