// Package logger builds the zerolog logger shared by the server binary and
// its background health checkers.
package logger

import (
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

// New returns the service-wide logger. Events logged with .Stack() carry a
// pkg/errors stack trace, so failed store calls behind a triage request can
// be traced without reproducing them.
func New(serviceName string) zerolog.Logger {
	// Marshal pkg/errors stacks when the error already carries one, and
	// attach one otherwise so .Stack() still renders something useful for
	// plain stdlib errors.
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
		if _, ok := err.(stackTracer); ok {
			return err
		}
		return pkgerrors.WithStack(err)
	}

	return zerolog.New(os.Stdout).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
