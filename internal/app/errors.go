package app

import (
	"context"
	"errors"

	"bcl-go/internal/bcl"
	"bcl-go/internal/config"
)

// ErrCancelled is returned when the operator aborts a password prompt or
// interrupts an audit.
var ErrCancelled = errors.New("cancelled")

// Process exit codes.
const (
	ExitOK = iota
	ExitConfigMissing
	ExitConfigUnreadable
	ExitConfigInvalid
	ExitDatabase
	ExitCancelled
	ExitOther
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, config.ErrMissing):
		return ExitConfigMissing
	case errors.Is(err, config.ErrUnreadable):
		return ExitConfigUnreadable
	case errors.Is(err, config.ErrInvalid):
		return ExitConfigInvalid
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.Is(err, bcl.ErrDatabase):
		return ExitDatabase
	default:
		return ExitOther
	}
}
