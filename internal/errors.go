package internal

import "github.com/pkg/errors"

// Contract violations. The core never returns these: it panics with an error
// wrapping one of them, since each one means the caller is broken.
var (
	ErrTypeMismatch    = errors.New("reactor: type mismatch")
	ErrAlreadyBuilt    = errors.New("reactor: view already built")
	ErrNotBuilt        = errors.New("reactor: view not built")
	ErrAlreadyStarted  = errors.New("reactor: producer already started")
	ErrNoParent        = errors.New("reactor: node has no parent")
	ErrUnknownNode     = errors.New("reactor: unknown node")
	ErrUnknownCell     = errors.New("reactor: unknown mutable")
	ErrUnknownResource = errors.New("reactor: unknown resource")
	ErrReentrant       = errors.New("reactor: reaction is already running")
	ErrWrongGoroutine  = errors.New("reactor: world used from another goroutine")
)

func fatalf(err error, format string, args ...any) {
	panic(errors.Wrapf(err, format, args...))
}

// fatalf logs the violation before panicking.
func (w *World) fatalf(err error, format string, args ...any) {
	wrapped := errors.Wrapf(err, format, args...)
	w.log.Error().Err(wrapped).Msg("contract violation")
	panic(wrapped)
}

// Fatalf reports a contract violation detected outside the core.
func (w *World) Fatalf(err error, format string, args ...any) {
	w.fatalf(err, format, args...)
}
