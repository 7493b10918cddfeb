// Package recovery converts panics raised by user-supplied renderers into
// errors so one faulty backend cannot crash the caller.
package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ErrPanic is wrapped by every error produced from a recovered panic.
var ErrPanic = errors.New("panic")

// RecoverToValue calls fn and returns its results. If fn panics, the zero
// value and an error wrapping ErrPanic are returned instead. logger may be
// nil.
//
// Example:
//
//	q, err := recovery.RecoverToValue(logger, "render", func() (Query, error) {
//	    return render(node)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error("Panic recovered",
					"operation", operation,
					"panic", r,
					"stack", string(debug.Stack()),
				)
			}

			var zero T
			result = zero
			err = fmt.Errorf("%s: %w: %v", operation, ErrPanic, r)
		}
	}()

	return fn()
}
