package common

import (
	"errors"
	"fmt"

	"github.com/vidfetch/vidfetch/logger"
)

func NewError(a ...any) error {
	return errors.New(fmt.Sprint(a...))
}

// Combine joins the non-nil errors, returning nil when there are none.
func Combine(errs ...error) error {
	return errors.Join(errs...)
}

// Recover must be deferred directly. It logs the panic value under msg and returns it.
func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, " panic: ", panicErr)
		}
	}
	return panicErr
}
