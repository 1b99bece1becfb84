// Package safe keeps panics inside the goroutine that raised them so a
// failing branch of one tool call cannot bring the server down.
package safe

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Error wraps a recovered panic value.
func Error(r any) error {
	return fmt.Errorf("internal error: %v", r)
}

// Recover turns a panic into *err. It must be deferred directly.
func Recover(err *error) {
	if r := recover(); r != nil {
		log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered panic")
		*err = Error(r)
	}
}

// Go runs fn on g and reports a panic as the branch's error.
func Go(g *errgroup.Group, fn func() error) {
	g.Go(func() (err error) {
		defer Recover(&err)
		return fn()
	})
}
