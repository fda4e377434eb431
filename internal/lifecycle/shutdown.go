package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// ShutdownHooks releases resources acquired during startup. Hooks run in
// reverse registration order, so a resource is released before anything it
// was built on. A failing hook does not stop the remaining hooks.
type ShutdownHooks struct {
	hooks []hook
}

// AddContext registers a hook that receives the shutdown context. Nil hooks
// are ignored with a warning.
func (s *ShutdownHooks) AddContext(name string, fn func(context.Context) error) {
	if fn == nil {
		log.Warn().Str("hook", name).Msg("attempted to add nil shutdown hook; ignoring")
		return
	}

	log.Debug().Str("hook", name).Msg("adding shutdown hook")
	s.hooks = append(s.hooks, hook{name: name, fn: fn})
}

// AddClose registers closer.Close as a hook. A closer that panics, such as a
// typed nil pointer, fails its hook without stopping the others.
func (s *ShutdownHooks) AddClose(name string, closer io.Closer) {
	if closer == nil {
		log.Warn().Str("hook", name).Msg("attempted to add nil shutdown hook; ignoring")
		return
	}

	s.AddContext(name, func(context.Context) error { return closer.Close() })
}

// Len is the number of registered hooks.
func (s *ShutdownHooks) Len() int {
	return len(s.hooks)
}

// Execute runs every hook once, newest first, and reports all failures.
// Executed hooks are removed, so a second call does nothing.
func (s *ShutdownHooks) Execute(ctx context.Context) error {
	l := log.Ctx(ctx)

	var errs []error
	for i := len(s.hooks) - 1; i >= 0; i-- {
		h := s.hooks[i]
		hookLog := l.With().Str("hook", h.name).Logger()

		hookLog.Debug().Msg("shutdown started")
		if err := h.run(ctx); err != nil {
			hookLog.Warn().Err(err).Msg("shutdown failed")
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
		} else {
			hookLog.Debug().Msg("shutdown complete")
		}
	}
	s.hooks = nil

	return errors.Join(errs...)
}

func (h hook) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during shutdown: %v", r)
		}
	}()

	return h.fn(ctx)
}
