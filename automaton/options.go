package automaton

import (
	"runtime"
)

type config struct {
	strict  bool
	workers int
}

// Option changes automaton builder settings.
type Option func(*config)

// WithStrict disables conflict resolution: every shift/reduce and reduce/reduce conflict
// is reported as *ConflictError.
func WithStrict(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

// WithWorkers sets the number of goroutines computing action rows, n < 1 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

func newConfig(opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.workers < 1 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	return c
}
