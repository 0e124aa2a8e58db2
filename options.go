package chip8

import (
	"io"
	"log"
	"math/rand"
	"time"
)

// Option configures a System at construction.
type Option func(sys *System)

// WithRand sets the random source used by CXKK. A nil source is ignored.
func WithRand(r *rand.Rand) Option {
	return func(sys *System) {
		if r != nil {
			sys.rng = r
		}
	}
}

// WithSeed seeds the random source used by CXKK.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithLogger sets the logger for unknown opcodes and stack faults. A nil
// logger is ignored.
func WithLogger(l *log.Logger) Option {
	return func(sys *System) {
		if l != nil {
			sys.logger = l
		}
	}
}

func defaultOptions() []Option {
	return []Option{
		WithSeed(time.Now().UnixNano()),
		WithLogger(log.New(io.Discard, "chip8: ", 0)),
	}
}
