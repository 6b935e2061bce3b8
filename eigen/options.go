// SPDX-License-Identifier: MIT

package eigen

// DefaultMaxIterations bounds the QL sweeps spent on a single eigenvalue.
// 30 is the classical EISPACK/tql2 budget; well-formed symmetric input
// converges in a handful of sweeps.
const DefaultMaxIterations = 30

const panicIterationsInvalid = "eigen: max iterations must be positive"

// Options carries the tunable knobs of the decomposition.
type Options struct {
	maxIterations int
}

// Option mutates Options; invalid values panic at construction time so a
// misconfigured decomposition can never be observed half-built.
type Option func(*Options)

// WithMaxIterations overrides DefaultMaxIterations. Panics when n < 1.
func WithMaxIterations(n int) Option {
	if n < 1 {
		panic(panicIterationsInvalid)
	}

	return func(o *Options) { o.maxIterations = n }
}

func gatherOptions(opts ...Option) Options {
	o := Options{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
