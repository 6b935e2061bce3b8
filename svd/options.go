// SPDX-License-Identifier: MIT

package svd

import "math"

// DefaultMaxIterations bounds the QR sweeps spent between two consecutive
// deflations. Well-formed input converges in a handful of sweeps; the
// budget exists to turn NaN/Inf contamination into ErrNoConvergence
// instead of an endless loop.
const DefaultMaxIterations = 75

// AutoRankTolerance selects the classical relative cutoff
// ε·max(m,n)·σ_max, where ε is the float64 machine epsilon.
const AutoRankTolerance = 0.0

const (
	panicIterationsInvalid = "svd: max iterations must be positive"
	panicToleranceInvalid  = "svd: rank tolerance must be finite and non-negative"
)

// Options carries the tunable knobs of the decomposition.
type Options struct {
	maxIterations int
	rankTolerance float64 // relative to σ_max; AutoRankTolerance = classical default
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

// WithRankTolerance sets the relative cutoff below which a singular value
// is treated as zero (scaled by σ_max). Pass AutoRankTolerance to restore
// the dimension-aware default. Panics when the value is NaN, infinite, or
// negative.
func WithRankTolerance(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.rankTolerance = eps }
}

func gatherOptions(opts ...Option) Options {
	o := Options{
		maxIterations: DefaultMaxIterations,
		rankTolerance: AutoRankTolerance,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
