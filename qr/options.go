// SPDX-License-Identifier: MIT

package qr

import "math"

// DefaultRankThreshold is the relative tolerance below which a diagonal
// entry of R is treated as zero. It is scaled by the largest |R| diagonal
// magnitude, so the check adapts to the overall scale of the input.
const DefaultRankThreshold = 1e-12

const panicThresholdInvalid = "qr: rank threshold must be finite and non-negative"

// Options carries the tunable knobs of the decomposition.
type Options struct {
	rankThreshold float64
}

// Option mutates Options; invalid values panic at construction time so a
// misconfigured decomposition can never be observed half-built.
type Option func(*Options)

// WithRankThreshold overrides DefaultRankThreshold. Panics when the value
// is NaN, infinite, or negative.
func WithRankThreshold(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicThresholdInvalid)
	}

	return func(o *Options) { o.rankThreshold = eps }
}

func gatherOptions(opts ...Option) Options {
	o := Options{rankThreshold: DefaultRankThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
