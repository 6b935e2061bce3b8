// SPDX-License-Identifier: MIT

package cholesky

import "math"

// Default thresholds mirror the classical reference values: symmetry is a
// relative comparison of mirrored entries, positivity an absolute floor on
// the recurrence pivots.
const (
	DefaultRelativeSymmetryThreshold   = 1e-15
	DefaultAbsolutePositivityThreshold = 1e-10
)

const panicThresholdInvalid = "cholesky: threshold must be finite and non-negative"

// Options carries the tunable knobs of the decomposition.
type Options struct {
	relativeSymmetryThreshold   float64
	absolutePositivityThreshold float64
}

// Option mutates Options; invalid values panic at construction time so a
// misconfigured decomposition can never be observed half-built.
type Option func(*Options)

// WithRelativeSymmetryThreshold overrides DefaultRelativeSymmetryThreshold.
// Panics when the value is NaN, infinite, or negative.
func WithRelativeSymmetryThreshold(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicThresholdInvalid)
	}

	return func(o *Options) { o.relativeSymmetryThreshold = eps }
}

// WithAbsolutePositivityThreshold overrides
// DefaultAbsolutePositivityThreshold. Panics when the value is NaN,
// infinite, or negative.
func WithAbsolutePositivityThreshold(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicThresholdInvalid)
	}

	return func(o *Options) { o.absolutePositivityThreshold = eps }
}

func gatherOptions(opts ...Option) Options {
	o := Options{
		relativeSymmetryThreshold:   DefaultRelativeSymmetryThreshold,
		absolutePositivityThreshold: DefaultAbsolutePositivityThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
