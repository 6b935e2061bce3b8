// SPDX-License-Identifier: MIT

// Package lu: functional configuration for the decomposition.
// Design goals mirror the matrix package: deterministic behavior, no global
// state, panic only on nonsensical option values (programmer error).
package lu

import "math"

// DefaultSingularityThreshold is the relative bound under which a chosen
// pivot declares the matrix singular: |pivot| < threshold·scale(A), where
// scale(A) is the largest absolute entry of the input. The default carries
// over the reference tuning for double precision; calibrate against the
// reconstruction tolerances of your data if you change it.
const DefaultSingularityThreshold = 1e-11

// panicThresholdInvalid is the stable message for invalid option input.
const panicThresholdInvalid = "lu: WithSingularityThreshold: threshold must be finite, non-negative"

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
type Options struct {
	singularityThreshold float64 // >= 0; DefaultSingularityThreshold
}

// WithSingularityThreshold sets the relative pivot bound for declaring the
// matrix singular. Panics when threshold is negative, NaN or ±Inf.
// Complexity: O(1).
func WithSingularityThreshold(threshold float64) Option {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold < 0 {
		panic(panicThresholdInvalid)
	}

	return func(o *Options) { o.singularityThreshold = threshold }
}

// gatherOptions resolves defaults then applies setters in order.
func gatherOptions(opts ...Option) Options {
	o := Options{singularityThreshold: DefaultSingularityThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
