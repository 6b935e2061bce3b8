// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for the numeric ingestion policy.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors,
//   - gatherOptions helper (internal) that enforces invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Reusability: Options fields are unexported; public APIs consume ...Option.
package matrix

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultEpsilon is the baseline non-negative tolerance for structural
	// checks (symmetry). Decomposition packages layer their own thresholds on
	// top; this constant is the library-wide floor for float64 comparisons.
	DefaultEpsilon = 1e-12

	// DefaultValidateNaNInf toggles strict finite-value validation on
	// ingestion (NewDenseFromRows, NewVectorFromSlice). Decompositions assume
	// finite inputs; rejecting NaN/±Inf at the door keeps every downstream
	// singularity/convergence decision meaningful.
	DefaultValidateNaNInf = true
)

// ---------- Public option type (functional) ----------

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// It is intentionally opaque: public entry points accept `...Option` and
// internally resolve them via gatherOptions.
type Options struct {
	validateNaNInf bool // DefaultValidateNaNInf
}

// WithValidateNaNInf enables strict finite-value validation on ingestion.
// This is the default; use WithNoValidateNaNInf to relax.
// Complexity: O(1).
func WithValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = true }
}

// WithNoValidateNaNInf disables NaN/Inf validation on ingestion.
// Use with care: non-finite entries poison every pivot comparison and
// convergence test downstream. Intended for callers that sanitize later.
// Complexity: O(1).
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = false }
}

// gatherOptions resolves defaults then applies setters in order.
func gatherOptions(opts ...Option) Options {
	o := Options{validateNaNInf: DefaultValidateNaNInf}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
