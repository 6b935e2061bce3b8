// SPDX-License-Identifier: MIT

// Package qr computes the Householder QR decomposition of a real m×n
// matrix with m ≥ n: A = Q·R, where Q is an m×m orthogonal matrix and R is
// an m×n upper trapezoidal matrix (upper triangular when m == n).
//
// The factorization proceeds one column minor at a time. Each step builds a
// Householder reflector that annihilates the subdiagonal of the current
// column; the reflectors are stored compactly together with the resulting
// R diagonal, and Q / Qᵗ / R / H are materialized lazily on first access
// and cached (safe for concurrent readers, reference-stable across calls).
//
// H exposes the raw reflector vectors as a lower trapezoidal matrix, which
// is occasionally useful for reconstructing Q incrementally or debugging
// the factorization.
//
// Rank handling is relative: a diagonal entry of R counts as zero when its
// magnitude falls below WithRankThreshold (default 1e-12) times the largest
// |R| diagonal magnitude. IsFullRank reports the outcome; the Solve family
// returns ErrRankDeficient instead of producing an unstable least-squares
// answer.
//
// Determinism: identical input bits and options yield identical factors.
package qr
