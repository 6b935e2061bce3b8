// SPDX-License-Identifier: MIT

// Package cholesky factorizes a symmetric positive definite matrix as
// A = L·Lᵗ with L lower triangular and positive on the diagonal.
//
// Construction is fail-fast, checks in a fixed order:
//  1. the input must be square (matrix.ErrNonSquare);
//  2. symmetric within a relative threshold (ErrNotSymmetric) — checked
//     before any arithmetic so an asymmetric input never reaches the
//     recurrence;
//  3. positive definite: every pivot produced by the recurrence must exceed
//     an absolute positivity threshold (ErrNotPositiveDefinite).
//
// Both thresholds are configurable (WithRelativeSymmetryThreshold,
// WithAbsolutePositivityThreshold). L and Lᵗ are materialized lazily and
// cached, safe for concurrent readers and reference-stable across calls.
//
// For an SPD system the Cholesky route is roughly twice as fast as LU and
// never needs pivoting; Determinant is the squared product of the diagonal
// of L, and the Solve family runs two triangular substitutions.
package cholesky
