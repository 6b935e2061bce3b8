// SPDX-License-Identifier: MIT

// Package eigen computes the spectral decomposition A = V·D·Vᵗ of a real
// symmetric matrix: D diagonal with the eigenvalues in descending order,
// V orthogonal with the matching unit eigenvectors as columns.
//
// The pipeline has two stages. New first reduces the input to symmetric
// tridiagonal form with Householder reflections (package householder),
// then diagonalizes the band with an implicit-shift QL iteration: per
// eigenvalue the band is scanned for a negligible off-diagonal entry to
// deflate at, a Wilkinson-style shift is computed from the leading 2×2
// block, and a sweep of Givens rotations chases the bulge while the same
// rotations accumulate into V. Each eigenvalue gets a bounded number of
// sweeps (WithMaxIterations, default 30); exceeding it yields
// ErrNoConvergence, which in practice indicates NaN/Inf contamination
// rather than a hard spectrum.
//
// NewFromTriDiagonal skips the reduction and diagonalizes a band given
// directly as its main and secondary diagonals, which is the natural entry
// point when the tridiagonal form is already known (difference stencils,
// Toeplitz bands, chained decompositions).
//
// Eigenvalues dominated by the spectrum radius (relative machine epsilon)
// are clamped to exactly zero, so IsNonSingular and Determinant give clean
// answers for rank-deficient inputs. The Solve family inverts through the
// spectrum (x = V·D⁻¹·Vᵗ·b) and returns ErrSingular when any eigenvalue is
// zero.
//
// V, D, and Vᵗ are materialized lazily and cached — safe for concurrent
// readers, reference-stable across calls.
package eigen
