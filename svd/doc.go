// SPDX-License-Identifier: MIT

// Package svd computes the compact singular value decomposition of any
// real m×n matrix: A = U·S·Vᵗ with U (m×p) and V (n×p) column-orthogonal,
// S (p×p) diagonal, p = min(m, n), and the singular values on the diagonal
// of S non-negative and descending.
//
// The pipeline: Householder bidiagonalization (package householder) brings
// A to a two-diagonal band, then Golub–Kahan implicit QR sweeps drive the
// superdiagonal to zero. Each sweep classifies the band into one of four
// situations — deflate a negligible trailing value, split at a negligible
// diagonal entry, perform one shifted QR step, or accept a converged value
// (flipping its sign into V and bubbling it into descending position).
// Every Givens rotation used along the way is folded into U or V, so the
// factors stay exact companions of the band at all times.
//
// Tall and wide inputs are both accepted: when m < n the decomposition
// runs on the transpose and the accessors swap U and V, so callers never
// see the difference.
//
// Rank is decided against a relative tolerance (default ε·max(m,n)·σ_max,
// override with WithRankTolerance); ConditionNumber is σ_max/σ_min. The
// Solve family builds the least-squares solution through the retained
// singular values and refuses rank-deficient systems with ErrSingular
// instead of amplifying noise through a near-zero σ.
//
// U, S, V and their transposes are materialized lazily and cached — safe
// for concurrent readers, reference-stable across calls.
package svd
