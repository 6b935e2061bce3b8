// SPDX-License-Identifier: MIT

// Package lu computes the LUP decomposition of a square matrix: P·A = L·U
// with L unit lower triangular, U upper triangular and P a row permutation
// chosen by partial pivoting (at each column, the row with the largest
// remaining absolute value wins).
//
// ✨ Key features:
//   - decompose once, query many times — L/U/P are cached and
//     reference-stable across accessor calls
//   - partial pivoting with a configurable relative singularity threshold
//     (WithSingularityThreshold): a pivot below threshold·scale(A) marks the
//     matrix singular
//   - the singular state is a queryable flag, not an accessor error:
//     IsNonSingular() reports it, L()/U()/P() return nil, Determinant()
//     returns exactly 0 — while Solve* fails with ErrSingular
//   - Determinant() in O(n) from the diagonal of U and the permutation parity
//   - Solve for matrix, *Vector and []float64 right-hand sides without ever
//     forming A⁻¹ (Inverse() exists for callers who truly need it)
//
// ⚙️ Usage:
//
//	a, _ := matrix.NewDenseFromRows([][]float64{{2, 3, 3}, {0, 5, 7}, {6, 9, 8}})
//	dec, err := lu.New(a)
//	if err != nil { ... }                  // matrix.ErrNonSquare, ...
//	if !dec.IsNonSingular() { ... }        // singular: factors are nil
//	x, err := dec.SolveSlice([]float64{1, 2, 3})
//	det := dec.Determinant()
//
// Complexity: O(n³) decomposition, O(n²) per solve, O(n) determinant.
package lu
