// SPDX-License-Identifier: MIT

// Package matrix provides the dense data model every decomposition in this
// module is built on: a bounds-checked, row-major Matrix of float64 values,
// its one-dimensional Vector counterpart, and the arithmetic kernels
// (Add, Sub, Mul, Transpose, Scale, MatVec, Norm1) the factorization
// packages and their tests rely on.
//
// The matrix package provides:
//
//   - Dense — a concrete row-major Matrix implementation with flat backing
//     storage for cache friendliness, plus explicit copy/no-copy constructors
//     so performance-sensitive callers can opt into aliasing.
//   - Vector — the 1-D counterpart with the same indexing/copy discipline;
//     Row/Col extract copies of matrix rows and columns.
//   - Central validators (ValidateSquare, ValidateSymmetric, ...) returning
//     package-level sentinel errors, so every decomposition fails the same
//     way on the same bad input.
//   - A numeric policy (epsilon, NaN/Inf validation) configured through
//     functional options; no global state.
//
// All kernels are deterministic: fixed loop orders, a fast path over *Dense
// backing slices and an interface fallback via At/Set. Inputs are never
// mutated; results are freshly allocated.
//
// See example_test.go for usage patterns and the lu/qr/cholesky/eigen/svd
// packages for the decomposition surfaces built on top of these types.
package matrix
