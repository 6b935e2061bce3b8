// Package linalg is a dense numerical linear-algebra engine: a family of
// matrix factorizations built on shared Householder reduction primitives,
// plus solvers that answer "solve Ax=b", "is A singular", "what is det(A) /
// cond(A)" without ever forming an explicit inverse.
//
// 🚀 What is linalg?
//
//	A deterministic, pure-Go library that brings together:
//		• Dense value types: bounds-checked Matrix & Vector + arithmetic kernels
//		• Reduction primitives: Householder tri- and bidiagonalization
//		• LU: partial-pivoted elimination, determinant, permutation, solver
//		• QR: Householder reflections, rank-revealing, least-squares solver
//		• Cholesky: SPD factorization with fail-fast symmetry checks
//		• Eigen: symmetric eigendecomposition via implicit-shift QL
//		• SVD: singular values/vectors via Golub–Kahan sweeps
//
// ✨ Why choose linalg?
//
//   - Decompose once, query many times — factor matrices are computed once
//     and cached; repeated accessor calls return the identical instance
//   - Rock-solid error discipline — sentinel errors matched via errors.Is,
//     one distinct kind per failure mode (dimension mismatch, non-square,
//     not symmetric, not positive definite, singular, non-convergence)
//   - Pure Go — no cgo, no hidden deps
//   - Deterministic — fixed loop orders, no global state, per-call tolerances
//
// Under the hood, everything is organized under seven subpackages:
//
//	matrix/      — dense Matrix & Vector data model, validators, numeric policy
//	householder/ — tridiagonalization & bidiagonalization (shared by eigen/svd)
//	lu/          — LU decomposition + solver
//	qr/          — QR decomposition + solver
//	cholesky/    — Cholesky decomposition + solver
//	eigen/       — symmetric eigendecomposition + solver
//	svd/         — singular value decomposition + solver
//
// Quick example:
//
//	a, _ := matrix.NewDenseFromRows([][]float64{{2, 3, 3}, {0, 5, 7}, {6, 9, 8}})
//	dec, _ := lu.New(a)
//	x, _ := dec.SolveSlice([]float64{1, 2, 3})
//
// Dive into each package's doc.go and example_test.go for full walkthroughs.
//
//	go get github.com/katalvlaran/linalg
package linalg
