// SPDX-License-Identifier: MIT

// Package householder implements the two orthogonal reduction primitives the
// spectral decompositions are built on: tridiagonalization of a symmetric
// matrix (A = Q·T·Qᵗ) and bidiagonalization of a general matrix
// (A = U·B·Vᵗ), both driven by sequences of Householder reflections.
//
// 🚀 What is a Householder reflection?
//
//	An orthogonal transformation I − τ·v·vᵗ chosen so that it zeroes the
//	trailing entries of a subvector while preserving its 2-norm. Chaining
//	one reflection per column (and, for bidiagonalization, alternately per
//	row) drives a dense matrix to a banded form that iterative
//	diagonalization can then finish cheaply:
//	  • eigen/ consumes Tridiagonalize — implicit-shift QL on (main, secondary)
//	  • svd/  consumes Bidiagonalize  — Golub–Kahan sweeps on (main, secondary)
//
// ✨ Key properties:
//   - One factorization per transformer, computed at construction;
//     Q/T/U/B/V accessors are cached, reference-stable, and safe for
//     concurrent readers (populated at most once, then frozen).
//   - The caller's matrix is never mutated: the transformer owns a private
//     working copy.
//   - Degenerate steps are identity reflections: a zero subvector norm never
//     divides by zero, so an already tri-/bidiagonal input passes through
//     unchanged.
//
// ⚙️ Usage:
//
//	tri, err := householder.Tridiagonalize(a) // a square symmetric
//	q, t := tri.Q(), tri.T()                  // a = q · t · qᵗ
//
//	bi, err := householder.Bidiagonalize(g)   // g any m×n
//	u, b, v := bi.U(), bi.B(), bi.V()         // g = u · b · vᵗ
//
// Complexity: O(n³) time, O(n²) memory for both reductions.
package householder
