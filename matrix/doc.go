// SPDX-License-Identifier: MIT

// Package matrix provides the dense numeric storage used by the distance engine.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with safe accessors (At/Set return
//     errors instead of panicking) and copy-based row selection (Induced).
//   - A per-instance numeric policy: finite-only by default, relaxed with
//     WithNoValidateNaNInf for feature matrices that carry undefined blocks
//     and for distance matrices that carry NaN for "no common block".
//   - Statistics used by the metrics: row L1 normalisation, column sample
//     variances (ddof=1), covariance and inverse.
//   - Kernels used by block aggregation: ScatterAdd and DivideOrNaN, plus a
//     NaN-aware AllClose for equivalence checks.
//
// Everything is deterministic: fixed i→j loop order, no map iteration.
package matrix
