// SPDX-License-Identifier: MIT

// Package matrix implements the numeric core of featval: a feature-by-condition
// matrix with nullable cells and the statistics computed over it.
//
// The matrix package provides:
//
//   - FeatureMatrix, a row-major matrix with row ids (features), column ids
//     (conditions) and a presence mask so a missing cell stays distinct from
//     0.0 and from NaN.
//   - ResolveIndices, the three-way selection rule (explicit indices, then
//     ids, then every position) shared by the row and the column axis.
//   - RowStats / ColumnStats and RowSetStat / ColumnSetStat, per-item and
//     per-set aggregates (avg, min, max, sample std, missing count).
//   - RowPairwiseComparison / ColumnPairwiseComparison, Pearson correlation
//     with pairwise exclusion of missing cells.
//   - FillMissing / Correct, global-mean imputation.
//   - Submatrix, extraction of a selected block with its ids.
//
// Statistics that cannot be computed (no present value, fewer than two values
// for a standard deviation or a correlation) are reported in-band as nil
// pointers, never as errors. Identifier and shape violations are errors and
// are matched with errors.Is against the sentinels in errors.go.
//
// All functions are synchronous, deterministic and hold no shared state.
package matrix
