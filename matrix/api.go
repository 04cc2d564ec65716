// SPDX-License-Identifier: MIT
// Package matrix: public API facades.
//
// Purpose:
//   - Provide thin, well-documented entry points for every engine operation.
//   - Avoid any logic duplication: each facade delegates to the canonical kernel.
//   - Keep row and column variants side by side so their symmetry is visible.
//
// Determinism & Policy:
//   - Facades never change loop orders or numeric policy of underlying kernels.
//   - Validation is performed in the kernels; facades only compose or forward.
//
// AI-Hints:
//   - Prefer passing *FeatureMatrix to unlock fast paths (flat-slice loops).
//   - Resolve caller selections with RowIndices/ColumnIndices first, then pass
//     the positions to the statistic facades.

package matrix

// ---------- Selection ----------

// ResolveIndices converts a selection into positions on one axis.
// Precedence: non-empty indices (verbatim), then non-empty ids
// (ErrUnknownIdentifier if any is absent), then every position.
// Complexity: O(len(axisIDs) + len(ids)).
func ResolveIndices(indices []int, ids []string, axisIDs []string) ([]int, error) {
	idx, err := resolveIndices(indices, ids, axisIDs)
	if err != nil {
		return nil, matrixErrorf(opResolveIndices, err)
	}

	return idx, nil
}

// RowIndices resolves a selection against the row axis of m.
func RowIndices(m Matrix, indices []int, ids []string) ([]int, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opRowIndices, err)
	}
	idx, err := resolveIndices(indices, ids, m.RowIDs())
	if err != nil {
		return nil, matrixErrorf(opRowIndices, err)
	}

	return idx, nil
}

// ColumnIndices resolves a selection against the column axis of m.
func ColumnIndices(m Matrix, indices []int, ids []string) ([]int, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opColumnIndices, err)
	}
	idx, err := resolveIndices(indices, ids, m.ColIDs())
	if err != nil {
		return nil, matrixErrorf(opColumnIndices, err)
	}

	return idx, nil
}

// ---------- Item statistics ----------

// RowStats returns one ItemStat per row in forIdx (all rows when empty),
// aggregated over columns onIdx (all columns when empty). When
// onIsRestrictive is false onIdx is ignored and every column is used.
// Complexity: O(|for|·|on|).
func RowStats(m Matrix, forIdx, onIdx []int, onIsRestrictive bool) ([]ItemStat, error) {
	return itemStats(opRowStats, m, RowAxis, forIdx, onIdx, onIsRestrictive)
}

// ColumnStats is RowStats with the roles of rows and columns swapped.
func ColumnStats(m Matrix, forIdx, onIdx []int, onIsRestrictive bool) ([]ItemStat, error) {
	return itemStats(opColumnStats, m, ColumnAxis, forIdx, onIdx, onIsRestrictive)
}

// ---------- Set statistics ----------

// RowSetStat aggregates the rows p.IndicesFor at every column p.IndicesOn.
func RowSetStat(m Matrix, p SetStatParams) (ItemSetStat, error) {
	return setStat(opRowSetStat, m, RowAxis, p)
}

// ColumnSetStat aggregates the columns p.IndicesFor at every row p.IndicesOn.
func ColumnSetStat(m Matrix, p SetStatParams) (ItemSetStat, error) {
	return setStat(opColumnSetStat, m, ColumnAxis, p)
}

// ---------- Pairwise comparison ----------

// RowPairwiseComparison correlates rows forIdx against rows onIdx (Pearson,
// over all columns unless Across restricts them, missing cells excluded
// pairwise). Empty selections mean every row.
// Complexity: O(|for|·|on|·cols).
func RowPairwiseComparison(m Matrix, forIdx, onIdx []int, opts ...PairwiseOption) (*PairwiseComparison, error) {
	return pairwise(opRowPairwise, m, RowAxis, forIdx, onIdx, opts)
}

// ColumnPairwiseComparison correlates columns forIdx against columns onIdx.
func ColumnPairwiseComparison(m Matrix, forIdx, onIdx []int, opts ...PairwiseOption) (*PairwiseComparison, error) {
	return pairwise(opColumnPairwise, m, ColumnAxis, forIdx, onIdx, opts)
}

// ---------- Imputation ----------

// FillMissing replaces every missing cell of m with the global mean of its
// present cells (0 when none is present) and returns how many cells it filled.
// A nil matrix fills nothing. Applying it twice is a no-op the second time.
// Complexity: O(r*c).
func FillMissing(m *FeatureMatrix) int {
	if m == nil {
		return 0
	}

	return fillMissing(m)
}

// Correct applies the named correction in place. Only TransformMissing is
// supported; any other name fails with ErrUnsupportedOperation.
func Correct(m *FeatureMatrix, transformType string) (int, error) {
	return correct(m, transformType)
}

// ---------- Extraction ----------

// Submatrix returns an independent copy of the (rowIdx × colIdx) block with
// its ids. Empty selections mean the whole axis.
// Complexity: O(|rows|·|cols|).
func Submatrix(m Matrix, rowIdx, colIdx []int) (*FeatureMatrix, error) {
	return submatrix(m, rowIdx, colIdx)
}
