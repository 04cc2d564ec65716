// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Extract an independent block of a matrix (selected rows × selected
//     columns) together with the matching ids.
//
// Exposed API (via api.go):
//   - Submatrix(M, rows, cols) -> *FeatureMatrix

package matrix

const opSubmatrix = "Submatrix"

// submatrix copies the (rowIdx × colIdx) block into a new FeatureMatrix.
// Implementation:
//   - Stage 1: validate M, default both selections to the whole axis,
//     range-check them.
//   - Stage 2: allocate the result with the picked ids.
//   - Stage 3: copy cells (value and presence) in selection order.
//
// Behavior highlights:
//   - Repeated indices produce repeated rows/columns.
//   - Missing cells stay missing.
//
// Errors:
//   - ErrNilMatrix, ErrOutOfRange, or wrapped At errors on the fallback path.
//
// Complexity:
//   - Time O(|rows|·|cols|), Space O(|rows|·|cols|).
func submatrix(m Matrix, rowIdx, colIdx []int) (*FeatureMatrix, error) {
	// Stage 1 (Validate).
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opSubmatrix, err)
	}
	rowIdx = orAll(rowIdx, m.Rows())
	colIdx = orAll(colIdx, m.Cols())
	if err := ValidateIndices(rowIdx, m.Rows()); err != nil {
		return nil, matrixErrorf(opSubmatrix, err)
	}
	if err := ValidateIndices(colIdx, m.Cols()); err != nil {
		return nil, matrixErrorf(opSubmatrix, err)
	}

	// Stage 2 (Prepare).
	rowIDs, colIDs := m.RowIDs(), m.ColIDs()
	subRows := make([]string, len(rowIdx))
	for i, r := range rowIdx {
		subRows[i] = rowIDs[r]
	}
	subCols := make([]string, len(colIdx))
	for j, c := range colIdx {
		subCols[j] = colIDs[c]
	}
	o := defaultOptions()
	o.copyIDs = false
	if fm, ok := m.(*FeatureMatrix); ok {
		o.validateNaNInf = fm.validateNaNInf
	}
	res := allocFeatureMatrix(subRows, subCols, o)

	// Stage 3 (Execute): row view keeps (i, j) in matrix coordinates.
	v := newAxisView(m, RowAxis)
	var dst int
	for _, r := range rowIdx {
		for _, c := range colIdx {
			x, ok, err := v.cell(r, c)
			if err != nil {
				return nil, matrixErrorf(opSubmatrix, err)
			}
			res.data[dst], res.present[dst] = x, ok
			dst++
		}
	}

	return res, nil
}
