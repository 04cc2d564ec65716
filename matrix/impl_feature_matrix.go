// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Provide FeatureMatrix, the canonical in-memory feature-by-condition matrix.
//   - Keep the row-major flat layout (offset = i*c + j) with a parallel
//     presence mask so missing cells never collapse into 0.0 or NaN.
//
// Exposed API:
//   - NewFeatureMatrix(rowIDs, colIDs, values, opts...) -> (*FeatureMatrix, error)
//   - NewMissingMatrix(rowIDs, colIDs, opts...)         -> (*FeatureMatrix, error)
//   - (*FeatureMatrix).At / Set / Clear / Clone / Values / MissingCount
//   - JSON encoding as {"row_ids": [...], "col_ids": [...], "values": [[...|null|"NaN"]]}
//
// AI-Hints:
//   - Kernels type-assert *FeatureMatrix to reach data/present directly.

package matrix

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Method tags for featureErrorf.
const (
	ctxAt    = "At"
	ctxSet   = "Set"
	ctxClear = "Clear"
	ctxNew   = "NewFeatureMatrix"
)

const (
	_fmtMissing = "NA"
	_fmtSep     = "\t"
)

// featureErrorf wraps a cell-level error with method and coordinates.
func featureErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("FeatureMatrix.%s(%d,%d): %w", method, row, col, err)
}

// FeatureMatrix is a row-major matrix of nullable float64 cells.
//   - rowIDs / colIDs label the axes (features / conditions).
//   - data is a flat buffer of length r*c; present[k] reports whether data[k]
//     holds a value. A missing cell always has data[k] == 0.
type FeatureMatrix struct {
	rowIDs         []string
	colIDs         []string
	r, c           int
	data           []float64
	present        []bool
	validateNaNInf bool
}

// Compile-time assertions.
var (
	_ Matrix           = (*FeatureMatrix)(nil)
	_ fmt.Stringer     = (*FeatureMatrix)(nil)
	_ json.Marshaler   = (*FeatureMatrix)(nil)
	_ json.Unmarshaler = (*FeatureMatrix)(nil)
)

// NewFeatureMatrix builds a matrix from ids and a nullable values grid.
// Implementation:
//   - Stage 1: validate the grid shape against len(rowIDs) × len(colIDs).
//   - Stage 2: copy cells into the flat buffer, recording presence.
//
// Behavior highlights:
//   - A nil cell is missing; NaN is stored as a present NaN unless
//     WithValidateNaNInf is given.
//   - Zero rows or zero columns are legal (an empty matrix).
//
// Errors:
//   - ErrDimensionMismatch when a row has the wrong number of cells or the
//     number of rows differs from len(rowIDs).
//   - ErrNaNInf under WithValidateNaNInf.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewFeatureMatrix(rowIDs, colIDs []string, values [][]*float64, opts ...Option) (*FeatureMatrix, error) {
	// Stage 1 (Validate): grid must match both axes exactly.
	if err := ValidateGrid(rowIDs, colIDs, values); err != nil {
		return nil, matrixErrorf(ctxNew, err)
	}

	// Stage 2 (Prepare): allocate empty storage with the requested policy.
	m := allocFeatureMatrix(rowIDs, colIDs, gatherOptions(opts...))

	// Stage 3 (Execute): copy present cells row by row.
	var i, j int
	for i = 0; i < m.r; i++ {
		base := i * m.c
		for j = 0; j < m.c; j++ {
			p := values[i][j]
			if p == nil {
				continue
			}
			if m.validateNaNInf && (math.IsNaN(*p) || math.IsInf(*p, 0)) {
				return nil, featureErrorf(ctxNew, i, j, ErrNaNInf)
			}
			m.data[base+j] = *p
			m.present[base+j] = true
		}
	}

	return m, nil
}

// NewMissingMatrix allocates a matrix over the given ids with every cell missing.
func NewMissingMatrix(rowIDs, colIDs []string, opts ...Option) *FeatureMatrix {
	return allocFeatureMatrix(rowIDs, colIDs, gatherOptions(opts...))
}

// allocFeatureMatrix allocates storage for len(rowIDs) × len(colIDs) cells.
func allocFeatureMatrix(rowIDs, colIDs []string, o Options) *FeatureMatrix {
	r, c := len(rowIDs), len(colIDs)
	if o.copyIDs {
		rowIDs = append([]string(nil), rowIDs...)
		colIDs = append([]string(nil), colIDs...)
	}

	return &FeatureMatrix{
		rowIDs:         rowIDs,
		colIDs:         colIDs,
		r:              r,
		c:              c,
		data:           make([]float64, r*c),
		present:        make([]bool, r*c),
		validateNaNInf: o.validateNaNInf,
	}
}

// Rows returns the number of rows.
func (m *FeatureMatrix) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *FeatureMatrix) Cols() int { return m.c }

// RowIDs returns the row identifiers in matrix order.
func (m *FeatureMatrix) RowIDs() []string { return m.rowIDs }

// ColIDs returns the column identifiers in matrix order.
func (m *FeatureMatrix) ColIDs() []string { return m.colIDs }

// indexOf converts (row, col) to a flat offset or returns ErrOutOfRange.
func (m *FeatureMatrix) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	return row*m.c + col, nil
}

// At returns the cell at (row, col). ok is false when the cell is missing.
func (m *FeatureMatrix) At(row, col int) (float64, bool, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, false, featureErrorf(ctxAt, row, col, err)
	}

	return m.data[off], m.present[off], nil
}

// Set stores v at (row, col) and marks the cell present.
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for non-finite v under WithValidateNaNInf.
func (m *FeatureMatrix) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return featureErrorf(ctxSet, row, col, err)
	}
	if m.validateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return featureErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v
	m.present[off] = true

	return nil
}

// Clear marks the cell at (row, col) missing.
func (m *FeatureMatrix) Clear(row, col int) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return featureErrorf(ctxClear, row, col, err)
	}
	m.data[off] = 0
	m.present[off] = false

	return nil
}

// Clone returns a deep copy (new buffers, same policy).
func (m *FeatureMatrix) Clone() *FeatureMatrix {
	cp := &FeatureMatrix{
		rowIDs:         append([]string(nil), m.rowIDs...),
		colIDs:         append([]string(nil), m.colIDs...),
		r:              m.r,
		c:              m.c,
		data:           make([]float64, len(m.data)),
		present:        make([]bool, len(m.present)),
		validateNaNInf: m.validateNaNInf,
	}
	copy(cp.data, m.data)
	copy(cp.present, m.present)

	return cp
}

// Values returns the matrix as a nullable grid (fresh allocation).
func (m *FeatureMatrix) Values() [][]*float64 {
	out := make([][]*float64, m.r)
	var i, j int
	for i = 0; i < m.r; i++ {
		row := make([]*float64, m.c)
		base := i * m.c
		for j = 0; j < m.c; j++ {
			if m.present[base+j] {
				v := m.data[base+j]
				row[j] = &v
			}
		}
		out[i] = row
	}

	return out
}

// MissingCount returns the number of missing cells.
func (m *FeatureMatrix) MissingCount() int {
	n := 0
	for _, ok := range m.present {
		if !ok {
			n++
		}
	}

	return n
}

// String renders a tab-separated dump with ids; missing cells print as NA.
func (m *FeatureMatrix) String() string {
	var b strings.Builder
	b.WriteString("feature_ids")
	for _, id := range m.colIDs {
		b.WriteString(_fmtSep)
		b.WriteString(id)
	}
	b.WriteByte('\n')
	var i, j int
	for i = 0; i < m.r; i++ {
		b.WriteString(m.rowIDs[i])
		base := i * m.c
		for j = 0; j < m.c; j++ {
			b.WriteString(_fmtSep)
			if m.present[base+j] {
				fmt.Fprintf(&b, "%g", m.data[base+j])
			} else {
				b.WriteString(_fmtMissing)
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// featureMatrixJSON is the stored form of a FeatureMatrix.
type featureMatrixJSON struct {
	RowIDs []string `json:"row_ids"`
	ColIDs []string `json:"col_ids"`
	Values Grid     `json:"values"`
}

// MarshalJSON encodes the matrix with null for missing cells and quoted
// markers for NaN and ±Inf (see Grid).
func (m *FeatureMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(featureMatrixJSON{RowIDs: m.rowIDs, ColIDs: m.colIDs, Values: m.Values()})
}

// UnmarshalJSON decodes the stored form and validates its shape.
func (m *FeatureMatrix) UnmarshalJSON(data []byte) error {
	var raw featureMatrixJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fm, err := NewFeatureMatrix(raw.RowIDs, raw.ColIDs, raw.Values, WithSharedIDs())
	if err != nil {
		return err
	}
	*m = *fm

	return nil
}
