// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Replace missing cells with the global mean of all present cells.
//
// Exposed API (via api.go):
//   - FillMissing(M)              -> filled count
//   - Correct(M, transformType)   -> filled count, or ErrUnsupportedOperation
//
// Numeric policy:
//   - The fill value is ONE scalar for the whole matrix (not per row/column).
//   - No present value at all → the fill value is 0.
//   - A matrix without missing cells is left untouched.

package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

const (
	opFillMissing = "FillMissing"
	opCorrect     = "Correct"

	// TransformMissing is the only correction type Correct implements.
	TransformMissing = "missing"
)

// fillMissing imputes in place and returns the number of cells filled.
// Implementation:
//   - Stage 1: gather present values and count missing cells.
//   - Stage 2: nothing missing → return 0 without touching the buffer.
//   - Stage 3: write mean (or 0 when nothing is present) into every gap.
//
// Determinism:
//   - Sum in row-major order (floats.Sum over the gathered values).
//
// Complexity:
//   - Time O(r*c), Space O(r*c) for the gathered values.
func fillMissing(m *FeatureMatrix) int {
	// Stage 1 (Prepare).
	vals := make([]float64, 0, len(m.data))
	missing := 0
	for k, ok := range m.present {
		if ok {
			vals = append(vals, m.data[k])
		} else {
			missing++
		}
	}

	// Stage 2 (Short-circuit): idempotence falls out of this check.
	if missing == 0 {
		return 0
	}

	// Stage 3 (Execute).
	mean := 0.0
	if len(vals) > 0 {
		mean = floats.Sum(vals) / float64(len(vals))
	}
	for k, ok := range m.present {
		if !ok {
			m.data[k] = mean
			m.present[k] = true
		}
	}

	return missing
}

// correct dispatches a named correction.
func correct(m *FeatureMatrix, transformType string) (int, error) {
	if m == nil {
		return 0, matrixErrorf(opCorrect, ErrNilMatrix)
	}
	switch transformType {
	case TransformMissing:
		return fillMissing(m), nil
	default:
		return 0, matrixErrorf(opCorrect, fmt.Errorf("transform type %q: %w", transformType, ErrUnsupportedOperation))
	}
}
