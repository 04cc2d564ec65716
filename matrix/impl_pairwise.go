// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Pearson correlation between items of one axis, over the opposite axis
//     (all of it unless restricted with Across), with missing cells excluded
//     pairwise (never imputed).
//
// Exposed API (via api.go):
//   - RowPairwiseComparison(M, for, on, opts...)    -> *PairwiseComparison
//   - ColumnPairwiseComparison(M, for, on, opts...) -> *PairwiseComparison
//   - Across(idx) PairwiseOption
//
// Determinism & Performance:
//   - Item vectors are materialized once per distinct item, then every
//     (for, on) pair is a single O(others) merge.
//   - Outer order follows "for", inner order follows "on".

package matrix

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	opRowPairwise    = "RowPairwiseComparison"
	opColumnPairwise = "ColumnPairwiseComparison"
)

// PairwiseOption configures a pairwise comparison.
type PairwiseOption func(*pairwiseOptions)

type pairwiseOptions struct {
	across []int
}

// Across restricts the correlation to the given opposite-axis positions
// (columns for row comparisons), in the given order. Empty means every
// position. Out-of-range positions fail with ErrOutOfRange.
func Across(idx []int) PairwiseOption {
	return func(o *pairwiseOptions) { o.across = idx }
}

// itemVector is one item's selected opposite-axis values plus presence.
type itemVector struct {
	vals    []float64
	present []bool
}

// loadVector materializes an item at the across positions.
func loadVector(v axisView, item int, across []int) (itemVector, error) {
	n := len(across)
	iv := itemVector{vals: make([]float64, n), present: make([]bool, n)}
	for k, o := range across {
		x, ok, err := v.cell(item, o)
		if err != nil {
			return itemVector{}, err
		}
		iv.vals[k], iv.present[k] = x, ok
	}

	return iv, nil
}

// pearson correlates a and b over positions where both are present.
// Returns nil when fewer than two positions overlap or either side is
// constant over the overlap (the coefficient is undefined).
//
// xs/ys are caller-owned scratch buffers reused across pairs.
func pearson(a, b itemVector, xs, ys []float64) (*float64, []float64, []float64) {
	xs, ys = xs[:0], ys[:0]
	for o := range a.vals {
		if a.present[o] && b.present[o] {
			xs = append(xs, a.vals[o])
			ys = append(ys, b.vals[o])
		}
	}
	if len(xs) < 2 {
		return nil, xs, ys
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, xs, ys
	}

	return &r, xs, ys
}

// pairwise builds the |for|×|on| correlation grid.
// Implementation:
//   - Stage 1: validate M, default every selection (for, on, across) to its
//     whole axis, range-check them.
//   - Stage 2: materialize every distinct referenced item once.
//   - Stage 3: fill the grid in for→on order.
//
// Errors:
//   - ErrNilMatrix, ErrOutOfRange, or wrapped At errors on the fallback path.
//
// Complexity:
//   - Time O((|for|+|on|)·|across| + |for|·|on|·|across|), Space O((|for|+|on|)·|across|).
func pairwise(op string, m Matrix, axis Axis, forIdx, onIdx []int, opts []PairwiseOption) (*PairwiseComparison, error) {
	// Stage 1 (Validate).
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(op, err)
	}
	v := newAxisView(m, axis)
	forIdx = orAll(forIdx, v.items())
	onIdx = orAll(onIdx, v.items())
	if err := ValidateIndices(forIdx, v.items()); err != nil {
		return nil, matrixErrorf(op, err)
	}
	if err := ValidateIndices(onIdx, v.items()); err != nil {
		return nil, matrixErrorf(op, err)
	}
	var po pairwiseOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&po)
		}
	}
	across := orAll(po.across, v.others())
	if err := ValidateIndices(across, v.others()); err != nil {
		return nil, matrixErrorf(op, err)
	}

	// Stage 2 (Prepare): one vector per distinct item.
	cache := make(map[int]itemVector, len(forIdx)+len(onIdx))
	for _, sel := range [][]int{forIdx, onIdx} {
		for _, item := range sel {
			if _, ok := cache[item]; ok {
				continue
			}
			iv, err := loadVector(v, item, across)
			if err != nil {
				return nil, matrixErrorf(op, err)
			}
			cache[item] = iv
		}
	}

	// Stage 3 (Execute).
	res := &PairwiseComparison{
		IndicesFor:       append([]int(nil), forIdx...),
		IndicesOn:        append([]int(nil), onIdx...),
		ComparisonValues: make([][]*float64, len(forIdx)),
	}
	xs := make([]float64, 0, len(across))
	ys := make([]float64, 0, len(across))
	for i, a := range forIdx {
		row := make([]*float64, len(onIdx))
		for j, b := range onIdx {
			row[j], xs, ys = pearson(cache[a], cache[b], xs, ys)
		}
		res.ComparisonValues[i] = row
	}

	return res, nil
}
