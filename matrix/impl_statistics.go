// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Compute per-item aggregates (avg, min, max, sample std, missing count)
//     for rows or columns over a selection of the opposite axis.
//   - Compute set aggregates: for a set of items, the statistic across the
//     set at every selected opposite-axis position.
//
// Exposed API (via api.go):
//   - RowStats(M, for, on, onIsRestrictive)    -> []ItemStat
//   - ColumnStats(M, for, on, onIsRestrictive) -> []ItemStat
//   - RowSetStat(M, params)                    -> ItemSetStat
//   - ColumnSetStat(M, params)                 -> ItemSetStat
//
// Determinism & Performance:
//   - Fixed for→on traversal; results follow the order of the "for" selection.
//   - *FeatureMatrix fast path reads data/present directly; other Matrix
//     implementations go through At with full error propagation.
//   - Column kernels are the row kernels run over a transposed axisView, so the
//     two can never drift apart.
//
// Numeric policy:
//   - Missing cells are skipped for every aggregate and counted in MissingValues.
//   - Std is the SAMPLE standard deviation (n-1 denominator) via gonum/stat.
//   - n == 0 → Avg/Min/Max/Std nil; n == 1 → Std nil.
//
// AI-Hints:
//   - Pass onIsRestrictive=false to aggregate the full item regardless of "on".

package matrix

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	opRowStats      = "RowStats"
	opColumnStats   = "ColumnStats"
	opRowSetStat    = "RowSetStat"
	opColumnSetStat = "ColumnSetStat"
)

// axisView presents a matrix as items × others, where items lie on the
// requested axis. For ColumnAxis it is the transpose of the row view.
type axisView struct {
	m    Matrix
	fm   *FeatureMatrix // non-nil enables the flat-buffer fast path
	axis Axis
}

// newAxisView binds m to an axis, detecting the *FeatureMatrix fast path.
func newAxisView(m Matrix, axis Axis) axisView {
	fm, _ := m.(*FeatureMatrix)

	return axisView{m: m, fm: fm, axis: axis}
}

// items is the length of the item axis.
func (a axisView) items() int {
	if a.axis == ColumnAxis {
		return a.m.Cols()
	}

	return a.m.Rows()
}

// others is the length of the opposite axis.
func (a axisView) others() int {
	if a.axis == ColumnAxis {
		return a.m.Rows()
	}

	return a.m.Cols()
}

// ids returns the identifiers of the item axis.
func (a axisView) ids() []string {
	if a.axis == ColumnAxis {
		return a.m.ColIDs()
	}

	return a.m.RowIDs()
}

// cell reads (item, other) in axis coordinates. Callers validate ranges first,
// so the fast path indexes the buffers directly.
func (a axisView) cell(item, other int) (float64, bool, error) {
	row, col := item, other
	if a.axis == ColumnAxis {
		row, col = other, item
	}
	if a.fm != nil {
		off := row*a.fm.c + col

		return a.fm.data[off], a.fm.present[off], nil
	}

	return a.m.At(row, col)
}

// summary holds nullable aggregates of one value sample.
type summary struct {
	avg, min, max, std *float64
}

// summarize computes the aggregates of the present values in vals.
// Implementation:
//   - Stage 1: empty sample → all nil.
//   - Stage 2: mean/min/max via gonum (stat.Mean, floats.Min, floats.Max).
//   - Stage 3: sample std via stat.StdDev when at least two values exist.
//
// Complexity:
//   - Time O(n), Space O(1).
func summarize(vals []float64) summary {
	// Stage 1: no data is reported in-band as nil.
	if len(vals) == 0 {
		return summary{}
	}

	// Stage 2: location and range.
	avg := stat.Mean(vals, nil)
	lo := floats.Min(vals)
	hi := floats.Max(vals)
	s := summary{avg: &avg, min: &lo, max: &hi}

	// Stage 3: spread needs two points for the n-1 denominator.
	if len(vals) >= 2 {
		sd := stat.StdDev(vals, nil)
		s.std = &sd
	}

	return s
}

// itemStats computes one ItemStat per "for" item.
// Implementation:
//   - Stage 1: validate M and resolve defaults (for = all items; on = all
//     others, and forced to all when onIsRestrictive is false).
//   - Stage 2: range-check both selections.
//   - Stage 3: per item, gather present values over "on", count missing,
//     summarize.
//
// Behavior highlights:
//   - Output order equals the order of forIdx; duplicates are repeated.
//   - The value buffer is reused across items (one allocation).
//
// Errors:
//   - ErrNilMatrix, ErrOutOfRange, or wrapped At errors on the fallback path.
//
// Complexity:
//   - Time O(|for|·|on|), Space O(|on|).
func itemStats(op string, m Matrix, axis Axis, forIdx, onIdx []int, onIsRestrictive bool) ([]ItemStat, error) {
	// Stage 1 (Validate): matrix must exist.
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(op, err)
	}
	v := newAxisView(m, axis)
	nItems, nOthers := v.items(), v.others()

	// Stage 1 (Prepare): resolve defaults; the flag decides whether "on" counts at all.
	forIdx = orAll(forIdx, nItems)
	if onIsRestrictive {
		onIdx = orAll(onIdx, nOthers)
	} else {
		onIdx = identityIndices(nOthers)
	}

	// Stage 2 (Validate): both selections must address real positions.
	if err := ValidateIndices(forIdx, nItems); err != nil {
		return nil, matrixErrorf(op, err)
	}
	if err := ValidateIndices(onIdx, nOthers); err != nil {
		return nil, matrixErrorf(op, err)
	}

	// Stage 3 (Execute): one pass over "on" per item.
	ids := v.ids()
	out := make([]ItemStat, len(forIdx))
	vals := make([]float64, 0, len(onIdx))
	for k, item := range forIdx {
		vals = vals[:0]
		missing := 0
		for _, other := range onIdx {
			x, ok, err := v.cell(item, other)
			if err != nil {
				return nil, matrixErrorf(op, err)
			}
			if !ok {
				missing++
				continue
			}
			vals = append(vals, x)
		}
		s := summarize(vals)
		out[k] = ItemStat{
			Index:         item,
			ID:            ids[item],
			Avg:           s.avg,
			Min:           s.min,
			Max:           s.max,
			Std:           s.std,
			MissingValues: missing,
		}
	}

	return out, nil
}

// setStat aggregates a set of items at every selected opposite-axis position.
// Implementation:
//   - Stage 1: validate M, default and range-check both selections.
//   - Stage 2: allocate only the blocks whose flag is set.
//   - Stage 3: for each "on" position gather the set's present values and
//     summarize them.
//
// Errors:
//   - ErrNilMatrix, ErrOutOfRange, or wrapped At errors on the fallback path.
//
// Complexity:
//   - Time O(|for|·|on|), Space O(|on| + |for|).
func setStat(op string, m Matrix, axis Axis, p SetStatParams) (ItemSetStat, error) {
	// Stage 1 (Validate).
	if err := ValidateNotNil(m); err != nil {
		return ItemSetStat{}, matrixErrorf(op, err)
	}
	v := newAxisView(m, axis)
	forIdx := orAll(p.IndicesFor, v.items())
	onIdx := orAll(p.IndicesOn, v.others())
	if err := ValidateIndices(forIdx, v.items()); err != nil {
		return ItemSetStat{}, matrixErrorf(op, err)
	}
	if err := ValidateIndices(onIdx, v.others()); err != nil {
		return ItemSetStat{}, matrixErrorf(op, err)
	}

	// Stage 2 (Prepare): flagged blocks only.
	res := ItemSetStat{
		IndicesFor: append([]int(nil), forIdx...),
		IndicesOn:  append([]int(nil), onIdx...),
		Size:       len(forIdx),
	}
	n := len(onIdx)
	if p.FlAvgs {
		res.Avgs = make([]*float64, n)
	}
	if p.FlMins {
		res.Mins = make([]*float64, n)
	}
	if p.FlMaxs {
		res.Maxs = make([]*float64, n)
	}
	if p.FlStds {
		res.Stds = make([]*float64, n)
	}
	if p.FlMissingValues {
		res.MissingValues = make([]int, n)
	}

	// Stage 3 (Execute): column-of-the-set at each "on" position.
	vals := make([]float64, 0, len(forIdx))
	for k, other := range onIdx {
		vals = vals[:0]
		missing := 0
		for _, item := range forIdx {
			x, ok, err := v.cell(item, other)
			if err != nil {
				return ItemSetStat{}, matrixErrorf(op, err)
			}
			if !ok {
				missing++
				continue
			}
			vals = append(vals, x)
		}
		s := summarize(vals)
		if res.Avgs != nil {
			res.Avgs[k] = s.avg
		}
		if res.Mins != nil {
			res.Mins[k] = s.min
		}
		if res.Maxs != nil {
			res.Maxs[k] = s.max
		}
		if res.Stds != nil {
			res.Stds[k] = s.std
		}
		if res.MissingValues != nil {
			res.MissingValues[k] = missing
		}
	}

	return res, nil
}
