// SPDX-License-Identifier: MIT

// Package matrix: domain types shared by the kernels.
// This file intentionally contains ONLY domain-facing types (the read-only
// Matrix interface, statistic records and their parameters). Errors and
// options live in dedicated files (errors.go, options.go).
package matrix

// Matrix is the read-only view every statistic kernel consumes.
// *FeatureMatrix is the canonical implementation; kernels use its flat
// buffers directly and fall back to At for any other implementation.
//
// Complexity notes: all methods are expected O(1).
type Matrix interface {
	// Rows returns the number of rows (features).
	Rows() int

	// Cols returns the number of columns (conditions).
	Cols() int

	// RowIDs returns the ordered row identifiers. Callers must not mutate it.
	RowIDs() []string

	// ColIDs returns the ordered column identifiers. Callers must not mutate it.
	ColIDs() []string

	// At retrieves the cell at (row, col). ok is false for a missing cell.
	// Returns ErrOutOfRange if the position is invalid.
	At(row, col int) (v float64, ok bool, err error)
}

// Axis names one of the two matrix dimensions.
type Axis int

const (
	// RowAxis addresses features.
	RowAxis Axis = iota
	// ColumnAxis addresses conditions.
	ColumnAxis
)

// String implements fmt.Stringer.
func (a Axis) String() string {
	if a == ColumnAxis {
		return "column"
	}

	return "row"
}

// ItemStat is the aggregate of one row or one column over a selection of the
// opposite axis. Nil pointers mean "no data": Avg/Min/Max are nil when no
// selected cell is present, Std is nil when fewer than two are present.
type ItemStat struct {
	Index         int      `json:"index_for"`
	ID            string   `json:"id"`
	Avg           *float64 `json:"avg"`
	Min           *float64 `json:"min"`
	Max           *float64 `json:"max"`
	Std           *float64 `json:"std"`
	MissingValues int      `json:"missing_values"`
}

// SetStatParams selects a set of items ("for") and the opposite-axis
// positions ("on") a set statistic is computed over, plus which blocks to fill.
// Empty IndicesFor / IndicesOn mean every position.
type SetStatParams struct {
	IndicesFor      []int `json:"item_indices_for"`
	IndicesOn       []int `json:"item_indices_on"`
	FlAvgs          bool  `json:"fl_avgs"`
	FlMins          bool  `json:"fl_mins"`
	FlMaxs          bool  `json:"fl_maxs"`
	FlStds          bool  `json:"fl_stds"`
	FlMissingValues bool  `json:"fl_missing_values"`
}

// AllSetStats returns params with every block switched on.
func AllSetStats(forIdx, onIdx []int) SetStatParams {
	return SetStatParams{
		IndicesFor:      forIdx,
		IndicesOn:       onIdx,
		FlAvgs:          true,
		FlMins:          true,
		FlMaxs:          true,
		FlStds:          true,
		FlMissingValues: true,
	}
}

// ItemSetStat summarises a set of items. For every "on" position k the
// blocks hold the statistic of the selected items at that position
// (e.g. for rows, Avgs[k] is the mean over the selected rows of column
// IndicesOn[k]). Blocks whose flag was off are nil.
type ItemSetStat struct {
	IndicesFor    []int      `json:"indices_for"`
	IndicesOn     []int      `json:"indices_on"`
	Size          int        `json:"size"`
	Avgs          []*float64 `json:"avgs,omitempty"`
	Mins          []*float64 `json:"mins,omitempty"`
	Maxs          []*float64 `json:"maxs,omitempty"`
	Stds          []*float64 `json:"stds,omitempty"`
	MissingValues []int      `json:"missing_values,omitempty"`
}

// PairwiseComparison holds Pearson correlations between two item sets of the
// same axis. ComparisonValues[i][j] compares IndicesFor[i] with IndicesOn[j];
// a nil cell means fewer than two co-present values or a constant vector.
type PairwiseComparison struct {
	IndicesFor       []int        `json:"indices_for"`
	IndicesOn        []int        `json:"indices_on"`
	ComparisonValues [][]*float64 `json:"comparison_values"`
}
