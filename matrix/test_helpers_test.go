// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic fixtures (the seven-feature sample matrix)
//     and utilities shared by the kernel tests.
//   • Offer a hide wrapper to force the At fallback paths.

package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/featval/matrix"
	"github.com/stretchr/testify/require"
)

const epsTight = 1e-9

// hide WRAPS any Matrix to hide its concrete type from type assertions, so
// kernels under test take the At fallback path instead of the flat buffers.
type hide struct{ matrix.Matrix }

// f returns a pointer to v (cell literal helper).
func f(v float64) *float64 { return &v }

// sampleRowIDs / sampleColIDs label the sample matrix.
var (
	sampleRowIDs = []string{"g1", "g2", "g3", "g4", "g5", "g6", "g7"}
	sampleColIDs = []string{"c1", "c2", "c3"}
)

// sampleValues RETURNS a fresh copy of the sample grid: three tight groups
// (g1,g2), (g3,g4), (g5,g6,g7).
func sampleValues() [][]*float64 {
	return [][]*float64{
		{f(13.0), f(2.0), f(3.0)},
		{f(10.9), f(1.95), f(2.9)},
		{f(2.45), f(13.4), f(4.4)},
		{f(2.5), f(11.5), f(3.55)},
		{f(-1.05), f(-2.0), f(-14.0)},
		{f(-1.2), f(-2.25), f(-13.2)},
		{f(-1.1), f(-2.1), f(-15.15)},
	}
}

// SampleMatrix ALLOCATES the 7×3 sample matrix or fails the test.
func SampleMatrix(t *testing.T) *matrix.FeatureMatrix {
	t.Helper()
	m, err := matrix.NewFeatureMatrix(sampleRowIDs, sampleColIDs, sampleValues())
	require.NoError(t, err)

	return m
}

// MustMatrix builds a FeatureMatrix from ids and a grid or fails the test.
func MustMatrix(t *testing.T, rowIDs, colIDs []string, values [][]*float64) *matrix.FeatureMatrix {
	t.Helper()
	m, err := matrix.NewFeatureMatrix(rowIDs, colIDs, values)
	require.NoError(t, err)

	return m
}

// Transpose RETURNS mᵀ built cell by cell (independent of the kernels).
func Transpose(t *testing.T, m *matrix.FeatureMatrix) *matrix.FeatureMatrix {
	t.Helper()
	vals := m.Values()
	out := make([][]*float64, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		out[j] = make([]*float64, m.Rows())
		for i := 0; i < m.Rows(); i++ {
			out[j][i] = vals[i][j]
		}
	}

	return MustMatrix(t, m.ColIDs(), m.RowIDs(), out)
}

// ptrClose asserts that a nullable statistic equals want within tol.
func ptrClose(t *testing.T, got *float64, want, tol float64, msg string) {
	t.Helper()
	require.NotNil(t, got, msg)
	require.InDelta(t, want, *got, tol, msg)
}

// statsClose asserts that two ItemStat slices agree field by field.
func statsClose(t *testing.T, got, want []matrix.ItemStat) {
	t.Helper()
	require.Len(t, got, len(want))
	for k := range want {
		require.Equal(t, want[k].Index, got[k].Index, "index %d", k)
		require.Equal(t, want[k].ID, got[k].ID, "id %d", k)
		require.Equal(t, want[k].MissingValues, got[k].MissingValues, "missing %d", k)
		optClose(t, got[k].Avg, want[k].Avg, "avg")
		optClose(t, got[k].Min, want[k].Min, "min")
		optClose(t, got[k].Max, want[k].Max, "max")
		optClose(t, got[k].Std, want[k].Std, "std")
	}
}

// optClose compares two nullable values: both nil, or both set and close.
func optClose(t *testing.T, got, want *float64, msg string) {
	t.Helper()
	if want == nil {
		require.Nil(t, got, msg)
		return
	}
	require.NotNil(t, got, msg)
	if math.IsNaN(*want) {
		require.True(t, math.IsNaN(*got), msg)
		return
	}
	require.InDelta(t, *want, *got, epsTight, msg)
}
