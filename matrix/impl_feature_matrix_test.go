// SPDX-License-Identifier: MIT

package matrix_test

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/katalvlaran/featval/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeatureMatrix_ShapeMismatch(t *testing.T) {
	t.Parallel()

	_, err := matrix.NewFeatureMatrix([]string{"a", "b"}, []string{"x"}, [][]*float64{{f(1)}})
	require.True(t, errors.Is(err, matrix.ErrDimensionMismatch), "rows: %v", err)

	_, err = matrix.NewFeatureMatrix([]string{"a"}, []string{"x", "y"}, [][]*float64{{f(1)}})
	require.True(t, errors.Is(err, matrix.ErrDimensionMismatch), "cols: %v", err)
}

func TestNewFeatureMatrix_EmptyIsLegal(t *testing.T) {
	t.Parallel()

	m, err := matrix.NewFeatureMatrix(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Rows())
	assert.Equal(t, 0, m.Cols())
	assert.Equal(t, 0, m.MissingCount())
}

func TestFeatureMatrix_MissingIsNotZeroOrNaN(t *testing.T) {
	t.Parallel()

	m := MustMatrix(t, []string{"r"}, []string{"a", "b", "c"},
		[][]*float64{{nil, f(0), f(math.NaN())}})

	_, ok, err := m.At(0, 0)
	require.NoError(t, err)
	assert.False(t, ok, "nil cell must be missing")

	v, ok, err := m.At(0, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok, err = m.At(0, 2)
	require.NoError(t, err)
	assert.True(t, ok, "NaN is a present value")
	assert.True(t, math.IsNaN(v))

	assert.Equal(t, 1, m.MissingCount())
}

func TestFeatureMatrix_SetClearAndBounds(t *testing.T) {
	t.Parallel()

	m := matrix.NewMissingMatrix([]string{"r1", "r2"}, []string{"c1"})
	require.Equal(t, 2, m.MissingCount())

	require.NoError(t, m.Set(1, 0, 4.5))
	v, ok, err := m.At(1, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4.5, v)

	require.NoError(t, m.Clear(1, 0))
	_, ok, _ = m.At(1, 0)
	require.False(t, ok)

	_, _, err = m.At(2, 0)
	require.True(t, errors.Is(err, matrix.ErrOutOfRange))
	require.True(t, errors.Is(m.Set(0, -1, 1), matrix.ErrOutOfRange))
	require.True(t, errors.Is(m.Clear(5, 5), matrix.ErrOutOfRange))
}

func TestFeatureMatrix_ValidateNaNInf(t *testing.T) {
	t.Parallel()

	_, err := matrix.NewFeatureMatrix([]string{"r"}, []string{"c"},
		[][]*float64{{f(math.Inf(1))}}, matrix.WithValidateNaNInf())
	require.True(t, errors.Is(err, matrix.ErrNaNInf))

	m := matrix.NewMissingMatrix([]string{"r"}, []string{"c"}, matrix.WithValidateNaNInf())
	require.True(t, errors.Is(m.Set(0, 0, math.NaN()), matrix.ErrNaNInf))
}

func TestFeatureMatrix_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	m := SampleMatrix(t)
	cp := m.Clone()
	require.NoError(t, cp.Clear(0, 0))
	require.NoError(t, cp.Set(1, 1, 99))

	v, ok, _ := m.At(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 13.0, v)
	v, _, _ = m.At(1, 1)
	assert.Equal(t, 1.95, v)
}

func TestFeatureMatrix_IDsAreCopied(t *testing.T) {
	t.Parallel()

	rows := []string{"a", "b"}
	m := MustMatrix(t, rows, []string{"x"}, [][]*float64{{f(1)}, {f(2)}})
	rows[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, m.RowIDs())
}

func TestFeatureMatrix_JSONKeepsNulls(t *testing.T) {
	t.Parallel()

	m := MustMatrix(t, []string{"g1", "g2"}, []string{"c1", "c2"},
		[][]*float64{{f(1.5), nil}, {nil, f(-2)}})

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	require.JSONEq(t, `{"row_ids":["g1","g2"],"col_ids":["c1","c2"],"values":[[1.5,null],[null,-2]]}`, string(raw))

	var back matrix.FeatureMatrix
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, m.Values(), back.Values())
	assert.Equal(t, 2, back.MissingCount())
}

func TestFeatureMatrix_JSONRejectsRaggedGrid(t *testing.T) {
	t.Parallel()

	var m matrix.FeatureMatrix
	err := json.Unmarshal([]byte(`{"row_ids":["a"],"col_ids":["x","y"],"values":[[1]]}`), &m)
	require.True(t, errors.Is(err, matrix.ErrDimensionMismatch))
}

func TestFeatureMatrix_String(t *testing.T) {
	t.Parallel()

	m := MustMatrix(t, []string{"g1"}, []string{"c1", "c2"}, [][]*float64{{f(1.25), nil}})
	s := m.String()
	assert.True(t, strings.HasPrefix(s, "feature_ids\tc1\tc2\n"))
	assert.Contains(t, s, "g1\t1.25\tNA\n")
}
