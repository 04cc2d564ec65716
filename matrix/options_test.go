// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/featval/matrix"
)

// 1) Defaults: NaN is a legal present value and ids are copied.
func TestOptions_Defaults(t *testing.T) {
	t.Parallel()

	require.False(t, matrix.DefaultValidateNaNInf)
	require.True(t, matrix.DefaultCopyIDs)

	m, err := matrix.NewFeatureMatrix([]string{"r"}, []string{"c"}, [][]*float64{{f(math.NaN())}})
	require.NoError(t, err)
	v, ok, err := m.At(0, 0)
	require.NoError(t, err)
	assert.True(t, ok, "NaN is present, not missing")
	assert.True(t, math.IsNaN(v))
}

// 2) Last option wins; nil options are ignored.
func TestOptions_LastWinsAndNilIgnored(t *testing.T) {
	t.Parallel()

	vals := [][]*float64{{f(math.Inf(-1))}}

	_, err := matrix.NewFeatureMatrix([]string{"r"}, []string{"c"}, vals,
		matrix.WithValidateNaNInf(), nil, matrix.WithNoValidateNaNInf())
	require.NoError(t, err)

	_, err = matrix.NewFeatureMatrix([]string{"r"}, []string{"c"}, vals,
		matrix.WithNoValidateNaNInf(), matrix.WithValidateNaNInf())
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

// 3) WithSharedIDs aliases the caller's id slices.
func TestOptions_SharedIDs(t *testing.T) {
	t.Parallel()

	rows := []string{"a", "b"}
	m := matrix.NewMissingMatrix(rows, []string{"x"}, matrix.WithSharedIDs())
	rows[1] = "renamed"
	assert.Equal(t, []string{"a", "renamed"}, m.RowIDs())
}
