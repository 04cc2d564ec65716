// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Provide a single, canonical source of truth for common validation checks.
//   - Keep kernels/facades minimal by delegating nil/shape/index checks here.
//   - Return sentinel errors tagged with the validator name so call sites can
//     wrap uniformly with their operation tag.
//
// Determinism & Performance:
//   - All checks are pure, deterministic and allocate nothing.
//
// Note:
//   - Each composite validator follows a fixed sequence (NotNil → Shape → Range).

package matrix

import "fmt"

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil, including a typed
// nil *FeatureMatrix stored in the interface.
//
// Returns ErrNilMatrix if m is nil.
// Complexity: O(1).
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if fm, ok := m.(*FeatureMatrix); ok && fm == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateGrid ensures values is exactly len(rowIDs) × len(colIDs).
//
// Returns ErrDimensionMismatch naming the first offending row.
// Complexity: O(r).
func ValidateGrid(rowIDs, colIDs []string, values [][]*float64) error {
	if len(values) != len(rowIDs) {
		return validatorErrorf("ValidateGrid",
			fmt.Errorf("%d value rows for %d row ids: %w", len(values), len(rowIDs), ErrDimensionMismatch))
	}
	c := len(colIDs)
	for i, row := range values {
		if len(row) != c {
			return validatorErrorf("ValidateGrid",
				fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), c, ErrDimensionMismatch))
		}
	}

	return nil
}

// ValidateIndices ensures every index lies in [0, n).
//
// Returns ErrOutOfRange naming the first offending index.
// Complexity: O(len(idx)).
func ValidateIndices(idx []int, n int) error {
	for _, k := range idx {
		if k < 0 || k >= n {
			return validatorErrorf("ValidateIndices",
				fmt.Errorf("index %d not in [0,%d): %w", k, n, ErrOutOfRange))
		}
	}

	return nil
}

// ValidateSameLength ensures two parallel sequences have equal length.
//
// Returns ErrDimensionMismatch otherwise.
// Complexity: O(1).
func ValidateSameLength(what string, got, want int) error {
	if got != want {
		return validatorErrorf("ValidateSameLength",
			fmt.Errorf("%s: got %d, want %d: %w", what, got, want, ErrDimensionMismatch))
	}

	return nil
}
