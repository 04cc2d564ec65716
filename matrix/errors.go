// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// This file defines ONLY package-level sentinel errors used across the matrix
// package. All kernels MUST return these sentinels (optionally wrapped with an
// operation tag) and tests MUST check them via errors.Is. No kernel panics on
// user-triggered error conditions.

package matrix

import (
	"errors"
	"fmt"
)

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for easy grepping across logs.
// Kernels wrap with matrixErrorf(op, ErrX); callers still match with errors.Is.
//
// ERROR PRIORITY (enforced in tests):
// nil matrix -> dimension mismatch -> unknown identifier -> index range.

var (
	// ErrNilMatrix indicates that a nil matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrDimensionMismatch indicates that a values grid does not match
	// len(rowIDs) × len(colIDs), or that two parallel inputs differ in length.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrUnknownIdentifier indicates that a requested row or column id is not
	// present on the matrix axis it was resolved against.
	ErrUnknownIdentifier = errors.New("matrix: unknown identifier")

	// ErrOutOfRange indicates that a row or column index is outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrUnsupportedOperation marks a request for a transform the engine does
	// not implement (e.g. an unknown correction type).
	ErrUnsupportedOperation = errors.New("matrix: unsupported operation")

	// ErrNaNInf signals a NaN or ±Inf cell value under WithValidateNaNInf.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")
)

// matrixErrorf wraps an underlying error with the given operation tag.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
