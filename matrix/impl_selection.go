// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Turn a caller's selection (explicit indices, explicit ids or nothing)
//     into concrete positions on one matrix axis.
//
// Exposed API (via api.go):
//   - ResolveIndices(indices, ids, axisIDs) -> ([]int, error)
//   - RowIndices / ColumnIndices            -> axis-bound wrappers
//
// Determinism & Performance:
//   - Identity and id lookups are O(n) with a single map allocation.
//   - The id lookup is built only when ids are actually used.

package matrix

import "fmt"

const (
	opResolveIndices = "ResolveIndices"
	opRowIndices     = "RowIndices"
	opColumnIndices  = "ColumnIndices"
)

// resolveIndices applies the three-way selection rule.
// Implementation:
//   - Stage 1: non-empty indices win and are returned verbatim.
//   - Stage 2: otherwise non-empty ids are looked up on axisIDs.
//   - Stage 3: otherwise every position 0..len(axisIDs)-1 is returned.
//
// Behavior highlights:
//   - Indices are NOT bounds-checked here; kernels report ErrOutOfRange when
//     they use them.
//   - With duplicate axis ids the first occurrence wins; duplicates never fail.
//   - The returned slice never aliases the caller's indices.
//
// Errors:
//   - ErrUnknownIdentifier for the first id absent from axisIDs.
//
// Complexity:
//   - Time O(len(axisIDs) + len(ids)), Space O(len(axisIDs)).
func resolveIndices(indices []int, ids []string, axisIDs []string) ([]int, error) {
	// Stage 1: explicit indices take precedence over everything else.
	if len(indices) > 0 {
		return append([]int(nil), indices...), nil
	}

	// Stage 2: ids resolve through a first-occurrence-wins lookup.
	if len(ids) > 0 {
		pos := firstOccurrence(axisIDs)
		out := make([]int, len(ids))
		for k, id := range ids {
			p, ok := pos[id]
			if !ok {
				return nil, fmt.Errorf("%q: %w", id, ErrUnknownIdentifier)
			}
			out[k] = p
		}

		return out, nil
	}

	// Stage 3: no selection means the whole axis in identity order.
	return identityIndices(len(axisIDs)), nil
}

// firstOccurrence maps each id to the position of its first appearance.
func firstOccurrence(ids []string) map[string]int {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, seen := pos[id]; !seen {
			pos[id] = i
		}
	}

	return pos
}

// identityIndices returns 0..n-1.
func identityIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}

// orAll returns idx when non-empty and the identity over n otherwise.
// Kernels use it for their "default = whole axis" parameters.
func orAll(idx []int, n int) []int {
	if len(idx) > 0 {
		return idx
	}

	return identityIndices(n)
}
