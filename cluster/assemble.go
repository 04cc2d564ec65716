package cluster

import (
	"fmt"
	"math"

	"github.com/katalvlaran/featval/matrix"
	"github.com/katalvlaran/featval/ordered"
)

const opAssemble = "cluster.Assemble"

// Assemble groups rowIDs by label.
//
// Implementation:
//   - Stage 1 (Validate): len(lv.Labels) must equal len(rowIDs).
//   - Stage 2 (Group): scan labels in row order, skip negatives, open a new
//     cluster the first time a label is seen and record rowIDs[p] → p.
//   - Stage 3 (Quality): when a quality array is present, cluster of label L
//     takes element L - minLabel; NaN and out-of-range ranks stay nil.
//
// Behavior highlights:
//   - Cluster order is first-seen label order, not label value order.
//   - Empty or all-negative label vectors yield an empty, non-nil slice.
//   - A repeated row id keeps its first position inside a cluster map.
//
// Errors:
//   - matrix.ErrDimensionMismatch if the label count differs from the row count.
//
// Complexity: O(R) time and space for R rows.
func Assemble(rowIDs []string, lv LabelVector) ([]LabeledCluster, error) {
	// Stage 1 (Validate)
	if err := matrix.ValidateSameLength("labels", len(lv.Labels), len(rowIDs)); err != nil {
		return nil, fmt.Errorf("%s: %w", opAssemble, err)
	}

	// Stage 2 (Group)
	clusters := make([]LabeledCluster, 0)
	byLabel := make(map[int]int) // label → position in clusters
	var order []int              // labels in first-seen order
	minLabel := -1
	for p, label := range lv.Labels {
		if label < 0 {
			continue
		}
		if minLabel < 0 || label < minLabel {
			minLabel = label
		}
		ci, ok := byLabel[label]
		if !ok {
			ci = len(clusters)
			byLabel[label] = ci
			order = append(order, label)
			clusters = append(clusters, LabeledCluster{IDToPos: ordered.New[int](0)})
		}
		if !clusters[ci].IDToPos.Has(rowIDs[p]) {
			clusters[ci].IDToPos.Set(rowIDs[p], p)
		}
	}

	// Stage 3 (Quality)
	if lv.Meancor == nil && lv.Msec == nil {
		return clusters, nil
	}
	for ci, label := range order {
		rank := label - minLabel
		clusters[ci].Meancor = qualityAt(lv.Meancor, rank)
		clusters[ci].Msec = qualityAt(lv.Msec, rank)
	}

	return clusters, nil
}

// qualityAt returns q[rank], or nil when it is absent or NaN.
func qualityAt(q []float64, rank int) *float64 {
	if rank < 0 || rank >= len(q) || math.IsNaN(q[rank]) {
		return nil
	}
	v := q[rank]

	return &v
}
