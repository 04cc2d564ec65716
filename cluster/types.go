package cluster

import (
	"errors"

	"github.com/katalvlaran/featval/ordered"
)

var (
	// ErrNilClusterer is returned when a workflow is given no Clusterer.
	ErrNilClusterer = errors.New("cluster: nil clusterer")

	// ErrEmptyDendrogram is returned when a re-cut is requested for a
	// clustering that carries no dendrogram.
	ErrEmptyDendrogram = errors.New("cluster: empty dendrogram")

	// ErrBadParams indicates clustering parameters out of their domain
	// (e.g. k < 1, minK > maxK).
	ErrBadParams = errors.New("cluster: invalid parameters")
)

// LabelVector is the raw output of a clustering routine: one label per matrix
// row (negative = unassigned) plus optional per-cluster quality arrays
// indexed by rank (label - min label).
type LabelVector struct {
	Labels  []int     `json:"cluster_labels"`
	Meancor []float64 `json:"meancor,omitempty"`
	Msec    []float64 `json:"msecs,omitempty"`
}

// LabeledCluster is one assembled cluster. IDToPos maps row id → row
// position in insertion order. Quality fields are nil when not computed.
type LabeledCluster struct {
	IDToPos *ordered.Map[int] `json:"id_to_pos"`
	Meancor *float64          `json:"meancor,omitempty"`
	Msec    *float64          `json:"msec,omitempty"`
}

// Size returns the number of rows in the cluster.
func (c LabeledCluster) Size() int { return c.IDToPos.Len() }

// FeatureClusters is the persisted result of a clustering run.
// OriginalData is the reference of the clustered matrix.
type FeatureClusters struct {
	OriginalData      string           `json:"original_data"`
	FeatureClusters   []LabeledCluster `json:"feature_clusters"`
	FeatureDendrogram string           `json:"feature_dendrogram,omitempty"`
}

// EstimateKResult carries the best K and the quality of every tried K.
type EstimateKResult struct {
	BestK                int         `json:"best_k"`
	EstimateClusterSizes []KEstimate `json:"estimate_cluster_sizes"`
}

// KEstimate is the quality score of one candidate K.
type KEstimate struct {
	K       int     `json:"k"`
	Quality float64 `json:"quality"`
}

// KMeansParams configures a K-means run. Zero values select the
// collaborator's defaults, except K which is required.
type KMeansParams struct {
	K          int    `json:"k"`
	NStart     int    `json:"n_start,omitempty"`
	MaxIter    int    `json:"max_iter,omitempty"`
	RandomSeed *int64 `json:"random_seed,omitempty"`
	Algorithm  string `json:"algorithm,omitempty"`
}

// HierarchicalParams configures a hierarchical clustering run.
type HierarchicalParams struct {
	DistanceMetric  string  `json:"distance_metric,omitempty"`
	LinkageCriteria string  `json:"linkage_criteria,omitempty"`
	HeightCutoff    float64 `json:"feature_height_cutoff,omitempty"`
	MaxItems        int     `json:"max_items,omitempty"`
	Algorithm       string  `json:"algorithm,omitempty"`
}

// EstimateKParams configures a K estimation sweep over [MinK, MaxK].
type EstimateKParams struct {
	MinK       int    `json:"min_k,omitempty"`
	MaxK       int    `json:"max_k,omitempty"`
	MaxIter    int    `json:"max_iter,omitempty"`
	RandomSeed *int64 `json:"random_seed,omitempty"`
	NeighbSize int    `json:"neighb_size,omitempty"`
	MaxItems   int    `json:"max_items,omitempty"`
}

// EstimateKNewParams configures the criterion-based K estimation over
// [MinK, MaxK]. Criterion is one of "asw", "multiasw" or "ch"; UsePAM selects
// partitioning around medoids instead of K-means, Alpha is the significance
// level of the single-cluster test and Diss marks the matrix values as a
// dissimilarity matrix. Nil and zero values select the collaborator's defaults.
type EstimateKNewParams struct {
	MinK       int      `json:"min_k,omitempty"`
	MaxK       int      `json:"max_k,omitempty"`
	Criterion  string   `json:"criterion,omitempty"`
	UsePAM     *bool    `json:"usepam,omitempty"`
	Alpha      *float64 `json:"alpha,omitempty"`
	Diss       *bool    `json:"diss,omitempty"`
	RandomSeed *int64   `json:"random_seed,omitempty"`
}

// Validate reports ErrBadParams for a non-positive K.
func (p KMeansParams) Validate() error {
	if p.K < 1 {
		return ErrBadParams
	}

	return nil
}

// Validate reports ErrBadParams when a bound is negative or MinK > MaxK.
// Zero bounds are left to the collaborator.
func (p EstimateKParams) Validate() error {
	if p.MinK < 0 || p.MaxK < 0 || (p.MaxK > 0 && p.MinK > p.MaxK) {
		return ErrBadParams
	}

	return nil
}

// Validate reports ErrBadParams for inconsistent bounds, an unknown criterion
// or an alpha outside (0, 1).
func (p EstimateKNewParams) Validate() error {
	if p.MinK < 0 || p.MaxK < 0 || (p.MaxK > 0 && p.MinK > p.MaxK) {
		return ErrBadParams
	}
	switch p.Criterion {
	case "", "asw", "multiasw", "ch":
	default:
		return ErrBadParams
	}
	if p.Alpha != nil && (*p.Alpha <= 0 || *p.Alpha >= 1) {
		return ErrBadParams
	}

	return nil
}
