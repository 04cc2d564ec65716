package cluster

import (
	"context"
	"sync"

	"github.com/katalvlaran/featval/matrix"
)

// Clusterer is the external clustering collaborator. Implementations are
// opaque numeric black boxes: they receive the matrix values and return label
// vectors, dendrogram strings and quality scores.
//
// workDir is a per-call scratch directory owned by the caller; two concurrent
// calls must never share one. Implementations may ignore it.
type Clusterer interface {
	// KMeans partitions the rows into p.K clusters.
	KMeans(ctx context.Context, m *matrix.FeatureMatrix, p KMeansParams, workDir string) (LabelVector, error)

	// Hierarchical clusters the rows and returns the labels obtained by cutting
	// the tree at p.HeightCutoff together with the serialized tree.
	Hierarchical(ctx context.Context, m *matrix.FeatureMatrix, p HierarchicalParams, workDir string) (LabelVector, string, error)

	// CutDendrogram re-cuts a stored dendrogram at height and returns the new
	// labels plus the (possibly re-derived) dendrogram.
	CutDendrogram(ctx context.Context, m *matrix.FeatureMatrix, dendrogram string, height float64, workDir string) (LabelVector, string, error)

	// EstimateK scores candidate cluster counts.
	EstimateK(ctx context.Context, m *matrix.FeatureMatrix, p EstimateKParams, workDir string) (EstimateKResult, error)

	// EstimateKNew scores candidate cluster counts by p.Criterion.
	EstimateKNew(ctx context.Context, m *matrix.FeatureMatrix, p EstimateKNewParams, workDir string) (EstimateKResult, error)

	// ClusterQualities computes meancor/msec for a given labelling.
	ClusterQualities(ctx context.Context, m *matrix.FeatureMatrix, labels []int, workDir string) (LabelVector, error)
}

// StubClusterer is a scripted Clusterer for tests and offline runs.
//
// Unset results fall back to deterministic defaults: KMeans assigns row i to
// label i mod K, Hierarchical and CutDendrogram put every row in label 0 and
// return a flat dendrogram, EstimateK and EstimateKNew pick MinK (or 2) with
// zero quality, ClusterQualities echoes the labels without quality arrays.
// Every call is appended to Calls. Safe for concurrent use.
type StubClusterer struct {
	KMeansResult       *LabelVector
	HierarchicalResult *LabelVector
	CutResult          *LabelVector
	Dendrogram         string
	EstimateResult     *EstimateKResult
	QualityResult      *LabelVector
	Err                error

	mu    sync.Mutex
	Calls []StubCall
}

// StubCall records one StubClusterer invocation.
type StubCall struct {
	Method     string
	Rows       int
	WorkDir    string
	Dendrogram string
	Height     float64
	Labels     []int
}

var _ Clusterer = (*StubClusterer)(nil)

func (s *StubClusterer) record(c StubCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, c)
}

// KMeans implements Clusterer.
func (s *StubClusterer) KMeans(ctx context.Context, m *matrix.FeatureMatrix, p KMeansParams, workDir string) (LabelVector, error) {
	s.record(StubCall{Method: "KMeans", Rows: m.Rows(), WorkDir: workDir})
	if err := s.check(ctx); err != nil {
		return LabelVector{}, err
	}
	if s.KMeansResult != nil {
		return *s.KMeansResult, nil
	}
	if err := p.Validate(); err != nil {
		return LabelVector{}, err
	}
	labels := make([]int, m.Rows())
	for i := range labels {
		labels[i] = i % p.K
	}

	return LabelVector{Labels: labels}, nil
}

// Hierarchical implements Clusterer.
func (s *StubClusterer) Hierarchical(ctx context.Context, m *matrix.FeatureMatrix, p HierarchicalParams, workDir string) (LabelVector, string, error) {
	s.record(StubCall{Method: "Hierarchical", Rows: m.Rows(), WorkDir: workDir, Height: p.HeightCutoff})
	if err := s.check(ctx); err != nil {
		return LabelVector{}, "", err
	}
	if s.HierarchicalResult != nil {
		return *s.HierarchicalResult, s.dendrogram(m), nil
	}

	return LabelVector{Labels: make([]int, m.Rows())}, s.dendrogram(m), nil
}

// CutDendrogram implements Clusterer.
func (s *StubClusterer) CutDendrogram(ctx context.Context, m *matrix.FeatureMatrix, dendrogram string, height float64, workDir string) (LabelVector, string, error) {
	s.record(StubCall{Method: "CutDendrogram", Rows: m.Rows(), WorkDir: workDir, Dendrogram: dendrogram, Height: height})
	if err := s.check(ctx); err != nil {
		return LabelVector{}, "", err
	}
	if s.CutResult != nil {
		return *s.CutResult, dendrogram, nil
	}

	return LabelVector{Labels: make([]int, m.Rows())}, dendrogram, nil
}

// EstimateK implements Clusterer.
func (s *StubClusterer) EstimateK(ctx context.Context, m *matrix.FeatureMatrix, p EstimateKParams, workDir string) (EstimateKResult, error) {
	s.record(StubCall{Method: "EstimateK", Rows: m.Rows(), WorkDir: workDir})
	if err := s.check(ctx); err != nil {
		return EstimateKResult{}, err
	}
	if s.EstimateResult != nil {
		return *s.EstimateResult, nil
	}
	k := p.MinK
	if k < 2 {
		k = 2
	}

	return EstimateKResult{BestK: k, EstimateClusterSizes: []KEstimate{{K: k}}}, nil
}

// EstimateKNew implements Clusterer. It shares EstimateResult and the MinK
// default with EstimateK.
func (s *StubClusterer) EstimateKNew(ctx context.Context, m *matrix.FeatureMatrix, p EstimateKNewParams, workDir string) (EstimateKResult, error) {
	s.record(StubCall{Method: "EstimateKNew", Rows: m.Rows(), WorkDir: workDir})
	if err := s.check(ctx); err != nil {
		return EstimateKResult{}, err
	}
	if s.EstimateResult != nil {
		return *s.EstimateResult, nil
	}
	k := p.MinK
	if k < 2 {
		k = 2
	}

	return EstimateKResult{BestK: k, EstimateClusterSizes: []KEstimate{{K: k}}}, nil
}

// ClusterQualities implements Clusterer.
func (s *StubClusterer) ClusterQualities(ctx context.Context, m *matrix.FeatureMatrix, labels []int, workDir string) (LabelVector, error) {
	s.record(StubCall{Method: "ClusterQualities", Rows: m.Rows(), WorkDir: workDir, Labels: append([]int(nil), labels...)})
	if err := s.check(ctx); err != nil {
		return LabelVector{}, err
	}
	if s.QualityResult != nil {
		return *s.QualityResult, nil
	}

	return LabelVector{Labels: append([]int(nil), labels...)}, nil
}

// CallsTo returns the recorded calls of one method.
func (s *StubClusterer) CallsTo(method string) []StubCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []StubCall
	for _, c := range s.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}

	return out
}

func (s *StubClusterer) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.Err
}

// dendrogram returns the scripted dendrogram, or a flat tree over the row ids.
func (s *StubClusterer) dendrogram(m *matrix.FeatureMatrix) string {
	if s.Dendrogram != "" {
		return s.Dendrogram
	}

	return FlatDendrogram(m.RowIDs())
}
