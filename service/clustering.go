package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/featval/cluster"
	"github.com/katalvlaran/featval/store"
)

// EstimateK scores candidate cluster counts for a matrix and saves the
// EstimateKResult.
func (s *Service) EstimateK(ctx context.Context, p EstimateKParams) (info store.ObjectInfo, err error) {
	ctx, span := startSpan(ctx, "EstimateK", p.InputMatrix)
	defer func() { endSpan(span, err) }()

	if err = validateParams(p); err != nil {
		return store.ObjectInfo{}, err
	}
	if err = p.EstimateKParams.Validate(); err != nil {
		return store.ObjectInfo{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if err = s.requireClusterer(); err != nil {
		return store.ObjectInfo{}, err
	}
	em, _, err := s.loadMatrix(ctx, p.InputMatrix)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	dir, cleanup, err := s.workDir("estimate-k")
	if err != nil {
		return store.ObjectInfo{}, err
	}
	defer cleanup()

	res, err := s.clusterer.EstimateK(ctx, em.Data, p.EstimateKParams, dir)
	if err != nil {
		return store.ObjectInfo{}, fmt.Errorf("estimate k: %w", err)
	}
	s.logger.Info("estimated k",
		slog.String("input", p.InputMatrix), slog.Int("best_k", res.BestK),
		slog.Int("candidates", len(res.EstimateClusterSizes)))

	return s.store.Save(ctx, p.OutWorkspace, p.OutEstimateResult, TypeEstimateKResult, res,
		s.provenance("estimate_k", "K estimation for K-Means clustering method", p.InputMatrix))
}

// EstimateKNew is EstimateK driven by a clustering criterion (silhouette
// width or Calinski-Harabasz) instead of a fixed K-means sweep. The result is
// saved under the same type.
func (s *Service) EstimateKNew(ctx context.Context, p EstimateKNewParams) (info store.ObjectInfo, err error) {
	ctx, span := startSpan(ctx, "EstimateKNew", p.InputMatrix)
	defer func() { endSpan(span, err) }()

	if err = validateParams(p); err != nil {
		return store.ObjectInfo{}, err
	}
	if err = p.EstimateKNewParams.Validate(); err != nil {
		return store.ObjectInfo{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if err = s.requireClusterer(); err != nil {
		return store.ObjectInfo{}, err
	}
	em, _, err := s.loadMatrix(ctx, p.InputMatrix)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	dir, cleanup, err := s.workDir("estimate-k-new")
	if err != nil {
		return store.ObjectInfo{}, err
	}
	defer cleanup()

	res, err := s.clusterer.EstimateKNew(ctx, em.Data, p.EstimateKNewParams, dir)
	if err != nil {
		return store.ObjectInfo{}, fmt.Errorf("estimate k: %w", err)
	}
	s.logger.Info("estimated k",
		slog.String("input", p.InputMatrix), slog.String("criterion", p.Criterion),
		slog.Int("best_k", res.BestK), slog.Int("candidates", len(res.EstimateClusterSizes)))

	return s.store.Save(ctx, p.OutWorkspace, p.OutEstimateResult, TypeEstimateKResult, res,
		s.provenance("estimate_k_new", "K estimation for K-Means clustering method", p.InputMatrix))
}

// ClusterKMeans clusters matrix rows with K-means and saves FeatureClusters.
//
// With AlgorithmScikitLearn the collaborator returns 0-based labels without
// qualities; labels are shifted by one and qualities come from a second
// ClusterQualities call.
func (s *Service) ClusterKMeans(ctx context.Context, p ClusterKMeansParams) (info store.ObjectInfo, err error) {
	ctx, span := startSpan(ctx, "ClusterKMeans", p.InputData)
	defer func() { endSpan(span, err) }()

	if err = validateParams(p); err != nil {
		return store.ObjectInfo{}, err
	}
	if err = p.KMeansParams.Validate(); err != nil {
		return store.ObjectInfo{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if err = s.requireClusterer(); err != nil {
		return store.ObjectInfo{}, err
	}
	em, _, err := s.loadMatrix(ctx, p.InputData)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	dir, cleanup, err := s.workDir("kmeans")
	if err != nil {
		return store.ObjectInfo{}, err
	}
	defer cleanup()

	var lv cluster.LabelVector
	if p.Algorithm == AlgorithmScikitLearn {
		kp := cluster.KMeansParams{K: p.K}
		if lv, err = s.clusterer.KMeans(ctx, em.Data, kp, dir); err != nil {
			return store.ObjectInfo{}, fmt.Errorf("k-means: %w", err)
		}
		shifted := make([]int, len(lv.Labels))
		for i, l := range lv.Labels {
			shifted[i] = l + 1
		}
		if lv, err = s.clusterer.ClusterQualities(ctx, em.Data, shifted, dir); err != nil {
			return store.ObjectInfo{}, fmt.Errorf("cluster qualities: %w", err)
		}
	} else if lv, err = s.clusterer.KMeans(ctx, em.Data, p.KMeansParams, dir); err != nil {
		return store.ObjectInfo{}, fmt.Errorf("k-means: %w", err)
	}

	clusters, err := cluster.Assemble(em.Data.RowIDs(), lv)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	s.logger.Info("k-means clustered",
		slog.String("input", p.InputData), slog.Int("k", p.K), slog.Int("clusters", len(clusters)))

	fc := cluster.FeatureClusters{OriginalData: p.InputData, FeatureClusters: clusters}

	return s.store.Save(ctx, p.OutWorkspace, p.OutClustersetID, TypeFeatureClusters, fc,
		s.provenance("cluster_k_means", "K-Means clustering method", p.InputData))
}

// ClusterHierarchical clusters matrix rows hierarchically and saves
// FeatureClusters with the dendrogram.
func (s *Service) ClusterHierarchical(ctx context.Context, p ClusterHierarchicalParams) (info store.ObjectInfo, err error) {
	ctx, span := startSpan(ctx, "ClusterHierarchical", p.InputData)
	defer func() { endSpan(span, err) }()

	if err = validateParams(p); err != nil {
		return store.ObjectInfo{}, err
	}
	if err = s.requireClusterer(); err != nil {
		return store.ObjectInfo{}, err
	}
	em, _, err := s.loadMatrix(ctx, p.InputData)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	dir, cleanup, err := s.workDir("hierarchical")
	if err != nil {
		return store.ObjectInfo{}, err
	}
	defer cleanup()

	lv, dendrogram, err := s.clusterer.Hierarchical(ctx, em.Data, p.HierarchicalParams, dir)
	if err != nil {
		return store.ObjectInfo{}, fmt.Errorf("hierarchical clustering: %w", err)
	}
	clusters, err := cluster.Assemble(em.Data.RowIDs(), lv)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	s.logger.Info("hierarchically clustered",
		slog.String("input", p.InputData), slog.Int("clusters", len(clusters)))

	fc := cluster.FeatureClusters{
		OriginalData:      p.InputData,
		FeatureClusters:   clusters,
		FeatureDendrogram: dendrogram,
	}

	return s.store.Save(ctx, p.OutWorkspace, p.OutClustersetID, TypeFeatureClusters, fc,
		s.provenance("cluster_hierarchical", "Hierarchical clustering method", p.InputData))
}

// ClustersFromDendrogram loads a stored FeatureClusters object, then the
// matrix it was computed from, re-cuts its dendrogram at the requested height
// and saves the new clustering.
func (s *Service) ClustersFromDendrogram(ctx context.Context, p ClustersFromDendrogramParams) (info store.ObjectInfo, err error) {
	ctx, span := startSpan(ctx, "ClustersFromDendrogram", p.InputData)
	defer func() { endSpan(span, err) }()

	if err = validateParams(p); err != nil {
		return store.ObjectInfo{}, err
	}
	if err = s.requireClusterer(); err != nil {
		return store.ObjectInfo{}, err
	}
	input, _, err := store.Load[cluster.FeatureClusters](ctx, s.store, p.InputData)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	em, _, err := s.loadMatrix(ctx, input.OriginalData)
	if err != nil {
		return store.ObjectInfo{}, fmt.Errorf("original data of %s: %w", p.InputData, err)
	}
	dir, cleanup, err := s.workDir("dendrogram")
	if err != nil {
		return store.ObjectInfo{}, err
	}
	defer cleanup()

	fc, err := cluster.Reassemble(ctx, s.clusterer, em.Data, input.FeatureDendrogram, p.HeightCutoff, dir)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	fc.OriginalData = input.OriginalData
	s.logger.Info("re-cut dendrogram",
		slog.String("input", p.InputData), slog.Float64("height", p.HeightCutoff),
		slog.Int("clusters", len(fc.FeatureClusters)))

	return s.store.Save(ctx, p.OutWorkspace, p.OutClustersetID, TypeFeatureClusters, fc,
		s.provenance("clusters_from_dendrogram", "Clusters from dendrogram", p.InputData))
}
