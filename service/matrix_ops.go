package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/featval/genome"
	"github.com/katalvlaran/featval/matrix"
	"github.com/katalvlaran/featval/store"
)

// CorrectMatrix applies a value correction to a stored matrix and saves the
// corrected copy. The output keeps the input name unless OutMatrixID is set.
func (s *Service) CorrectMatrix(ctx context.Context, p CorrectMatrixParams) (info store.ObjectInfo, err error) {
	ctx, span := startSpan(ctx, "CorrectMatrix", p.InputData)
	defer func() { endSpan(span, err) }()

	if err = validateParams(p); err != nil {
		return store.ObjectInfo{}, err
	}
	em, obj, err := s.loadMatrix(ctx, p.InputData)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	filled, err := matrix.Correct(em.Data, p.TransformType)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	s.logger.Info("corrected matrix",
		slog.String("input", p.InputData), slog.String("transform", p.TransformType),
		slog.Int("filled", filled))

	out := p.OutMatrixID
	if out == "" {
		out = obj.Info.Name
	}

	return s.store.Save(ctx, p.OutWorkspace, out, obj.Info.Type, em,
		s.provenance("correct_matrix", "Correction of matrix values ("+p.TransformType+")", p.InputData))
}

// ReconnectMatrixToGenome maps matrix rows onto the features of a genome and
// saves the matrix with the new mapping and genome reference. It fails with
// ErrLowCoverage when fewer rows map than reconcile.min_coverage demands.
func (s *Service) ReconnectMatrixToGenome(ctx context.Context, p ReconnectMatrixToGenomeParams) (info store.ObjectInfo, err error) {
	ctx, span := startSpan(ctx, "ReconnectMatrixToGenome", p.InputData)
	defer func() { endSpan(span, err) }()

	if err = validateParams(p); err != nil {
		return store.ObjectInfo{}, err
	}
	em, obj, err := s.loadMatrix(ctx, p.InputData)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	if err = s.connectGenome(ctx, em, p.GenomeRef); err != nil {
		return store.ObjectInfo{}, err
	}

	out := p.OutMatrixID
	if out == "" {
		out = obj.Info.Name
	}

	return s.store.Save(ctx, p.OutWorkspace, out, obj.Info.Type, em,
		s.provenance("reconnect_matrix_to_genome", "Reconnection of matrix to genome", p.InputData, p.GenomeRef))
}

// connectGenome reconciles em's rows against the genome at ref and stores the
// mapping in em.
func (s *Service) connectGenome(ctx context.Context, em *ExpressionMatrix, ref string) error {
	g, err := s.genomes.LoadGenome(ctx, ref)
	if err != nil {
		return err
	}
	rowIDs := em.Data.RowIDs()
	mapping := genome.Reconcile(rowIDs, g.Features)
	coverage := genome.Coverage(mapping, rowIDs)
	s.logger.Info("reconciled features",
		slog.String("genome", ref), slog.Int("rows", len(rowIDs)),
		slog.Int("mapped", mapping.Len()), slog.Float64("coverage", coverage))

	if minCov := s.cfg.Reconcile.MinCoverage; minCov > 0 && coverage < minCov {
		return fmt.Errorf("%w: %d of %d rows mapped to %s (%.3f < %.3f)",
			ErrLowCoverage, mapping.Len(), len(rowIDs), ref, coverage, minCov)
	}
	em.GenomeRef = ref
	em.FeatureMapping = mapping

	return nil
}

// BuildFeatureSet collects feature ids from the free-text lists, checks them
// against the genome, merges them into the optional base set and saves the
// result.
func (s *Service) BuildFeatureSet(ctx context.Context, p BuildFeatureSetParams) (info store.ObjectInfo, err error) {
	ctx, span := startSpan(ctx, "BuildFeatureSet", p.Genome)
	defer func() { endSpan(span, err) }()

	if err = validateParams(p); err != nil {
		return store.ObjectInfo{}, err
	}
	g, err := s.genomes.LoadGenome(ctx, p.Genome)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	var base *genome.FeatureSet
	if p.BaseFeatureSet != "" {
		if base, _, err = store.Load[genome.FeatureSet](ctx, s.store, p.BaseFeatureSet); err != nil {
			return store.ObjectInfo{}, err
		}
	}

	ids := genome.ParseFeatureIDs(p.FeatureIDs, p.FeatureIDsCustom)
	fs, err := genome.BuildFeatureSet(g, p.Genome, ids, base, p.Description)
	if err != nil {
		return store.ObjectInfo{}, err
	}
	s.logger.Info("built feature set",
		slog.String("genome", p.Genome), slog.Int("requested", len(ids)),
		slog.Int("elements", fs.Elements.Len()))

	inputs := append(fs.GenomeRefs(), p.BaseFeatureSet)

	return s.store.Save(ctx, p.OutWorkspace, p.OutputFeatureSet, TypeFeatureSet, fs,
		s.provenance("build_feature_set", "Feature set built from genome features", inputs...))
}
