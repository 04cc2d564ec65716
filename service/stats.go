package service

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/featval/genome"
	"github.com/katalvlaran/featval/matrix"
	"github.com/katalvlaran/featval/store"
)

// maxParallelLoads bounds concurrent store reads of a set-statistics batch.
const maxParallelLoads = 4

// GetMatrixDescriptor summarises a stored matrix.
func (s *Service) GetMatrixDescriptor(ctx context.Context, ref string) (d MatrixDescriptor, err error) {
	ctx, span := startSpan(ctx, "GetMatrixDescriptor", ref)
	defer func() { endSpan(span, err) }()

	em, obj, err := s.loadMatrix(ctx, ref)
	if err != nil {
		return MatrixDescriptor{}, err
	}
	var g *genome.Genome
	if em.GenomeRef != "" {
		if g, err = s.genomes.LoadGenome(ctx, em.GenomeRef); err != nil {
			return MatrixDescriptor{}, err
		}
	}

	return describe(em, obj, g), nil
}

// GetMatrixStat reports the descriptor of a matrix, a descriptor for every
// row and column, and per-item statistics over the whole opposite axis.
func (s *Service) GetMatrixStat(ctx context.Context, ref string) (ms MatrixStat, err error) {
	ctx, span := startSpan(ctx, "GetMatrixStat", ref)
	defer func() { endSpan(span, err) }()

	em, obj, g, err := s.loadWithGenome(ctx, ref)
	if err != nil {
		return MatrixStat{}, err
	}
	rowStats, err := matrix.RowStats(em.Data, nil, nil, false)
	if err != nil {
		return MatrixStat{}, err
	}
	colStats, err := matrix.ColumnStats(em.Data, nil, nil, false)
	if err != nil {
		return MatrixStat{}, err
	}

	return MatrixStat{
		MtxDescriptor:     describe(em, obj, g),
		RowDescriptors:    rowDescriptors(em, g, nil),
		ColumnDescriptors: columnDescriptors(em, nil),
		RowStats:          rowStats,
		ColumnStats:       colStats,
	}, nil
}

// GetSubmatrixStat reports on a row/column selection of a matrix.
//
// Stage 1 (Validate): resolve the row and column selections.
// Stage 2 (Prepare): descriptors for the selected items.
// Stage 3 (Execute): every block whose flag is set:
//   - RowSetStats / ColumnSetStat: the selected rows (columns) over the
//     selected columns (rows);
//   - MtxRowSetStat / MtxColumnSetStat: every row (column) over the
//     selected columns (rows), i.e. the background for the selection;
//   - RowPairwiseCorrelation: selected rows against each other over every
//     column;
//   - Values: the selected block.
func (s *Service) GetSubmatrixStat(ctx context.Context, p GetSubmatrixStatParams) (ss SubmatrixStat, err error) {
	ctx, span := startSpan(ctx, "GetSubmatrixStat", p.InputData)
	defer func() { endSpan(span, err) }()

	if err = validateParams(p); err != nil {
		return SubmatrixStat{}, err
	}
	em, obj, g, err := s.loadWithGenome(ctx, p.InputData)
	if err != nil {
		return SubmatrixStat{}, err
	}
	m := em.Data

	// Stage 1
	rowIdx, err := matrix.RowIndices(m, p.RowIndices, p.RowIDs)
	if err != nil {
		return SubmatrixStat{}, err
	}
	colIdx, err := matrix.ColumnIndices(m, p.ColumnIndices, p.ColumnIDs)
	if err != nil {
		return SubmatrixStat{}, err
	}
	if err = matrix.ValidateIndices(rowIdx, m.Rows()); err != nil {
		return SubmatrixStat{}, err
	}
	if err = matrix.ValidateIndices(colIdx, m.Cols()); err != nil {
		return SubmatrixStat{}, err
	}

	// Stage 2
	ss = SubmatrixStat{
		MtxDescriptor:     describe(em, obj, g),
		RowDescriptors:    rowDescriptors(em, g, rowIdx),
		ColumnDescriptors: columnDescriptors(em, colIdx),
	}

	// Stage 3
	if p.FlRowSetStats {
		st, err := matrix.RowSetStat(m, matrix.AllSetStats(rowIdx, colIdx))
		if err != nil {
			return SubmatrixStat{}, err
		}
		ss.RowSetStats = &st
	}
	if p.FlColumnSetStat {
		st, err := matrix.ColumnSetStat(m, matrix.AllSetStats(colIdx, rowIdx))
		if err != nil {
			return SubmatrixStat{}, err
		}
		ss.ColumnSetStat = &st
	}
	if p.FlMtxRowSetStat {
		st, err := matrix.RowSetStat(m, matrix.AllSetStats(nil, colIdx))
		if err != nil {
			return SubmatrixStat{}, err
		}
		ss.MtxRowSetStat = &st
	}
	if p.FlMtxColumnSetStat {
		st, err := matrix.ColumnSetStat(m, matrix.AllSetStats(nil, rowIdx))
		if err != nil {
			return SubmatrixStat{}, err
		}
		ss.MtxColumnSetStat = &st
	}
	if p.FlRowPairwiseCorrelation {
		if ss.RowPairwiseCorrelation, err = matrix.RowPairwiseComparison(m, rowIdx, rowIdx); err != nil {
			return SubmatrixStat{}, err
		}
	}
	if p.FlValues {
		sub, err := matrix.Submatrix(m, rowIdx, colIdx)
		if err != nil {
			return SubmatrixStat{}, err
		}
		ss.Values = sub.Values()
	}
	s.logger.Debug("submatrix stat",
		slog.String("input", p.InputData), slog.Int("rows", len(rowIdx)), slog.Int("columns", len(colIdx)))

	return ss, nil
}

// GetMatrixRowsStat returns per-row statistics. IndicesOn restricts the
// columns only when FlIndicesOn is set.
func (s *Service) GetMatrixRowsStat(ctx context.Context, p GetMatrixItemsStatParams) (out []matrix.ItemStat, err error) {
	ctx, span := startSpan(ctx, "GetMatrixRowsStat", p.InputData)
	defer func() { endSpan(span, err) }()

	return s.itemsStat(ctx, p, matrix.RowStats)
}

// GetMatrixColumnsStat returns per-column statistics. IndicesOn restricts
// the rows only when FlIndicesOn is set.
func (s *Service) GetMatrixColumnsStat(ctx context.Context, p GetMatrixItemsStatParams) (out []matrix.ItemStat, err error) {
	ctx, span := startSpan(ctx, "GetMatrixColumnsStat", p.InputData)
	defer func() { endSpan(span, err) }()

	return s.itemsStat(ctx, p, matrix.ColumnStats)
}

type itemsStatFunc func(m matrix.Matrix, forIdx, onIdx []int, onIsRestrictive bool) ([]matrix.ItemStat, error)

func (s *Service) itemsStat(ctx context.Context, p GetMatrixItemsStatParams, fn itemsStatFunc) ([]matrix.ItemStat, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}
	em, _, err := s.loadMatrix(ctx, p.InputData)
	if err != nil {
		return nil, err
	}

	return fn(em.Data, p.IndicesFor, p.IndicesOn, p.FlIndicesOn)
}

// GetMatrixRowSetsStat answers a batch of row set-statistic requests. Every
// distinct matrix is loaded once; results follow the request order.
func (s *Service) GetMatrixRowSetsStat(ctx context.Context, reqs []GetMatrixSetStatParams) (out []matrix.ItemSetStat, err error) {
	ctx, span := startSpan(ctx, "GetMatrixRowSetsStat", firstInput(reqs))
	defer func() { endSpan(span, err) }()

	return s.setsStat(ctx, reqs, matrix.RowSetStat)
}

// GetMatrixColumnSetsStat is GetMatrixRowSetsStat for columns.
func (s *Service) GetMatrixColumnSetsStat(ctx context.Context, reqs []GetMatrixSetStatParams) (out []matrix.ItemSetStat, err error) {
	ctx, span := startSpan(ctx, "GetMatrixColumnSetsStat", firstInput(reqs))
	defer func() { endSpan(span, err) }()

	return s.setsStat(ctx, reqs, matrix.ColumnSetStat)
}

type setStatFunc func(m matrix.Matrix, p matrix.SetStatParams) (matrix.ItemSetStat, error)

// setsStat loads the distinct matrices of reqs concurrently, then answers
// every request in order.
func (s *Service) setsStat(ctx context.Context, reqs []GetMatrixSetStatParams, fn setStatFunc) ([]matrix.ItemSetStat, error) {
	var refs []string
	slot := make(map[string]int)
	for _, r := range reqs {
		if err := validateParams(r); err != nil {
			return nil, err
		}
		if _, ok := slot[r.InputData]; !ok {
			slot[r.InputData] = len(refs)
			refs = append(refs, r.InputData)
		}
	}

	loaded := make([]*matrix.FeatureMatrix, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, ref := range refs {
		g.Go(func() error {
			em, _, err := s.loadMatrix(gctx, ref)
			if err != nil {
				return err
			}
			loaded[i] = em.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]matrix.ItemSetStat, len(reqs))
	for i, r := range reqs {
		st, err := fn(loaded[slot[r.InputData]], r.SetStatParams)
		if err != nil {
			return nil, err
		}
		out[i] = st
	}
	s.logger.Debug("set stats",
		slog.Int("requests", len(reqs)), slog.Int("matrices", len(refs)))

	return out, nil
}

func firstInput(reqs []GetMatrixSetStatParams) string {
	if len(reqs) == 0 {
		return ""
	}

	return reqs[0].InputData
}

// loadWithGenome loads a matrix and, when it is connected to one, its genome.
func (s *Service) loadWithGenome(ctx context.Context, ref string) (*ExpressionMatrix, *store.Object, *genome.Genome, error) {
	em, obj, err := s.loadMatrix(ctx, ref)
	if err != nil {
		return nil, nil, nil, err
	}
	if em.GenomeRef == "" {
		return em, obj, nil, nil
	}
	g, err := s.genomes.LoadGenome(ctx, em.GenomeRef)
	if err != nil {
		return nil, nil, nil, err
	}

	return em, obj, g, nil
}

func describe(em *ExpressionMatrix, obj *store.Object, g *genome.Genome) MatrixDescriptor {
	d := MatrixDescriptor{
		MatrixID:          obj.Info.Ref,
		MatrixName:        obj.Info.Name,
		MatrixDescription: em.Description,
		RowsCount:         em.Data.Rows(),
		ColumnsCount:      em.Data.Cols(),
		Scale:             em.Scale,
		Type:              em.Type,
		RowNormalization:  em.RowNormalization,
		ColNormalization:  em.ColNormalization,
	}
	if g != nil {
		d.GenomeID = g.ID
		d.GenomeName = g.ScientificName
	}

	return d
}

// rowDescriptors describes the rows at idx (every row when idx is empty).
// A row whose feature (mapped id, else the row id) is in the genome is named
// by the feature aliases joined with "; " and always carries a "function"
// property, empty when the feature has none. Other rows get an empty name.
// Description is always empty.
func rowDescriptors(em *ExpressionMatrix, g *genome.Genome, idx []int) []ItemDescriptor {
	ids := em.Data.RowIDs()
	idx = allIfEmpty(idx, len(ids))
	var features map[string]*genome.Feature
	if g != nil {
		features = g.FeatureIndex()
	}

	out := make([]ItemDescriptor, len(idx))
	for i, pos := range idx {
		id := ids[pos]
		d := ItemDescriptor{Index: pos, ID: id, Properties: map[string]string{}}
		fid, ok := em.FeatureMapping.Get(id)
		if !ok {
			fid = id
		}
		if f, ok := features[fid]; ok {
			d.Name = strings.Join(f.Aliases, "; ")
			d.Properties["function"] = f.Function
		}
		out[i] = d
	}

	return out
}

// columnDescriptors describes the columns at idx (every column when idx is
// empty), named through the condition mapping when present.
func columnDescriptors(em *ExpressionMatrix, idx []int) []ItemDescriptor {
	ids := em.Data.ColIDs()
	idx = allIfEmpty(idx, len(ids))

	out := make([]ItemDescriptor, len(idx))
	for i, pos := range idx {
		id := ids[pos]
		d := ItemDescriptor{Index: pos, ID: id, Name: id}
		if cond, ok := em.ConditionMapping.Get(id); ok {
			d.Name = cond
		}
		out[i] = d
	}

	return out
}

func allIfEmpty(idx []int, n int) []int {
	if len(idx) > 0 {
		return idx
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	return all
}
