package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/katalvlaran/featval/cluster"
	"github.com/katalvlaran/featval/matrix"
	"github.com/katalvlaran/featval/store"
	"github.com/katalvlaran/featval/tsv"
)

// Cluster export formats accepted by ClustersToFile.
const (
	FormatTSV = "tsv"
	FormatSIF = "sif"
)

// TsvFileToMatrix parses a TSV matrix from r and saves it as an
// ExpressionMatrix. Missing cells are optionally imputed, type and scale
// default to DefaultDataType / DefaultDataScale, and rows are reconciled
// against GenomeRef when one is given.
func (s *Service) TsvFileToMatrix(ctx context.Context, r io.Reader, p TsvFileToMatrixParams) (info store.ObjectInfo, err error) {
	ctx, span := startSpan(ctx, "TsvFileToMatrix", p.GenomeRef)
	defer func() { endSpan(span, err) }()

	if err = validateParams(p); err != nil {
		return store.ObjectInfo{}, err
	}
	m, err := tsv.Read(r, matrix.WithNoValidateNaNInf())
	if err != nil {
		return store.ObjectInfo{}, err
	}
	filled := 0
	if p.FillMissingValues {
		filled = matrix.FillMissing(m)
	}

	em := &ExpressionMatrix{
		Type:        orDefault(p.DataType, DefaultDataType),
		Scale:       orDefault(p.DataScale, DefaultDataScale),
		Description: p.Description,
		Data:        m,
	}
	if p.GenomeRef != "" {
		if err = s.connectGenome(ctx, em, p.GenomeRef); err != nil {
			return store.ObjectInfo{}, err
		}
	}
	s.logger.Info("imported matrix",
		slog.Int("rows", m.Rows()), slog.Int("columns", m.Cols()),
		slog.Int("missing", m.MissingCount()), slog.Int("filled", filled))

	return s.store.Save(ctx, p.OutputWsName, p.OutputObjName, TypeExpressionMatrix, em,
		s.provenance("tsv_file_to_matrix", "Matrix imported from TSV file", p.GenomeRef))
}

// MatrixToTsv writes the data of a stored matrix to w in TSV form.
func (s *Service) MatrixToTsv(ctx context.Context, ref string, w io.Writer) (err error) {
	ctx, span := startSpan(ctx, "MatrixToTsv", ref)
	defer func() { endSpan(span, err) }()

	em, _, err := s.loadMatrix(ctx, ref)
	if err != nil {
		return err
	}

	return tsv.Write(w, em.Data)
}

// ClustersToFile writes a stored clustering to w as FormatTSV or FormatSIF.
func (s *Service) ClustersToFile(ctx context.Context, ref, format string, w io.Writer) (err error) {
	ctx, span := startSpan(ctx, "ClustersToFile", ref)
	defer func() { endSpan(span, err) }()

	var write func(io.Writer, []cluster.LabeledCluster) error
	switch strings.ToLower(format) {
	case FormatTSV, "":
		write = cluster.WriteTSV
	case FormatSIF:
		write = cluster.WriteSIF
	default:
		return fmt.Errorf("%w: unknown cluster format %q", ErrInvalidParams, format)
	}

	fc, _, err := store.Load[cluster.FeatureClusters](ctx, s.store, ref)
	if err != nil {
		return err
	}

	return write(w, fc.FeatureClusters)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}
