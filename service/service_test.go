package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/featval/cluster"
	"github.com/katalvlaran/featval/config"
	"github.com/katalvlaran/featval/genome"
	"github.com/katalvlaran/featval/matrix"
	"github.com/katalvlaran/featval/service"
	"github.com/katalvlaran/featval/store"
)

const (
	genomeRef = "genomes/ecoli"
	exprTSV   = "feature_ids\tc1\tc2\tc3\n" +
		"g1\t1\t2\t3\n" +
		"g2\t2\t4\t6\n" +
		"g3\t3\t\t1\n" +
		"g4\t5\t5\t5\n"
)

type fixture struct {
	svc     *service.Service
	store   *store.MemStore
	genomes *genome.StaticSource
	stub    *cluster.StubClusterer
	cfg     config.Config
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.ScratchDir = t.TempDir()
	for _, fn := range mutate {
		fn(&cfg)
	}

	f := &fixture{
		store:   store.NewMemStore(),
		genomes: genome.NewStaticSource(),
		stub:    &cluster.StubClusterer{},
		cfg:     cfg,
	}
	f.genomes.Put(genomeRef, &genome.Genome{
		ID:             "Ecoli_K12",
		ScientificName: "Escherichia coli K-12",
		Features: []genome.Feature{
			{ID: "g1", Aliases: []string{"thrL", "b0001"}, Function: "thr operon leader peptide"},
			{ID: "G2X", Aliases: []string{"g2"}, Function: "aspartokinase"},
			{ID: "g9"},
		},
	})
	f.svc = service.New(cfg, f.store, f.genomes, f.stub, nil)

	return f
}

// importMatrix stores the sample matrix as ws/<name>, connected to the genome.
func (f *fixture) importMatrix(t *testing.T, name string) string {
	t.Helper()
	info, err := f.svc.TsvFileToMatrix(context.Background(), strings.NewReader(exprTSV), service.TsvFileToMatrixParams{
		GenomeRef:     genomeRef,
		Description:   "sample expression",
		OutputWsName:  "ws",
		OutputObjName: name,
	})
	require.NoError(t, err)

	return info.Ref
}

func (f *fixture) loadMatrix(t *testing.T, ref string) (*service.ExpressionMatrix, *store.Object) {
	t.Helper()
	em, obj, err := store.Load[service.ExpressionMatrix](context.Background(), f.store, ref)
	require.NoError(t, err)

	return em, obj
}

func (f *fixture) loadClusters(t *testing.T, ref string) *cluster.FeatureClusters {
	t.Helper()
	fc, _, err := store.Load[cluster.FeatureClusters](context.Background(), f.store, ref)
	require.NoError(t, err)

	return fc
}

func clusterIDs(fc *cluster.FeatureClusters) [][]string {
	out := make([][]string, len(fc.FeatureClusters))
	for i, c := range fc.FeatureClusters {
		out[i] = c.IDToPos.Keys()
	}

	return out
}

func TestTsvFileToMatrix_DefaultsAndMapping(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")
	assert.Equal(t, "ws/expr/1", ref)

	em, obj := f.loadMatrix(t, ref)
	assert.Equal(t, service.TypeExpressionMatrix, obj.Info.Type)
	assert.Equal(t, service.DefaultDataType, em.Type)
	assert.Equal(t, service.DefaultDataScale, em.Scale)
	assert.Equal(t, genomeRef, em.GenomeRef)
	assert.Equal(t, []string{"g1", "g2"}, em.FeatureMapping.Keys())
	fid, _ := em.FeatureMapping.Get("g2")
	assert.Equal(t, "G2X", fid, "g2 maps through the alias pass")
	assert.Equal(t, 1, em.Data.MissingCount())

	require.Len(t, obj.Provenance, 1)
	assert.Equal(t, "tsv_file_to_matrix", obj.Provenance[0].Method)
	assert.Equal(t, []string{genomeRef}, obj.Provenance[0].InputObjects)
}

func TestTsvFileToMatrix_FillMissingAndNoGenome(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	info, err := f.svc.TsvFileToMatrix(context.Background(), strings.NewReader(exprTSV), service.TsvFileToMatrixParams{
		FillMissingValues: true,
		DataType:          "log-ratio",
		DataScale:         "log2",
		OutputWsName:      "ws",
		OutputObjName:     "filled",
	})
	require.NoError(t, err)

	em, _ := f.loadMatrix(t, info.Ref)
	assert.Zero(t, em.Data.MissingCount())
	assert.Equal(t, "log-ratio", em.Type)
	assert.Equal(t, "log2", em.Scale)
	assert.Empty(t, em.GenomeRef)
	assert.Nil(t, em.FeatureMapping)
}

func TestTsvFileToMatrix_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("low coverage", func(t *testing.T) {
		f := newFixture(t, func(c *config.Config) { c.Reconcile.MinCoverage = 0.9 })
		_, err := f.svc.TsvFileToMatrix(ctx, strings.NewReader(exprTSV), service.TsvFileToMatrixParams{
			GenomeRef: genomeRef, OutputWsName: "ws", OutputObjName: "expr",
		})
		require.ErrorIs(t, err, service.ErrLowCoverage)
	})

	t.Run("unknown genome", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.TsvFileToMatrix(ctx, strings.NewReader(exprTSV), service.TsvFileToMatrixParams{
			GenomeRef: "genomes/missing", OutputWsName: "ws", OutputObjName: "expr",
		})
		require.ErrorIs(t, err, genome.ErrGenomeNotFound)
	})

	t.Run("missing output name", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.TsvFileToMatrix(ctx, strings.NewReader(exprTSV), service.TsvFileToMatrixParams{OutputWsName: "ws"})
		require.ErrorIs(t, err, service.ErrInvalidParams)
	})
}

func TestMatrixToTsv(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")

	var buf bytes.Buffer
	require.NoError(t, f.svc.MatrixToTsv(context.Background(), ref, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "feature_ids\tc1\tc2\tc3", lines[0])
	assert.Equal(t, "g3\t3\t\t1", lines[3])

	err := f.svc.MatrixToTsv(context.Background(), "ws/nothing", &buf)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetMatrixDescriptor(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")

	d, err := f.svc.GetMatrixDescriptor(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "ws/expr/1", d.MatrixID)
	assert.Equal(t, "expr", d.MatrixName)
	assert.Equal(t, "sample expression", d.MatrixDescription)
	assert.Equal(t, "Ecoli_K12", d.GenomeID)
	assert.Equal(t, "Escherichia coli K-12", d.GenomeName)
	assert.Equal(t, 4, d.RowsCount)
	assert.Equal(t, 3, d.ColumnsCount)
}

func TestGetMatrixStat(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")

	ms, err := f.svc.GetMatrixStat(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, ms.RowDescriptors, 4)
	require.Len(t, ms.ColumnDescriptors, 3)
	require.Len(t, ms.RowStats, 4)
	require.Len(t, ms.ColumnStats, 3)

	assert.Equal(t, "thrL; b0001", ms.RowDescriptors[0].Name)
	assert.Empty(t, ms.RowDescriptors[0].Description)
	assert.Equal(t, "thr operon leader peptide", ms.RowDescriptors[0].Properties["function"])
	assert.Equal(t, "g2", ms.RowDescriptors[1].Name, "named by the aliases of the mapped feature G2X")
	assert.Equal(t, "aspartokinase", ms.RowDescriptors[1].Properties["function"])
	assert.Empty(t, ms.RowDescriptors[2].Name, "rows without a genome feature are unnamed")
	assert.NotContains(t, ms.RowDescriptors[2].Properties, "function")

	assert.Equal(t, 1, ms.RowStats[2].MissingValues)
	require.NotNil(t, ms.RowStats[0].Avg)
	assert.InDelta(t, 2.0, *ms.RowStats[0].Avg, 1e-12)
	require.NotNil(t, ms.ColumnStats[1].Avg)
	assert.InDelta(t, 11.0/3.0, *ms.ColumnStats[1].Avg, 1e-12)
}

func TestGetMatrixStat_FunctionPropertyAlwaysSetForKnownFeatures(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.genomes.Put("genomes/bare", &genome.Genome{ID: "Bare", Features: []genome.Feature{{ID: "g3"}}})

	info, err := f.svc.TsvFileToMatrix(ctx, strings.NewReader(exprTSV), service.TsvFileToMatrixParams{
		GenomeRef: "genomes/bare", OutputWsName: "ws", OutputObjName: "bare",
	})
	require.NoError(t, err)

	ms, err := f.svc.GetMatrixStat(ctx, info.Ref)
	require.NoError(t, err)
	require.Len(t, ms.RowDescriptors, 4)

	g3 := ms.RowDescriptors[2]
	assert.Equal(t, "g3", g3.ID)
	assert.Empty(t, g3.Name, "a feature without aliases has an empty name")
	fn, ok := g3.Properties["function"]
	assert.True(t, ok, "function is present even when empty")
	assert.Empty(t, fn)

	_, ok = ms.RowDescriptors[0].Properties["function"]
	assert.False(t, ok, "g1 is not in this genome")
}

func TestGetSubmatrixStat_AllBlocks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")

	ss, err := f.svc.GetSubmatrixStat(context.Background(), service.GetSubmatrixStatParams{
		InputData:                ref,
		RowIDs:                   []string{"g1", "g2"},
		ColumnIndices:            []int{0, 2},
		FlRowSetStats:            true,
		FlColumnSetStat:          true,
		FlMtxRowSetStat:          true,
		FlMtxColumnSetStat:       true,
		FlRowPairwiseCorrelation: true,
		FlValues:                 true,
	})
	require.NoError(t, err)

	require.Len(t, ss.RowDescriptors, 2)
	assert.Equal(t, 1, ss.RowDescriptors[1].Index)
	require.Len(t, ss.ColumnDescriptors, 2)
	assert.Equal(t, "c3", ss.ColumnDescriptors[1].ID)

	require.NotNil(t, ss.RowSetStats)
	assert.Equal(t, 2, ss.RowSetStats.Size)
	assert.Equal(t, []int{0, 2}, ss.RowSetStats.IndicesOn)
	require.NotNil(t, ss.RowSetStats.Avgs[0])
	assert.InDelta(t, 1.5, *ss.RowSetStats.Avgs[0], 1e-12)

	require.NotNil(t, ss.MtxRowSetStat)
	assert.Equal(t, 4, ss.MtxRowSetStat.Size)
	require.NotNil(t, ss.ColumnSetStat)
	assert.Equal(t, []int{0, 2}, ss.ColumnSetStat.IndicesFor)
	require.NotNil(t, ss.MtxColumnSetStat)
	assert.Equal(t, 3, ss.MtxColumnSetStat.Size)

	require.NotNil(t, ss.RowPairwiseCorrelation)
	require.Len(t, ss.RowPairwiseCorrelation.ComparisonValues, 2)
	r := ss.RowPairwiseCorrelation.ComparisonValues[0][1]
	require.NotNil(t, r)
	assert.InDelta(t, 1.0, *r, 1e-12)

	require.Len(t, ss.Values, 2)
	require.Len(t, ss.Values[1], 2)
	assert.InDelta(t, 6.0, *ss.Values[1][1], 1e-12)
}

func TestGetSubmatrixStat_FlagsOffAndErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")
	ctx := context.Background()

	ss, err := f.svc.GetSubmatrixStat(ctx, service.GetSubmatrixStatParams{InputData: ref})
	require.NoError(t, err)
	assert.Len(t, ss.RowDescriptors, 4)
	assert.Nil(t, ss.RowSetStats)
	assert.Nil(t, ss.RowPairwiseCorrelation)
	assert.Nil(t, ss.Values)

	_, err = f.svc.GetSubmatrixStat(ctx, service.GetSubmatrixStatParams{InputData: ref, RowIDs: []string{"nope"}})
	require.ErrorIs(t, err, matrix.ErrUnknownIdentifier)

	_, err = f.svc.GetSubmatrixStat(ctx, service.GetSubmatrixStatParams{InputData: ref, ColumnIndices: []int{3}})
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestGetMatrixItemsStat(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")
	ctx := context.Background()

	rows, err := f.svc.GetMatrixRowsStat(ctx, service.GetMatrixItemsStatParams{
		InputData: ref, IndicesFor: []int{2}, IndicesOn: []int{1}, FlIndicesOn: true,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "g3", rows[0].ID)
	assert.Equal(t, 1, rows[0].MissingValues)
	assert.Nil(t, rows[0].Avg, "the only selected cell is missing")

	cols, err := f.svc.GetMatrixColumnsStat(ctx, service.GetMatrixItemsStatParams{InputData: ref})
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "c2", cols[1].ID)
}

func TestGetMatrixSetsStat_LoadsEachMatrixOnceAndAnswersAll(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a := f.importMatrix(t, "a")
	b := f.importMatrix(t, "b")
	ctx := context.Background()

	reqs := []service.GetMatrixSetStatParams{
		{InputData: a, SetStatParams: matrix.AllSetStats([]int{0, 1}, nil)},
		{InputData: b, SetStatParams: matrix.SetStatParams{IndicesFor: []int{3}, FlAvgs: true}},
		{InputData: a, SetStatParams: matrix.AllSetStats(nil, []int{2})},
	}
	out, err := f.svc.GetMatrixRowSetsStat(ctx, reqs)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 2, out[0].Size)
	assert.Nil(t, out[1].Mins)
	assert.InDelta(t, 5.0, *out[1].Avgs[0], 1e-12)
	assert.Equal(t, []int{2}, out[2].IndicesOn)
	assert.Equal(t, 4, out[2].Size)

	cols, err := f.svc.GetMatrixColumnSetsStat(ctx, reqs[:1])
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, []int{0, 1}, cols[0].IndicesFor)

	_, err = f.svc.GetMatrixRowSetsStat(ctx, []service.GetMatrixSetStatParams{{InputData: "ws/missing"}})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCorrectMatrix(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")
	ctx := context.Background()

	info, err := f.svc.CorrectMatrix(ctx, service.CorrectMatrixParams{
		InputData: ref, TransformType: matrix.TransformMissing, OutWorkspace: "ws",
	})
	require.NoError(t, err)
	assert.Equal(t, "ws/expr/2", info.Ref, "output name defaults to the input name")

	em, obj := f.loadMatrix(t, info.Ref)
	assert.Zero(t, em.Data.MissingCount())
	assert.Equal(t, genomeRef, em.GenomeRef, "metadata survives the correction")
	assert.Equal(t, []string{ref}, obj.Provenance[0].InputObjects)

	_, err = f.svc.CorrectMatrix(ctx, service.CorrectMatrixParams{
		InputData: ref, TransformType: "log2", OutWorkspace: "ws",
	})
	require.ErrorIs(t, err, matrix.ErrUnsupportedOperation)
}

func TestReconnectMatrixToGenome(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	info, err := f.svc.TsvFileToMatrix(context.Background(), strings.NewReader(exprTSV), service.TsvFileToMatrixParams{
		OutputWsName: "ws", OutputObjName: "plain",
	})
	require.NoError(t, err)

	out, err := f.svc.ReconnectMatrixToGenome(context.Background(), service.ReconnectMatrixToGenomeParams{
		InputData: info.Ref, GenomeRef: genomeRef, OutWorkspace: "ws2", OutMatrixID: "connected",
	})
	require.NoError(t, err)
	assert.Equal(t, "ws2/connected/1", out.Ref)

	em, obj := f.loadMatrix(t, out.Ref)
	assert.Equal(t, genomeRef, em.GenomeRef)
	assert.Equal(t, 2, em.FeatureMapping.Len())
	assert.Equal(t, []string{info.Ref, genomeRef}, obj.Provenance[0].InputObjects)
}

func TestBuildFeatureSet(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.BuildFeatureSet(ctx, service.BuildFeatureSetParams{
		Genome:           genomeRef,
		FeatureIDs:       "g1, G2X\n",
		Description:      "first",
		OutWorkspace:     "ws",
		OutputFeatureSet: "set",
	})
	require.NoError(t, err)

	second, err := f.svc.BuildFeatureSet(ctx, service.BuildFeatureSetParams{
		Genome:           genomeRef,
		FeatureIDsCustom: "g9",
		BaseFeatureSet:   first.Ref,
		OutWorkspace:     "ws",
		OutputFeatureSet: "set2",
	})
	require.NoError(t, err)

	fs, obj, err := store.Load[genome.FeatureSet](ctx, f.store, second.Ref)
	require.NoError(t, err)
	assert.Equal(t, service.TypeFeatureSet, obj.Info.Type)
	assert.Equal(t, []string{"g1", "G2X", "g9"}, fs.Elements.Keys())
	assert.Equal(t, []string{genomeRef, first.Ref}, obj.Provenance[0].InputObjects)

	_, err = f.svc.BuildFeatureSet(ctx, service.BuildFeatureSetParams{
		Genome: genomeRef, FeatureIDs: "g1,ghost", OutWorkspace: "ws", OutputFeatureSet: "bad",
	})
	require.ErrorIs(t, err, genome.ErrFeaturesNotFound)
	assert.Contains(t, err.Error(), "ghost")
}

func TestTsvFileToMatrix_NaNSurvivesStoreAndStats(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	info, err := f.svc.TsvFileToMatrix(ctx, strings.NewReader("feature_ids\tc1\tc2\ng1\t1\tNaN\ng2\t2\t3\n"),
		service.TsvFileToMatrixParams{OutputWsName: "ws", OutputObjName: "nan"})
	require.NoError(t, err)

	em, _ := f.loadMatrix(t, info.Ref)
	assert.Zero(t, em.Data.MissingCount(), "NaN is a present value")
	v, ok, err := em.Data.At(0, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, math.IsNaN(v))

	rows, err := f.svc.GetMatrixRowsStat(ctx, service.GetMatrixItemsStatParams{InputData: info.Ref})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Avg)
	assert.True(t, math.IsNaN(*rows[0].Avg))
	assert.InDelta(t, 2.5, *rows[1].Avg, 1e-12)

	ss, err := f.svc.GetSubmatrixStat(ctx, service.GetSubmatrixStatParams{
		InputData: info.Ref, FlRowSetStats: true, FlValues: true,
	})
	require.NoError(t, err)
	raw, err := json.Marshal(ss)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"NaN"`)

	var tsvOut bytes.Buffer
	require.NoError(t, f.svc.MatrixToTsv(ctx, info.Ref, &tsvOut))
	assert.Contains(t, tsvOut.String(), "g1\t1\tNaN")
}

func TestEstimateK(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")

	info, err := f.svc.EstimateK(context.Background(), service.EstimateKParams{
		InputMatrix:       ref,
		OutWorkspace:      "ws",
		OutEstimateResult: "k",
		EstimateKParams:   cluster.EstimateKParams{MinK: 3, MaxK: 4},
	})
	require.NoError(t, err)

	res, obj, err := store.Load[cluster.EstimateKResult](context.Background(), f.store, info.Ref)
	require.NoError(t, err)
	assert.Equal(t, 3, res.BestK)
	assert.Equal(t, service.TypeEstimateKResult, obj.Info.Type)

	calls := f.stub.CallsTo("EstimateK")
	require.Len(t, calls, 1)
	assert.Equal(t, 4, calls[0].Rows)
	assert.NotEmpty(t, calls[0].WorkDir)
	assert.NoDirExists(t, calls[0].WorkDir, "scratch directory is removed afterwards")

	_, err = f.svc.EstimateK(context.Background(), service.EstimateKParams{
		InputMatrix: ref, OutWorkspace: "ws", OutEstimateResult: "k",
		EstimateKParams: cluster.EstimateKParams{MinK: 5, MaxK: 2},
	})
	require.ErrorIs(t, err, cluster.ErrBadParams)
}

func TestEstimateKNew(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")
	f.stub.EstimateResult = &cluster.EstimateKResult{
		BestK:                3,
		EstimateClusterSizes: []cluster.KEstimate{{K: 2, Quality: 0.4}, {K: 3, Quality: 0.7}},
	}
	seed := int64(123)

	info, err := f.svc.EstimateKNew(context.Background(), service.EstimateKNewParams{
		InputMatrix:        ref,
		OutWorkspace:       "ws",
		OutEstimateResult:  "knew",
		EstimateKNewParams: cluster.EstimateKNewParams{Criterion: "asw", RandomSeed: &seed},
	})
	require.NoError(t, err)

	res, obj, err := store.Load[cluster.EstimateKResult](context.Background(), f.store, info.Ref)
	require.NoError(t, err)
	assert.Equal(t, *f.stub.EstimateResult, *res)
	assert.Equal(t, service.TypeEstimateKResult, obj.Info.Type)
	require.Len(t, obj.Provenance, 1)
	assert.Equal(t, "estimate_k_new", obj.Provenance[0].Method)
	assert.Equal(t, []string{ref}, obj.Provenance[0].InputObjects)

	calls := f.stub.CallsTo("EstimateKNew")
	require.Len(t, calls, 1)
	assert.NoDirExists(t, calls[0].WorkDir)
	assert.Empty(t, f.stub.CallsTo("EstimateK"))

	_, err = f.svc.EstimateKNew(context.Background(), service.EstimateKNewParams{
		InputMatrix: ref, OutWorkspace: "ws", OutEstimateResult: "knew",
		EstimateKNewParams: cluster.EstimateKNewParams{Criterion: "gap"},
	})
	require.ErrorIs(t, err, service.ErrInvalidParams)
	require.ErrorIs(t, err, cluster.ErrBadParams)
}

func TestClusterKMeans(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")

	info, err := f.svc.ClusterKMeans(context.Background(), service.ClusterKMeansParams{
		InputData: ref, OutWorkspace: "ws", OutClustersetID: "km",
		KMeansParams: cluster.KMeansParams{K: 2},
	})
	require.NoError(t, err)

	fc := f.loadClusters(t, info.Ref)
	assert.Equal(t, ref, fc.OriginalData)
	assert.Equal(t, [][]string{{"g1", "g3"}, {"g2", "g4"}}, clusterIDs(fc))
	assert.Empty(t, f.stub.CallsTo("ClusterQualities"))

	_, err = f.svc.ClusterKMeans(context.Background(), service.ClusterKMeansParams{
		InputData: ref, OutWorkspace: "ws", OutClustersetID: "km",
	})
	require.ErrorIs(t, err, service.ErrInvalidParams)
}

func TestClusterKMeans_ScikitLearnShiftsLabelsAndScoresQualities(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")
	f.stub.QualityResult = &cluster.LabelVector{
		Labels:  []int{1, 2, 1, 2},
		Meancor: []float64{0.8, 0.6},
	}

	info, err := f.svc.ClusterKMeans(context.Background(), service.ClusterKMeansParams{
		InputData: ref, OutWorkspace: "ws", OutClustersetID: "km",
		KMeansParams: cluster.KMeansParams{K: 2, Algorithm: service.AlgorithmScikitLearn},
	})
	require.NoError(t, err)

	calls := f.stub.CallsTo("ClusterQualities")
	require.Len(t, calls, 1)
	assert.Equal(t, []int{1, 2, 1, 2}, calls[0].Labels)

	fc := f.loadClusters(t, info.Ref)
	require.Len(t, fc.FeatureClusters, 2)
	require.NotNil(t, fc.FeatureClusters[1].Meancor)
	assert.InDelta(t, 0.6, *fc.FeatureClusters[1].Meancor, 1e-12)
}

func TestClusterHierarchicalThenRecut(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")
	ctx := context.Background()

	first, err := f.svc.ClusterHierarchical(ctx, service.ClusterHierarchicalParams{
		InputData: ref, OutWorkspace: "ws", OutClustersetID: "tree",
		HierarchicalParams: cluster.HierarchicalParams{DistanceMetric: "euclidean"},
	})
	require.NoError(t, err)
	fc := f.loadClusters(t, first.Ref)
	assert.Equal(t, [][]string{{"g1", "g2", "g3", "g4"}}, clusterIDs(fc))
	assert.Equal(t, "(g1:0,g2:0,g3:0,g4:0);", fc.FeatureDendrogram)

	f.stub.CutResult = &cluster.LabelVector{Labels: []int{0, 0, 1, -1}}
	second, err := f.svc.ClustersFromDendrogram(ctx, service.ClustersFromDendrogramParams{
		InputData: first.Ref, HeightCutoff: 0.5, OutWorkspace: "ws", OutClustersetID: "recut",
	})
	require.NoError(t, err)

	recut := f.loadClusters(t, second.Ref)
	assert.Equal(t, ref, recut.OriginalData)
	assert.Equal(t, [][]string{{"g1", "g2"}, {"g3"}}, clusterIDs(recut))
	assert.Equal(t, fc.FeatureDendrogram, recut.FeatureDendrogram)

	calls := f.stub.CallsTo("CutDendrogram")
	require.Len(t, calls, 1)
	assert.InDelta(t, 0.5, calls[0].Height, 1e-12)
	assert.Equal(t, fc.FeatureDendrogram, calls[0].Dendrogram)
}

func TestClustersToFile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")
	ctx := context.Background()
	info, err := f.svc.ClusterKMeans(ctx, service.ClusterKMeansParams{
		InputData: ref, OutWorkspace: "ws", OutClustersetID: "km",
		KMeansParams: cluster.KMeansParams{K: 2},
	})
	require.NoError(t, err)

	var tsvOut, sifOut bytes.Buffer
	require.NoError(t, f.svc.ClustersToFile(ctx, info.Ref, service.FormatTSV, &tsvOut))
	assert.Equal(t, "g1\t0\ng3\t0\ng2\t1\ng4\t1\n", tsvOut.String())
	require.NoError(t, f.svc.ClustersToFile(ctx, info.Ref, "SIF", &sifOut))
	assert.Equal(t, "cluster_0 pc g1\ncluster_0 pc g3\ncluster_1 pc g2\ncluster_1 pc g4\n", sifOut.String())

	err = f.svc.ClustersToFile(ctx, info.Ref, "xml", &tsvOut)
	require.ErrorIs(t, err, service.ErrInvalidParams)
}

func TestClusteringWithoutClusterer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := f.importMatrix(t, "expr")
	svc := service.New(f.cfg, f.store, f.genomes, nil, nil)

	_, err := svc.ClusterHierarchical(context.Background(), service.ClusterHierarchicalParams{
		InputData: ref, OutWorkspace: "ws", OutClustersetID: "tree",
	})
	require.ErrorIs(t, err, cluster.ErrNilClusterer)
}

func TestNilGenomeSourceReadsFromStore(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	g := genome.Genome{ID: "G", Features: []genome.Feature{{ID: "g1"}, {ID: "g2"}}}
	_, err := f.store.Save(context.Background(), "genomes", "stored", genome.GenomeType, g, nil)
	require.NoError(t, err)
	svc := service.New(f.cfg, f.store, nil, f.stub, nil)

	info, err := svc.TsvFileToMatrix(context.Background(), strings.NewReader(exprTSV), service.TsvFileToMatrixParams{
		GenomeRef: "genomes/stored", OutputWsName: "ws", OutputObjName: "expr",
	})
	require.NoError(t, err)
	em, _ := f.loadMatrix(t, info.Ref)
	assert.Equal(t, []string{"g1", "g2"}, em.FeatureMapping.Keys())
}
