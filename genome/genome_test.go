package genome_test

import (
	"context"
	"errors"
	"testing"

	"github.com/katalvlaran/featval/genome"
	"github.com/katalvlaran/featval/ordered"
	"github.com/katalvlaran/featval/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_ExactBeatsAlias(t *testing.T) {
	features := []genome.Feature{
		{ID: "F2", Aliases: []string{"X"}},
		{ID: "X"},
	}
	m := genome.Reconcile([]string{"X"}, features)

	v, ok := m.Get("X")
	require.True(t, ok)
	assert.Equal(t, "X", v, "exact id match must win over an earlier alias")
}

func TestReconcile_AliasPassAndFirstMatchWins(t *testing.T) {
	features := []genome.Feature{
		{ID: "kb|g.1", Aliases: []string{"thrA", "b0002"}},
		{ID: "kb|g.2", Aliases: []string{"thrA"}},
		{ID: "kb|g.3"},
	}
	rows := []string{"kb|g.3", "thrA", "b0002", "orphan"}

	m := genome.Reconcile(rows, features)

	assert.Equal(t, []string{"kb|g.3", "thrA", "b0002"}, m.Keys())
	v, _ := m.Get("thrA")
	assert.Equal(t, "kb|g.1", v)
	v, _ = m.Get("b0002")
	assert.Equal(t, "kb|g.1", v)
	assert.False(t, m.Has("orphan"))

	assert.InDelta(t, 0.75, genome.Coverage(m, rows), 1e-12)
}

func TestReconcile_IsRebuiltFromScratch(t *testing.T) {
	features := []genome.Feature{{ID: "a"}, {ID: "b"}}
	first := genome.Reconcile([]string{"a", "b"}, features)
	second := genome.Reconcile([]string{"b"}, features)

	assert.Equal(t, 2, first.Len())
	assert.Equal(t, []string{"b"}, second.Keys())
}

func TestReconcile_EmptyInputs(t *testing.T) {
	assert.Equal(t, 0, genome.Reconcile(nil, []genome.Feature{{ID: "a"}}).Len())
	assert.Equal(t, 0, genome.Reconcile([]string{"a"}, nil).Len())
	assert.Equal(t, 1.0, genome.Coverage(nil, nil))
	assert.Equal(t, 0.0, genome.Coverage(nil, []string{"a"}))
}

func TestParseFeatureIDs(t *testing.T) {
	got := genome.ParseFeatureIDs(" a, b\nc,,d \n", "", "e\n\n f")
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, got)
	assert.Empty(t, genome.ParseFeatureIDs("", "  "))
}

func TestBuildFeatureSet_MergesBaseAndDeduplicatesRefs(t *testing.T) {
	g := &genome.Genome{ID: "G", Features: []genome.Feature{{ID: "f1"}, {ID: "f2"}, {ID: "f3"}}}

	baseEl := ordered.New[[]string](1)
	baseEl.Set("f1", []string{"1/2/3"})
	base := &genome.FeatureSet{Description: "base", Elements: baseEl}

	fs, err := genome.BuildFeatureSet(g, "1/5/1", []string{"f2", "f1", "f2"}, base, "mine")
	require.NoError(t, err)

	assert.Equal(t, "mine", fs.Description)
	assert.Equal(t, []string{"f1", "f2"}, fs.Elements.Keys())
	refs, _ := fs.Elements.Get("f1")
	assert.Equal(t, []string{"1/2/3", "1/5/1"}, refs)
	refs, _ = fs.Elements.Get("f2")
	assert.Equal(t, []string{"1/5/1"}, refs)
	assert.Equal(t, []string{"1/2/3", "1/5/1"}, fs.GenomeRefs())

	// Base is untouched.
	refs, _ = base.Elements.Get("f1")
	assert.Equal(t, []string{"1/2/3"}, refs)
}

func TestBuildFeatureSet_ReportsAllLostIDs(t *testing.T) {
	g := &genome.Genome{Features: []genome.Feature{{ID: "f1"}}}

	_, err := genome.BuildFeatureSet(g, "r", []string{"x", "f1", "y"}, nil, "")
	require.True(t, errors.Is(err, genome.ErrFeaturesNotFound))
	assert.Contains(t, err.Error(), "[x y]")
}

func TestGenome_FeatureIndexFirstWins(t *testing.T) {
	g := &genome.Genome{Features: []genome.Feature{
		{ID: "a", Function: "first"},
		{ID: "a", Function: "second"},
	}}
	assert.Equal(t, "first", g.FeatureIndex()["a"].Function)
}

func TestStaticSource(t *testing.T) {
	src := genome.NewStaticSource()
	src.Put("ws/genome", &genome.Genome{ID: "G"})

	g, err := src.LoadGenome(context.Background(), "ws/genome")
	require.NoError(t, err)
	assert.Equal(t, "G", g.ID)

	_, err = src.LoadGenome(context.Background(), "ws/missing")
	require.True(t, errors.Is(err, genome.ErrGenomeNotFound))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.LoadGenome(ctx, "ws/genome")
	require.ErrorIs(t, err, context.Canceled)
}

func TestStoreSource(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	_, err := st.Save(ctx, "ws", "ecoli", genome.GenomeType, &genome.Genome{
		ID:       "E.coli",
		Features: []genome.Feature{{ID: "b0001", Aliases: []string{"thrL"}, Function: "leader"}},
	}, nil)
	require.NoError(t, err)

	src := genome.StoreSource{Store: st}
	g, err := src.LoadGenome(ctx, "ws/ecoli")
	require.NoError(t, err)
	require.Len(t, g.Features, 1)
	assert.Equal(t, []string{"thrL"}, g.Features[0].Aliases)

	_, err = src.LoadGenome(ctx, "ws/none")
	require.ErrorIs(t, err, genome.ErrGenomeNotFound)
	require.ErrorIs(t, err, store.ErrNotFound)
}
