package cluster

import (
	"context"
	"fmt"
	"strings"

	"github.com/katalvlaran/featval/matrix"
)

const opReassemble = "cluster.Reassemble"

// Reassemble re-cuts a previously stored dendrogram at height and assembles
// the resulting labels against the rows of m.
//
// The cut itself is delegated to c.CutDendrogram with workDir passed through
// unchanged. The returned FeatureClusters carries the re-derived dendrogram
// (or the input one when the collaborator returns none); OriginalData is left
// for the caller to fill.
//
// Errors:
//   - ErrNilClusterer, matrix.ErrNilMatrix, ErrEmptyDendrogram on bad input.
//   - any error of the collaborator, wrapped.
//   - matrix.ErrDimensionMismatch if the collaborator returns a label vector
//     of the wrong length.
func Reassemble(ctx context.Context, c Clusterer, m *matrix.FeatureMatrix, dendrogram string, height float64, workDir string) (*FeatureClusters, error) {
	switch {
	case c == nil:
		return nil, fmt.Errorf("%s: %w", opReassemble, ErrNilClusterer)
	case m == nil:
		return nil, fmt.Errorf("%s: %w", opReassemble, matrix.ErrNilMatrix)
	case strings.TrimSpace(dendrogram) == "":
		return nil, fmt.Errorf("%s: %w", opReassemble, ErrEmptyDendrogram)
	}

	lv, derived, err := c.CutDendrogram(ctx, m, dendrogram, height, workDir)
	if err != nil {
		return nil, fmt.Errorf("%s: cut at %g: %w", opReassemble, height, err)
	}
	clusters, err := Assemble(m.RowIDs(), lv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opReassemble, err)
	}
	if derived == "" {
		derived = dendrogram
	}

	return &FeatureClusters{FeatureClusters: clusters, FeatureDendrogram: derived}, nil
}

// FlatDendrogram renders a single-level Newick tree joining every id at
// height 0, e.g. "(g1:0,g2:0);". Ids holding Newick metacharacters are
// single-quoted.
func FlatDendrogram(ids []string) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(newickLabel(id))
		b.WriteString(":0")
	}
	b.WriteString(");")

	return b.String()
}

func newickLabel(id string) string {
	if !strings.ContainsAny(id, "()[]':;, \t\n") {
		return id
	}

	return "'" + strings.ReplaceAll(id, "'", "''") + "'"
}
