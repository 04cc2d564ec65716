package genome

import (
	"bufio"
	"fmt"
	"slices"
	"strings"

	"github.com/katalvlaran/featval/ordered"
)

// ParseFeatureIDs splits free-text id lists into ids. Each text may hold
// several lines and each line several comma-separated ids. Surrounding
// whitespace is trimmed and empty entries are dropped; order is preserved
// across texts and duplicates are kept.
func ParseFeatureIDs(texts ...string) []string {
	var ids []string
	for _, text := range texts {
		sc := bufio.NewScanner(strings.NewReader(text))
		for sc.Scan() {
			for _, part := range strings.Split(sc.Text(), ",") {
				if id := strings.TrimSpace(part); id != "" {
					ids = append(ids, id)
				}
			}
		}
	}

	return ids
}

// BuildFeatureSet adds ids, all of which must be features of g, to a copy of
// base (or to an empty set when base is nil). Each element lists the genome
// references it came from, without duplicates. base is never modified.
//
// Errors:
//   - ErrFeaturesNotFound listing every id that is not a feature of g.
func BuildFeatureSet(g *Genome, genomeRef string, ids []string, base *FeatureSet, description string) (*FeatureSet, error) {
	known := make(map[string]struct{}, len(g.Features))
	for i := range g.Features {
		known[g.Features[i].ID] = struct{}{}
	}

	elements := ordered.New[[]string](len(ids))
	if base != nil {
		base.Elements.Range(func(k string, refs []string) bool {
			elements.Set(k, append([]string(nil), refs...))
			return true
		})
	}

	var lost []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			lost = append(lost, id)
			continue
		}
		refs, _ := elements.Get(id)
		elements.Set(id, addOnce(refs, genomeRef))
	}
	if len(lost) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrFeaturesNotFound, lost)
	}

	return &FeatureSet{Description: description, Elements: elements}, nil
}

// GenomeRefs returns every genome reference used by fs, in first-seen order.
func (fs *FeatureSet) GenomeRefs() []string {
	var refs []string
	fs.Elements.Range(func(_ string, rs []string) bool {
		for _, r := range rs {
			refs = addOnce(refs, r)
		}
		return true
	})

	return refs
}

func addOnce(list []string, item string) []string {
	if slices.Contains(list, item) {
		return list
	}

	return append(list, item)
}
