package genome

import (
	"errors"

	"github.com/katalvlaran/featval/ordered"
)

var (
	// ErrGenomeNotFound is returned by a Source that has no genome under a reference.
	ErrGenomeNotFound = errors.New("genome: genome not found")

	// ErrFeaturesNotFound is returned by BuildFeatureSet when requested ids
	// are not features of the genome.
	ErrFeaturesNotFound = errors.New("genome: some features are not found")
)

// Feature is one genome feature as the engine sees it.
type Feature struct {
	ID       string   `json:"id"`
	Aliases  []string `json:"aliases,omitempty"`
	Function string   `json:"function,omitempty"`
}

// Genome is a named, ordered list of features.
type Genome struct {
	ID             string    `json:"id"`
	ScientificName string    `json:"scientific_name,omitempty"`
	Features       []Feature `json:"features"`
}

// FeatureIndex maps each feature id to its feature. With duplicate ids the
// first occurrence wins.
func (g *Genome) FeatureIndex() map[string]*Feature {
	idx := make(map[string]*Feature, len(g.Features))
	for i := range g.Features {
		id := g.Features[i].ID
		if _, seen := idx[id]; !seen {
			idx[id] = &g.Features[i]
		}
	}

	return idx
}

// FeatureMapping maps matrix row ids to genome feature ids, in the order the
// reconciliation produced them.
type FeatureMapping = ordered.Map[string]

// FeatureSet is a collection of feature ids, each with the genome references
// it was taken from.
type FeatureSet struct {
	Description string                 `json:"description"`
	Elements    *ordered.Map[[]string] `json:"elements"`
}
