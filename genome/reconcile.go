package genome

import "github.com/katalvlaran/featval/ordered"

// Reconcile maps matrix row ids onto genome feature ids.
//
// Algorithm:
//  1. Exact pass: for every feature in order, if its id is an unmatched row
//     id, map id → id and mark the row matched.
//  2. Alias pass: only when rows remain unmatched, for every feature in order
//     and every alias in order, if the alias is an unmatched row id, map
//     alias → feature id and mark it matched.
//  3. Rows still unmatched are absent from the result.
//
// Exact matches always win over aliases, and within a pass the first feature
// in iteration order wins. The mapping is rebuilt from scratch on every call.
//
// Complexity: O(R + F + A) for R rows, F features and A aliases.
func Reconcile(rowIDs []string, features []Feature) *FeatureMapping {
	unmatched := make(map[string]struct{}, len(rowIDs))
	for _, id := range rowIDs {
		unmatched[id] = struct{}{}
	}
	mapping := ordered.New[string](len(unmatched))

	for i := range features {
		id := features[i].ID
		if _, ok := unmatched[id]; ok {
			mapping.Set(id, id)
			delete(unmatched, id)
		}
	}
	if len(unmatched) == 0 {
		return mapping
	}

	for i := range features {
		for _, alias := range features[i].Aliases {
			if _, ok := unmatched[alias]; ok {
				mapping.Set(alias, features[i].ID)
				delete(unmatched, alias)
			}
		}
	}

	return mapping
}

// Coverage returns the fraction of distinct row ids present in mapping.
// An empty row list has full coverage.
func Coverage(mapping *FeatureMapping, rowIDs []string) float64 {
	distinct := make(map[string]struct{}, len(rowIDs))
	for _, id := range rowIDs {
		distinct[id] = struct{}{}
	}
	if len(distinct) == 0 {
		return 1
	}
	hit := 0
	for id := range distinct {
		if mapping.Has(id) {
			hit++
		}
	}

	return float64(hit) / float64(len(distinct))
}
