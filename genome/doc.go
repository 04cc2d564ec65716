// Package genome connects matrix rows to genome features.
//
// It provides:
//
//   - Feature and Genome, the subset of a genome object the engine reads
//     (ids, aliases, function).
//   - Reconcile, which maps matrix row ids to feature ids by exact id match
//     first and alias match second.
//   - Feature sets: parsing of free-text id lists and merging into an
//     existing set (BuildFeatureSet).
//   - Source, the collaborator that loads a genome by reference, with a
//     static in-memory implementation for tests and tools.
//
// Reconciliation never fails on partial coverage; callers that need a
// minimum use Coverage and decide for themselves.
package genome
