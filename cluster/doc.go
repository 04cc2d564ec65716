// Package cluster turns raw label vectors produced by an external clustering
// routine into ID-addressable cluster objects.
//
// The clustering itself (K-means, hierarchical clustering, dendrogram cuts,
// K estimation) is not computed here. It is reached through the Clusterer
// interface so the assembly logic can be exercised against StubClusterer in
// tests and against a subprocess implementation (package clusterexec) in
// production.
//
// Overview:
//
//   - Assemble: label vector + row ids → ordered []LabeledCluster.
//   - Reassemble: re-cut a stored dendrogram at a new height via a Clusterer,
//     then Assemble the new labels.
//   - WriteTSV / WriteSIF: flat export of an assembled clustering.
//
// Cluster order is first-seen label order, never sorted by label value.
// Negative labels mean "unassigned" and are skipped. Quality arrays
// (meancor, msec) are indexed by rank = label - minLabel, and NaN quality
// values are reported as nil ("not computed").
package cluster
