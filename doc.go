// Package featval is a feature-by-condition matrix engine: statistics,
// pairwise correlation, imputation, clustering assembly and genome
// reconciliation over numeric matrices whose rows are genome features and
// whose columns are experimental conditions.
//
// What is inside?
//
//	• Matrix model: ordered row/column ids, nullable cells (missing ≠ NaN)
//	• Statistics: per-item and per-set avg/min/max/std/missing over selections
//	• Pairwise comparison: Pearson correlation with pairwise missing exclusion
//	• Imputation: global-mean fill of missing cells
//	• Clustering: label vectors → ordered clusters with quality scores,
//	  dendrogram re-cuts through an external clusterer
//	• Reconciliation: matrix rows → genome features by id, then by alias
//
// Layout:
//
//	matrix/      FeatureMatrix, index resolution, statistics, pairwise, imputation
//	ordered/     insertion-ordered string-keyed map used for mappings
//	cluster/     LabelVector, Assemble, Reassemble, Clusterer, TSV/SIF export
//	genome/      Genome, Reconcile, feature sets, genome sources
//	tsv/         TSV matrix codec
//	store/       versioned object store (BadgerDB and in-memory)
//	clusterexec/ Clusterer backed by an external executable
//	config/      YAML configuration
//	service/     workflows: load, compute, save with provenance
//	server/      HTTP RPC surface (gin, Prometheus, OpenTelemetry)
//	cmd/featval  serve / import-tsv / export-tsv / export-clusters / stat / config
//
// Quick example:
//
//	m, _ := matrix.NewFeatureMatrix(
//		[]string{"g1", "g2"}, []string{"c1", "c2"},
//		[][]*float64{{&a, &b}, {&c, nil}})
//	stats, _ := matrix.RowStats(m, nil, nil, false)
//
// The engine packages (matrix, ordered, cluster, genome, tsv) are synchronous
// and hold no shared state; only the subprocess clusterer and the store do I/O.
package featval
