package service

import (
	"errors"

	"github.com/katalvlaran/featval/cluster"
	"github.com/katalvlaran/featval/genome"
	"github.com/katalvlaran/featval/matrix"
	"github.com/katalvlaran/featval/ordered"
)

// Store type tags.
const (
	TypeExpressionMatrix = "KBaseFeatureValues.ExpressionMatrix"
	TypeFeatureClusters  = "KBaseFeatureValues.FeatureClusters"
	TypeEstimateKResult  = "KBaseFeatureValues.EstimateKResult"
	TypeFeatureSet       = "KBaseCollections.FeatureSet"
)

// Defaults applied by TsvFileToMatrix.
const (
	DefaultDataType  = "unknown"
	DefaultDataScale = "1.0"
)

// AlgorithmScikitLearn selects the K-means variant whose labels are 0-based
// and whose qualities are computed in a second collaborator call.
const AlgorithmScikitLearn = "Python Scikit-learn"

var (
	// ErrInvalidParams wraps request validation failures.
	ErrInvalidParams = errors.New("service: invalid parameters")

	// ErrLowCoverage is returned when too few matrix rows map onto genome
	// features.
	ErrLowCoverage = errors.New("service: feature mapping coverage below minimum")

	// ErrNoMatrixData is returned for a stored matrix object without data.
	ErrNoMatrixData = errors.New("service: matrix object has no data")
)

// ExpressionMatrix is the persisted matrix object: numeric data plus the
// metadata describing it.
type ExpressionMatrix struct {
	Type             string                 `json:"type"`
	Scale            string                 `json:"scale"`
	RowNormalization string                 `json:"row_normalization,omitempty"`
	ColNormalization string                 `json:"col_normalization,omitempty"`
	Description      string                 `json:"description,omitempty"`
	GenomeRef        string                 `json:"genome_ref,omitempty"`
	FeatureMapping   *genome.FeatureMapping `json:"feature_mapping,omitempty"`
	ConditionMapping *ordered.Map[string]   `json:"condition_mapping,omitempty"`
	Data             *matrix.FeatureMatrix  `json:"data"`
}

// MatrixDescriptor summarises a stored matrix.
type MatrixDescriptor struct {
	MatrixID          string `json:"matrix_id"`
	MatrixName        string `json:"matrix_name"`
	MatrixDescription string `json:"matrix_description"`
	GenomeID          string `json:"genome_id,omitempty"`
	GenomeName        string `json:"genome_name,omitempty"`
	RowsCount         int    `json:"rows_count"`
	ColumnsCount      int    `json:"columns_count"`
	Scale             string `json:"scale"`
	Type              string `json:"type"`
	RowNormalization  string `json:"row_normalization"`
	ColNormalization  string `json:"col_normalization"`
}

// ItemDescriptor describes one row or column.
type ItemDescriptor struct {
	Index       int               `json:"index"`
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Properties  map[string]string `json:"properties,omitempty"`
}

// MatrixStat is the whole-matrix statistics report.
type MatrixStat struct {
	MtxDescriptor     MatrixDescriptor  `json:"mtx_descriptor"`
	RowDescriptors    []ItemDescriptor  `json:"row_descriptors"`
	ColumnDescriptors []ItemDescriptor  `json:"column_descriptors"`
	RowStats          []matrix.ItemStat `json:"row_stats"`
	ColumnStats       []matrix.ItemStat `json:"column_stats"`
}

// SubmatrixStat is the report on a row/column selection. Blocks whose flag
// was off are nil.
type SubmatrixStat struct {
	MtxDescriptor          MatrixDescriptor           `json:"mtx_descriptor"`
	RowDescriptors         []ItemDescriptor           `json:"row_descriptors"`
	ColumnDescriptors      []ItemDescriptor           `json:"column_descriptors"`
	RowSetStats            *matrix.ItemSetStat        `json:"row_set_stats,omitempty"`
	ColumnSetStat          *matrix.ItemSetStat        `json:"column_set_stat,omitempty"`
	MtxRowSetStat          *matrix.ItemSetStat        `json:"mtx_row_set_stat,omitempty"`
	MtxColumnSetStat       *matrix.ItemSetStat        `json:"mtx_column_set_stat,omitempty"`
	RowPairwiseCorrelation *matrix.PairwiseComparison `json:"row_pairwise_correlation,omitempty"`
	Values                 matrix.Grid                `json:"values,omitempty"`
}

// EstimateKParams requests a K estimation over a stored matrix.
type EstimateKParams struct {
	InputMatrix       string `json:"input_matrix" validate:"required"`
	OutWorkspace      string `json:"out_workspace" validate:"required"`
	OutEstimateResult string `json:"out_estimate_result" validate:"required"`
	cluster.EstimateKParams
}

// EstimateKNewParams requests a criterion-based K estimation.
type EstimateKNewParams struct {
	InputMatrix       string `json:"input_matrix" validate:"required"`
	OutWorkspace      string `json:"out_workspace" validate:"required"`
	OutEstimateResult string `json:"out_estimate_result" validate:"required"`
	cluster.EstimateKNewParams
}

// ClusterKMeansParams requests a K-means clustering.
type ClusterKMeansParams struct {
	InputData       string `json:"input_data" validate:"required"`
	OutWorkspace    string `json:"out_workspace" validate:"required"`
	OutClustersetID string `json:"out_clusterset_id" validate:"required"`
	cluster.KMeansParams
}

// ClusterHierarchicalParams requests a hierarchical clustering.
type ClusterHierarchicalParams struct {
	InputData       string `json:"input_data" validate:"required"`
	OutWorkspace    string `json:"out_workspace" validate:"required"`
	OutClustersetID string `json:"out_clusterset_id" validate:"required"`
	cluster.HierarchicalParams
}

// ClustersFromDendrogramParams re-cuts a stored hierarchical clustering.
type ClustersFromDendrogramParams struct {
	InputData       string  `json:"input_data" validate:"required"`
	HeightCutoff    float64 `json:"feature_height_cutoff"`
	OutWorkspace    string  `json:"out_workspace" validate:"required"`
	OutClustersetID string  `json:"out_clusterset_id" validate:"required"`
}

// CorrectMatrixParams requests a value correction. OutMatrixID defaults to
// the input object name.
type CorrectMatrixParams struct {
	InputData     string `json:"input_data" validate:"required"`
	TransformType string `json:"transform_type"`
	OutWorkspace  string `json:"out_workspace" validate:"required"`
	OutMatrixID   string `json:"out_matrix_id"`
}

// ReconnectMatrixToGenomeParams requests a feature re-mapping against a genome.
// OutMatrixID defaults to the input object name.
type ReconnectMatrixToGenomeParams struct {
	InputData    string `json:"input_data" validate:"required"`
	GenomeRef    string `json:"genome_ref" validate:"required"`
	OutWorkspace string `json:"out_workspace" validate:"required"`
	OutMatrixID  string `json:"out_matrix_id"`
}

// BuildFeatureSetParams requests a feature set from free-text id lists.
type BuildFeatureSetParams struct {
	Genome           string `json:"genome" validate:"required"`
	FeatureIDs       string `json:"feature_ids"`
	FeatureIDsCustom string `json:"feature_ids_custom"`
	BaseFeatureSet   string `json:"base_feature_set"`
	Description      string `json:"description"`
	OutWorkspace     string `json:"out_workspace" validate:"required"`
	OutputFeatureSet string `json:"output_feature_set" validate:"required"`
}

// GetSubmatrixStatParams selects rows/columns (indices win over ids, empty
// means all) and switches report blocks on.
type GetSubmatrixStatParams struct {
	InputData                string   `json:"input_data" validate:"required"`
	RowIndices               []int    `json:"row_indices"`
	RowIDs                   []string `json:"row_ids"`
	ColumnIndices            []int    `json:"column_indices"`
	ColumnIDs                []string `json:"column_ids"`
	FlRowSetStats            bool     `json:"fl_row_set_stats"`
	FlColumnSetStat          bool     `json:"fl_column_set_stat"`
	FlMtxRowSetStat          bool     `json:"fl_mtx_row_set_stat"`
	FlMtxColumnSetStat       bool     `json:"fl_mtx_column_set_stat"`
	FlRowPairwiseCorrelation bool     `json:"fl_row_pairwise_correlation"`
	FlValues                 bool     `json:"fl_values"`
}

// GetMatrixItemsStatParams requests per-item statistics.
type GetMatrixItemsStatParams struct {
	InputData   string `json:"input_data" validate:"required"`
	IndicesFor  []int  `json:"item_indices_for"`
	IndicesOn   []int  `json:"item_indices_on"`
	FlIndicesOn bool   `json:"fl_indices_on"`
}

// GetMatrixSetStatParams is one set-statistic request against a matrix.
type GetMatrixSetStatParams struct {
	InputData string `json:"input_data" validate:"required"`
	matrix.SetStatParams
}

// TsvFileToMatrixParams configures a TSV import.
type TsvFileToMatrixParams struct {
	GenomeRef         string `json:"genome_ref"`
	FillMissingValues bool   `json:"fill_missing_values"`
	DataType          string `json:"data_type"`
	DataScale         string `json:"data_scale"`
	Description       string `json:"description"`
	OutputWsName      string `json:"output_ws_name" validate:"required"`
	OutputObjName     string `json:"output_obj_name" validate:"required"`
}
