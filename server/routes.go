package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers every RPC method under /v1 plus /health and /metrics.
func SetupRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/health", h.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		// Clustering
		v1.POST("/estimate_k", rpc(h, "estimate_k", h.svc.EstimateK))
		v1.POST("/estimate_k_new", rpc(h, "estimate_k_new", h.svc.EstimateKNew))
		v1.POST("/cluster_k_means", rpc(h, "cluster_k_means", h.svc.ClusterKMeans))
		v1.POST("/cluster_hierarchical", rpc(h, "cluster_hierarchical", h.svc.ClusterHierarchical))
		v1.POST("/clusters_from_dendrogram", rpc(h, "clusters_from_dendrogram", h.svc.ClustersFromDendrogram))

		// Matrix and feature set construction
		v1.POST("/correct_matrix", rpc(h, "correct_matrix", h.svc.CorrectMatrix))
		v1.POST("/reconnect_matrix_to_genome", rpc(h, "reconnect_matrix_to_genome", h.svc.ReconnectMatrixToGenome))
		v1.POST("/build_feature_set", rpc(h, "build_feature_set", h.svc.BuildFeatureSet))

		// Statistics
		v1.POST("/get_matrix_descriptor", h.HandleGetMatrixDescriptor())
		v1.POST("/get_matrix_stat", h.HandleGetMatrixStat())
		v1.POST("/get_submatrix_stat", rpc(h, "get_submatrix_stat", h.svc.GetSubmatrixStat))
		v1.POST("/get_matrix_rows_stat", rpc(h, "get_matrix_rows_stat", h.svc.GetMatrixRowsStat))
		v1.POST("/get_matrix_columns_stat", rpc(h, "get_matrix_columns_stat", h.svc.GetMatrixColumnsStat))
		v1.POST("/get_matrix_row_sets_stat", rpc(h, "get_matrix_row_sets_stat", h.svc.GetMatrixRowSetsStat))
		v1.POST("/get_matrix_column_sets_stat", rpc(h, "get_matrix_column_sets_stat", h.svc.GetMatrixColumnSetsStat))

		// Transfer
		v1.POST("/tsv_file_to_matrix", h.HandleTsvFileToMatrix())
		v1.GET("/matrix_to_tsv", h.HandleMatrixToTsv)
		v1.GET("/clusters_to_file", h.HandleClustersToFile)
	}
}
