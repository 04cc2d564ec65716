package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/katalvlaran/featval/service"
	"github.com/katalvlaran/featval/store"
)

// RefRequest addresses a single stored object.
type RefRequest struct {
	InputData string `json:"input_data" binding:"required"`
}

// TsvImportRequest carries a TSV document inline with its import parameters.
type TsvImportRequest struct {
	service.TsvFileToMatrixParams
	TSV string `json:"tsv" binding:"required"`
}

// Handlers adapts the service workflows to gin.
type Handlers struct {
	svc    *service.Service
	logger *slog.Logger
}

// NewHandlers returns Handlers over svc. A nil logger uses slog.Default().
func NewHandlers(svc *service.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handlers{svc: svc, logger: logger}
}

// rpc builds a handler that binds a JSON body into P, calls fn and renders
// the result as JSON.
func rpc[P, R any](h *Handlers, name string, fn func(context.Context, P) (R, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := h.logger.With(slog.String("handler", name))

		var req P
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("invalid request body", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error(), Code: "INVALID_REQUEST"})
			return
		}
		res, err := fn(c.Request.Context(), req)
		if err != nil {
			h.fail(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

func (h *Handlers) fail(c *gin.Context, logger *slog.Logger, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", slog.String("error", err.Error()), slog.String("code", code))
	} else {
		logger.Info("request rejected", slog.String("error", err.Error()), slog.String("code", code))
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": service.ServiceName})
}

// HandleGetMatrixDescriptor handles POST /v1/get_matrix_descriptor.
func (h *Handlers) HandleGetMatrixDescriptor() gin.HandlerFunc {
	return rpc(h, "get_matrix_descriptor", func(ctx context.Context, r RefRequest) (service.MatrixDescriptor, error) {
		return h.svc.GetMatrixDescriptor(ctx, r.InputData)
	})
}

// HandleGetMatrixStat handles POST /v1/get_matrix_stat.
func (h *Handlers) HandleGetMatrixStat() gin.HandlerFunc {
	return rpc(h, "get_matrix_stat", func(ctx context.Context, r RefRequest) (service.MatrixStat, error) {
		return h.svc.GetMatrixStat(ctx, r.InputData)
	})
}

// HandleTsvFileToMatrix handles POST /v1/tsv_file_to_matrix.
func (h *Handlers) HandleTsvFileToMatrix() gin.HandlerFunc {
	return rpc(h, "tsv_file_to_matrix", func(ctx context.Context, r TsvImportRequest) (store.ObjectInfo, error) {
		return h.svc.TsvFileToMatrix(ctx, strings.NewReader(r.TSV), r.TsvFileToMatrixParams)
	})
}

// HandleMatrixToTsv handles GET /v1/matrix_to_tsv?ref=...
//
// Response:
//
//	200 OK: text/tab-separated-values
//	404 Not Found: unknown reference
func (h *Handlers) HandleMatrixToTsv(c *gin.Context) {
	logger := h.logger.With(slog.String("handler", "matrix_to_tsv"))
	var buf bytes.Buffer
	if err := h.svc.MatrixToTsv(c.Request.Context(), c.Query("ref"), &buf); err != nil {
		h.fail(c, logger, err)
		return
	}
	c.Data(http.StatusOK, "text/tab-separated-values; charset=utf-8", buf.Bytes())
}

// HandleClustersToFile handles GET /v1/clusters_to_file?ref=...&format=tsv|sif.
func (h *Handlers) HandleClustersToFile(c *gin.Context) {
	logger := h.logger.With(slog.String("handler", "clusters_to_file"))
	var buf bytes.Buffer
	if err := h.svc.ClustersToFile(c.Request.Context(), c.Query("ref"), c.Query("format"), &buf); err != nil {
		h.fail(c, logger, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}
