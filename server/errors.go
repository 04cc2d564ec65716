package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/katalvlaran/featval/cluster"
	"github.com/katalvlaran/featval/clusterexec"
	"github.com/katalvlaran/featval/genome"
	"github.com/katalvlaran/featval/matrix"
	"github.com/katalvlaran/featval/service"
	"github.com/katalvlaran/featval/store"
	"github.com/katalvlaran/featval/tsv"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error class.
	Code string `json:"code"`
}

// statusFor maps an error onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, matrix.ErrUnknownIdentifier):
		return http.StatusNotFound, "UNKNOWN_IDENTIFIER"
	case errors.Is(err, store.ErrNotFound), errors.Is(err, genome.ErrGenomeNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, matrix.ErrDimensionMismatch):
		return http.StatusBadRequest, "DIMENSION_MISMATCH"
	case errors.Is(err, matrix.ErrOutOfRange):
		return http.StatusBadRequest, "OUT_OF_RANGE"
	case errors.Is(err, matrix.ErrUnsupportedOperation):
		return http.StatusBadRequest, "UNSUPPORTED_OPERATION"
	case errors.Is(err, genome.ErrFeaturesNotFound):
		return http.StatusBadRequest, "FEATURES_NOT_FOUND"
	case errors.Is(err, service.ErrInvalidParams),
		errors.Is(err, cluster.ErrBadParams),
		errors.Is(err, cluster.ErrEmptyDendrogram),
		errors.Is(err, store.ErrInvalidRef),
		errors.Is(err, tsv.ErrNoHeader),
		errors.Is(err, tsv.ErrBadCell),
		errors.Is(err, matrix.ErrNaNInf):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, service.ErrLowCoverage):
		return http.StatusUnprocessableEntity, "LOW_COVERAGE"
	case errors.Is(err, clusterexec.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	case errors.Is(err, cluster.ErrNilClusterer):
		return http.StatusServiceUnavailable, "NO_CLUSTERER"
	}

	return http.StatusInternalServerError, "INTERNAL"
}
