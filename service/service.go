// Package service implements the featval workflows: load objects from the
// store, run the matrix/cluster/genome engines, save results with provenance.
//
// Every exported method maps 1:1 onto an RPC method of the HTTP server and
// returns either a complete result or a single error.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/featval/cluster"
	"github.com/katalvlaran/featval/config"
	"github.com/katalvlaran/featval/genome"
	"github.com/katalvlaran/featval/store"
)

// ServiceName is recorded in provenance actions.
const ServiceName = "KBaseFeatureValues"

var tracer = otel.Tracer("featval.service")

var validate = validator.New()

// Service runs the workflows. It holds no per-request state and is safe for
// concurrent use when its collaborators are.
type Service struct {
	cfg       config.Config
	store     store.Store
	genomes   genome.Source
	clusterer cluster.Clusterer
	logger    *slog.Logger
	now       func() time.Time
}

// New wires a Service. A nil genome source reads genomes from st; a nil
// logger uses slog.Default().
func New(cfg config.Config, st store.Store, genomes genome.Source, c cluster.Clusterer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if genomes == nil {
		genomes = genome.StoreSource{Store: st}
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		genomes:   genomes,
		clusterer: c,
		logger:    logger.With(slog.String("component", "service")),
		now:       time.Now,
	}
}

// startSpan opens a workflow span tagged with the input reference.
func startSpan(ctx context.Context, name, input string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Service."+name,
		trace.WithAttributes(attribute.String("featval.input_ref", input)),
	)
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func validateParams(p any) error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s is %s", ErrInvalidParams, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	return nil
}

// provenance builds the single provenance action of a saved object.
func (s *Service) provenance(method, description string, inputs ...string) []store.ProvenanceAction {
	var in []string
	for _, ref := range inputs {
		if ref != "" {
			in = append(in, ref)
		}
	}

	return []store.ProvenanceAction{{
		Service:      ServiceName,
		Method:       method,
		Description:  description,
		InputObjects: in,
		Time:         s.now().UTC(),
	}}
}

// loadMatrix fetches and decodes an ExpressionMatrix.
func (s *Service) loadMatrix(ctx context.Context, ref string) (*ExpressionMatrix, *store.Object, error) {
	em, obj, err := store.Load[ExpressionMatrix](ctx, s.store, ref)
	if err != nil {
		return nil, nil, err
	}
	if em.Data == nil {
		return nil, nil, fmt.Errorf("%s: %w", ref, ErrNoMatrixData)
	}

	return em, obj, nil
}

// workDir creates a fresh per-request scratch directory for the clusterer and
// returns it with its cleanup.
func (s *Service) workDir(method string) (string, func(), error) {
	dir := filepath.Join(s.cfg.ScratchDir, method+"-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", nil, fmt.Errorf("service: scratch dir: %w", err)
	}

	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("scratch cleanup failed", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}, nil
}

func (s *Service) requireClusterer() error {
	if s.clusterer == nil {
		return cluster.ErrNilClusterer
	}

	return nil
}
