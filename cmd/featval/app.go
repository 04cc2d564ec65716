package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/katalvlaran/featval/clusterexec"
	"github.com/katalvlaran/featval/config"
	"github.com/katalvlaran/featval/service"
	"github.com/katalvlaran/featval/store"
)

// app holds the wired collaborators of one command run.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	svc    *service.Service

	closers []func(context.Context) error
}

// newApp loads the configuration and wires logger, tracer, store, clusterer
// and service. Callers must call close.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: newLogger(cfg, os.Stderr)}
	slog.SetDefault(a.logger)

	if traceStdout {
		shutdown, err := initTracer()
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, shutdown)
	}

	bcfg := store.DefaultBadgerConfig(cfg.Store.Path)
	if cfg.Store.InMemory {
		bcfg = store.InMemoryBadgerConfig()
	}
	bcfg.Logger = a.logger
	st, err := store.OpenBadger(bcfg)
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return st.Close() })

	if err = os.MkdirAll(cfg.ScratchDir, 0o750); err != nil {
		_ = a.close(ctx)
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	runner := clusterexec.New(clusterexec.FromConfig(cfg), a.logger.With(slog.String("component", "clusterexec")))
	a.svc = service.New(cfg, st, nil, runner, a.logger)

	return a, nil
}

// close releases everything newApp opened, last opened first.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}

	return errors.Join(errs...)
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

// initTracer installs a tracer provider exporting spans to stderr.
func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

// output opens outputPath, or the command's stdout when it is empty.
func output(cmd *cobra.Command) (io.WriteCloser, error) {
	if outputPath == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}

	return os.Create(outputPath)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
