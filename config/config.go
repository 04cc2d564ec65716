// Package config loads the featval configuration from YAML.
//
// There is no process-wide instance: Load returns a value that the caller
// passes explicitly to every constructor that needs it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Store      StoreConfig     `yaml:"store"`
	ScratchDir string          `yaml:"scratch_dir" validate:"required"`
	Clusterer  ClustererConfig `yaml:"clusterer"`
	Reconcile  ReconcileConfig `yaml:"reconcile"`
	Log        LogConfig       `yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0s"`
}

// StoreConfig configures the object store.
type StoreConfig struct {
	Path     string `yaml:"path" validate:"required_unless=InMemory true"`
	InMemory bool   `yaml:"in_memory"`
}

// ClustererConfig configures the external clustering subprocess.
type ClustererConfig struct {
	// Command is the executable, resolved against BinDir when relative.
	Command     string        `yaml:"command" validate:"required"`
	BinDir      string        `yaml:"bin_dir"`
	MaxParallel int           `yaml:"max_parallel" validate:"gte=1,lte=64"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0s"`
}

// ReconcileConfig configures feature reconciliation.
type ReconcileConfig struct {
	// MinCoverage is the minimum fraction of matrix rows that must map onto
	// genome features; 0 disables the check.
	MinCoverage float64 `yaml:"min_coverage" validate:"gte=0,lte=1"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Default returns a configuration that works out of the box on a developer
// machine: in-memory store, scratch space under the OS temp dir.
func Default() Config {
	return Config{
		Server:     ServerConfig{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		Store:      StoreConfig{InMemory: true},
		ScratchDir: filepath.Join(os.TempDir(), "featval"),
		Clusterer: ClustererConfig{
			Command:     "run_clusters",
			MaxParallel: 1,
			Timeout:     30 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config: %s fails %q: %w", verrs[0].Namespace(), verrs[0].Tag(), err)
		}
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// Load reads path over Default and validates the result. Unknown keys are
// rejected. An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if cfg, err = Parse(data); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Marshal renders cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// SlogLevel maps Log.Level onto slog.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}

	return lvl
}

// ClustererPath returns the clusterer executable path.
func (c Config) ClustererPath() string {
	if c.Clusterer.BinDir == "" || filepath.IsAbs(c.Clusterer.Command) {
		return c.Clusterer.Command
	}

	return filepath.Join(c.Clusterer.BinDir, c.Clusterer.Command)
}
