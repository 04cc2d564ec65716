package genome

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/katalvlaran/featval/store"
)

// GenomeType is the store type tag of a persisted Genome.
const GenomeType = "KBaseGenomes.Genome"

// Source loads genomes by reference.
type Source interface {
	LoadGenome(ctx context.Context, ref string) (*Genome, error)
}

// StaticSource is an in-memory Source. Safe for concurrent use.
type StaticSource struct {
	mu      sync.RWMutex
	genomes map[string]*Genome
}

// NewStaticSource returns an empty StaticSource.
func NewStaticSource() *StaticSource {
	return &StaticSource{genomes: make(map[string]*Genome)}
}

// Put registers g under ref, replacing any previous genome.
func (s *StaticSource) Put(ref string, g *Genome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genomes[ref] = g
}

// LoadGenome implements Source.
func (s *StaticSource) LoadGenome(ctx context.Context, ref string) (*Genome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.genomes[ref]
	if !ok {
		return nil, fmt.Errorf("%q: %w", ref, ErrGenomeNotFound)
	}

	return g, nil
}

// StoreSource loads genomes persisted as JSON objects in a store.Store.
type StoreSource struct {
	Store store.Store
}

// LoadGenome implements Source. A missing object is reported as
// ErrGenomeNotFound wrapping the store error.
func (s StoreSource) LoadGenome(ctx context.Context, ref string) (*Genome, error) {
	g, _, err := store.Load[Genome](ctx, s.Store, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrGenomeNotFound, err)
		}
		return nil, err
	}

	return g, nil
}
