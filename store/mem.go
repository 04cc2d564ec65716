package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store. Safe for concurrent use.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][]*Object // "ws/name" → versions, oldest first
	now     func() time.Time
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]*Object), now: time.Now}
}

// Get implements Store.
func (s *MemStore) Get(ctx context.Context, ref string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.objects[Ref{Workspace: r.Workspace, Name: r.Name}.String()]
	switch {
	case len(versions) == 0:
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	case r.Version == 0:
		return cloneObject(versions[len(versions)-1]), nil
	case r.Version > len(versions):
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}

	return cloneObject(versions[r.Version-1]), nil
}

// Save implements Store.
func (s *MemStore) Save(ctx context.Context, ws, name, typ string, data any, provenance []ProvenanceAction) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	raw, err := encode(ws, name, data)
	if err != nil {
		return ObjectInfo{}, err
	}
	key := Ref{Workspace: ws, Name: name}.String()

	s.mu.Lock()
	defer s.mu.Unlock()
	ver := len(s.objects[key]) + 1
	info := ObjectInfo{
		ID:        uuid.NewString(),
		Ref:       Ref{Workspace: ws, Name: name, Version: ver}.String(),
		Workspace: ws,
		Name:      name,
		Version:   ver,
		Type:      typ,
		SavedAt:   s.now().UTC(),
	}
	s.objects[key] = append(s.objects[key], &Object{
		Info:       info,
		Data:       raw,
		Provenance: append([]ProvenanceAction(nil), provenance...),
	})

	return info, nil
}

func cloneObject(o *Object) *Object {
	c := *o
	c.Data = append([]byte(nil), o.Data...)
	c.Provenance = append([]ProvenanceAction(nil), o.Provenance...)

	return &c
}
