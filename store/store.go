// Package store persists typed, versioned JSON objects addressed by
// workspace references ("ws/name" for the latest version, "ws/name/ver" for
// a fixed one).
//
// Two implementations are provided: MemStore for tests and one-shot CLI runs,
// and BadgerStore, an embedded BadgerDB-backed store for the server.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a reference resolves to no object.
	ErrNotFound = errors.New("store: object not found")

	// ErrInvalidRef is returned for malformed references or names.
	ErrInvalidRef = errors.New("store: invalid reference")
)

// Store is the object-store collaborator.
type Store interface {
	// Get loads the object addressed by ref.
	Get(ctx context.Context, ref string) (*Object, error)

	// Save stores data (JSON-encoded) as the next version of ws/name.
	Save(ctx context.Context, ws, name, typ string, data any, provenance []ProvenanceAction) (ObjectInfo, error)
}

// Ref is a parsed object reference. Version 0 means "latest".
type Ref struct {
	Workspace string
	Name      string
	Version   int
}

// ParseRef parses "ws/name" or "ws/name/ver".
func ParseRef(s string) (Ref, error) {
	parts := strings.Split(s, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return Ref{}, fmt.Errorf("%q: %w", s, ErrInvalidRef)
	}
	r := Ref{Workspace: parts[0], Name: parts[1]}
	if err := validName(r.Workspace); err != nil {
		return Ref{}, fmt.Errorf("%q: %w", s, err)
	}
	if err := validName(r.Name); err != nil {
		return Ref{}, fmt.Errorf("%q: %w", s, err)
	}
	if len(parts) == 3 {
		v, err := strconv.Atoi(parts[2])
		if err != nil || v < 1 {
			return Ref{}, fmt.Errorf("%q: bad version: %w", s, ErrInvalidRef)
		}
		r.Version = v
	}

	return r, nil
}

// String renders the reference; the version is omitted when 0.
func (r Ref) String() string {
	if r.Version == 0 {
		return r.Workspace + "/" + r.Name
	}

	return r.Workspace + "/" + r.Name + "/" + strconv.Itoa(r.Version)
}

func validName(s string) error {
	if s == "" || strings.ContainsAny(s, "/ \t\n") {
		return ErrInvalidRef
	}

	return nil
}

// ObjectInfo describes one stored object version.
type ObjectInfo struct {
	ID        string    `json:"id"`
	Ref       string    `json:"ref"`
	Workspace string    `json:"workspace"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	Type      string    `json:"type"`
	SavedAt   time.Time `json:"saved_at"`
}

// ProvenanceAction records how an object was produced.
type ProvenanceAction struct {
	Service      string    `json:"service"`
	Method       string    `json:"method"`
	Description  string    `json:"description,omitempty"`
	InputObjects []string  `json:"input_ws_objects,omitempty"`
	Time         time.Time `json:"time"`
}

// Object is a stored object: its info, raw JSON data and provenance.
type Object struct {
	Info       ObjectInfo         `json:"info"`
	Data       json.RawMessage    `json:"data"`
	Provenance []ProvenanceAction `json:"provenance,omitempty"`
}

// Decode unmarshals the object data into v.
func (o *Object) Decode(v any) error {
	if err := json.Unmarshal(o.Data, v); err != nil {
		return fmt.Errorf("store: decode %s (%s): %w", o.Info.Ref, o.Info.Type, err)
	}

	return nil
}

// Load fetches ref from s and decodes its data into a new T.
func Load[T any](ctx context.Context, s Store, ref string) (*T, *Object, error) {
	obj, err := s.Get(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	v := new(T)
	if err = obj.Decode(v); err != nil {
		return nil, nil, err
	}

	return v, obj, nil
}

// encode validates ws/name and marshals data.
func encode(ws, name string, data any) ([]byte, error) {
	if err := validName(ws); err != nil {
		return nil, fmt.Errorf("workspace %q: %w", ws, err)
	}
	if err := validName(name); err != nil {
		return nil, fmt.Errorf("name %q: %w", name, err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("store: encode %s/%s: %w", ws, name, err)
	}

	return raw, nil
}
