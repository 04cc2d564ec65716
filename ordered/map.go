// SPDX-License-Identifier: MIT

// Package ordered provides an insertion-ordered string-keyed map whose JSON
// form is an object with keys in insertion order. Cluster membership
// (feature id → row position) and feature mappings (row id → feature id) are
// both order-sensitive and are stored through it.
//
// Map is a thin nil-safe wrapper over github.com/wk8/go-ordered-map/v2 that
// fixes the key type to string and keeps a zero value ready to use.
package ordered

import (
	"bytes"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrNotObject is returned when decoding JSON that is not an object.
var ErrNotObject = errors.New("ordered: JSON value is not an object")

// Map is an insertion-ordered map. Overwriting a key keeps its position.
// The zero value is ready to use. Copies share storage. Not safe for
// concurrent mutation.
type Map[V any] struct {
	om *orderedmap.OrderedMap[string, V]
}

// New returns an empty Map with room for n entries.
func New[V any](n int) *Map[V] {
	return &Map[V]{om: orderedmap.New[string, V](n)}
}

func (m *Map[V]) lazyInit() {
	if m.om == nil {
		m.om = orderedmap.New[string, V]()
	}
}

// Set stores v under k, appending k when it is new.
func (m *Map[V]) Set(k string, v V) {
	m.lazyInit()
	m.om.Set(k, v)
}

// Get returns the value for k.
func (m *Map[V]) Get(k string) (V, bool) {
	if m == nil || m.om == nil {
		var zero V
		return zero, false
	}

	return m.om.Get(k)
}

// Has reports whether k is present.
func (m *Map[V]) Has(k string) bool {
	_, ok := m.Get(k)

	return ok
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	if m == nil || m.om == nil {
		return 0
	}

	return m.om.Len()
}

// Keys returns the keys in insertion order (a copy).
func (m *Map[V]) Keys() []string {
	if m == nil || m.om == nil {
		return nil
	}
	keys := make([]string, 0, m.om.Len())
	for p := m.om.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}

	return keys
}

// Range calls fn for every entry in insertion order until fn returns false.
func (m *Map[V]) Range(fn func(k string, v V) bool) {
	if m == nil || m.om == nil {
		return
	}
	for p := m.om.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

// MarshalJSON writes an object with keys in insertion order.
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	if m.om == nil {
		return []byte("{}"), nil
	}
	raw, err := m.om.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("ordered: %w", err)
	}

	return raw, nil
}

// UnmarshalJSON reads an object keeping document key order. A repeated key
// keeps its first position and its last value.
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotObject
	}
	om := orderedmap.New[string, V]()
	if err := om.UnmarshalJSON(trimmed); err != nil {
		return fmt.Errorf("ordered: %w", err)
	}
	m.om = om

	return nil
}
