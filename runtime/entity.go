package runtime

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// EntityKind distinguishes the two store variants. Classes are ordinary
// entities with two extra facets (superclass link, selector table); the
// hierarchy is live data, not host-language types.
type EntityKind int

const (
	KindObject EntityKind = iota
	KindClass
)

// Entity is one store record: an object or a class. Every entity, classes
// included, names exactly one class. Attribute values are either references
// to other entities or raw data (tagged primitives, lists, text) that the
// generic dispatcher never inspects.
type Entity struct {
	ID    string
	Kind  EntityKind
	Class string // id of this entity's class; "Class" for classes
	Attrs map[string]Value

	// Class facets; zero-valued on plain objects.
	Superclass string            // parent class id, "" for the root
	Selectors  map[string]string // selector -> code ref

	mu sync.RWMutex
}

// IsClass reports whether the entity carries class facets.
func (e *Entity) IsClass() bool {
	return e.Kind == KindClass
}

// GetAttr reads an attribute. The second result is false when the name is
// absent; the caller decides whether a class-chain default applies.
func (e *Entity) GetAttr(name string) (Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.Attrs[name]
	return v, ok
}

// SetAttr writes an attribute. Concurrent writers to the same attribute
// race; last write wins.
func (e *Entity) SetAttr(name string, v Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Attrs == nil {
		e.Attrs = make(map[string]Value)
	}
	e.Attrs[name] = v
}

// Selector looks up one entry of the class's own table. Returns "" on plain
// objects.
func (e *Entity) Selector(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ref, ok := e.Selectors[name]
	return ref, ok
}

// DefineSelector installs or replaces a method-code reference on a class.
func (e *Entity) DefineSelector(name, codeRef string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Selectors == nil {
		e.Selectors = make(map[string]string)
	}
	e.Selectors[name] = codeRef
}

// AttrNames returns the attribute names in sorted order.
func (e *Entity) AttrNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.Attrs))
	for name := range e.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// Row serialization
// ---------------------------------------------------------------------------

type entityRow struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	Class      string            `json:"class"`
	Attrs      map[string]any    `json:"attrs,omitempty"`
	Superclass string            `json:"superclass,omitempty"`
	Selectors  map[string]string `json:"selectors,omitempty"`
}

// ToJSON renders the entity as the JSON row stored in sqlite.
func (e *Entity) ToJSON() (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	row := entityRow{
		ID:         e.ID,
		Kind:       "object",
		Class:      e.Class,
		Superclass: e.Superclass,
		Selectors:  e.Selectors,
	}
	if e.Kind == KindClass {
		row.Kind = "class"
	}
	if len(e.Attrs) > 0 {
		row.Attrs = make(map[string]any, len(e.Attrs))
		for name, v := range e.Attrs {
			row.Attrs[name] = v.jsonValue()
		}
	}

	data, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("encoding entity %s: %w", e.ID, err)
	}
	return string(data), nil
}

// entityFromJSON rebuilds an entity from its JSON row.
func entityFromJSON(id, data string) (*Entity, error) {
	var row entityRow
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		return nil, fmt.Errorf("parsing entity %s: %w", id, err)
	}
	if row.ID == "" {
		row.ID = id
	}

	e := &Entity{
		ID:         row.ID,
		Class:      row.Class,
		Superclass: row.Superclass,
		Selectors:  row.Selectors,
		Attrs:      make(map[string]Value, len(row.Attrs)),
	}
	if row.Kind == "class" {
		e.Kind = KindClass
	}
	for name, raw := range row.Attrs {
		e.Attrs[name] = valueFromJSON(raw)
	}
	return e, nil
}
