// Package labeling turns scene observations and a camera configuration into
// detector-ready 3D label records.
package labeling

import (
	"strings"
	"sync"
)

// ClassInfo describes one object class: its stable integer id and whether the class
// is rotationally symmetric, in which case heading is not a meaningful label.
type ClassInfo struct {
	ID                  int  `json:"id"`
	OrientationAgnostic bool `json:"orientation_agnostic"`
}

// unknownClass is the sentinel for class names nothing in the registry matches.
// A negative id is a soft signal to callers, never an error.
var unknownClass = ClassInfo{ID: -1, OrientationAgnostic: false}

// Registry maps class names to class metadata. It is seeded with a built-in table,
// may be extended at runtime, and never shrinks. Lookups are case-insensitive and
// fall back to substring rules for common name variations ("RoundTable_02" resolves
// to round_table). A single registry is shared by injection, not ambient state;
// reads and writes may come from any goroutine.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]ClassInfo
}

// NewRegistry returns a registry populated with the built-in class table.
func NewRegistry() *Registry {
	return &Registry{
		classes: map[string]ClassInfo{
			"floor":       {ID: 0, OrientationAgnostic: true},
			"wall":        {ID: 1, OrientationAgnostic: false},
			"table":       {ID: 2, OrientationAgnostic: false},
			"round_table": {ID: 3, OrientationAgnostic: true},
			"chair":       {ID: 4, OrientationAgnostic: false},
			"door":        {ID: 5, OrientationAgnostic: false},
			"window":      {ID: 6, OrientationAgnostic: false},
			"cabinet":     {ID: 7, OrientationAgnostic: false},
			"sofa":        {ID: 8, OrientationAgnostic: false},
			"lamp":        {ID: 9, OrientationAgnostic: true},
			"sphere":      {ID: 10, OrientationAgnostic: true},
			"cube":        {ID: 11, OrientationAgnostic: false},
		},
	}
}

// Register inserts or overwrites an entry keyed by the lower-cased name. Ids are not
// checked for uniqueness; callers own avoiding collisions that would alias classes
// downstream.
func (r *Registry) Register(name string, id int, orientationAgnostic bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[strings.ToLower(name)] = ClassInfo{ID: id, OrientationAgnostic: orientationAgnostic}
}

// ClassInfo resolves a class name to its metadata. An exact case-insensitive match
// wins; otherwise ordered substring rules cover common variations; otherwise the
// unknown-class sentinel {id: -1} is returned. Never fails.
func (r *Registry) ClassInfo(name string) ClassInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(name)
	if info, ok := r.classes[lower]; ok {
		return info
	}
	switch {
	case strings.Contains(lower, "table") && strings.Contains(lower, "round"):
		return r.classes["round_table"]
	case strings.Contains(lower, "table"):
		return r.classes["table"]
	case strings.Contains(lower, "chair"):
		return r.classes["chair"]
	case strings.Contains(lower, "wall"):
		return r.classes["wall"]
	case strings.Contains(lower, "floor"):
		return r.classes["floor"]
	}
	return unknownClass
}
