// Package schema manages the JSON schemas describing authorable content
// properties: the built-in base schemas for each content type, schemas
// contributed by component plugins, schema-name resolution for stored
// documents, course-aware composition of the final schema, and validation of
// payloads against a composed schema.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
)

//go:embed schemas/*.json
var baseSchemas embed.FS

// entry is one registered schema together with its place in the inheritance
// chain.
type entry struct {
	name   string
	parent string
	body   models.JSONMap
}

// Service is the schema registry. Base schemas are loaded from the embedded
// set at construction time; component plugins register their schemas on top.
type Service struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// baseRegistrations lists the built-in schemas and their parents. The
// "content" schema is the root of every chain.
var baseRegistrations = []struct {
	name   string
	parent string
}{
	{"content", ""},
	{"course", "content"},
	{"config", "content"},
	{"contentobject", "content"},
	{"article", "content"},
	{"block", "content"},
	{"component", "content"},
}

// NewService loads the embedded base schemas. An error here means the
// embedded set is corrupt, which cannot happen outside a build error.
func NewService() (*Service, error) {
	s := &Service{entries: map[string]*entry{}}
	for _, reg := range baseRegistrations {
		raw, err := baseSchemas.ReadFile("schemas/" + reg.name + ".schema.json")
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded schema %s: %w", reg.name, err)
		}
		var body models.JSONMap
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("failed to parse embedded schema %s: %w", reg.name, err)
		}
		s.entries[reg.name] = &entry{name: reg.name, parent: reg.parent, body: body}
	}
	return s, nil
}

// Register adds (or replaces) a schema under the given name, inheriting from
// parent. Plugin-contributed schemas use this; parent is usually "component".
func (s *Service) Register(name, parent string, body models.JSONMap) error {
	if name == "" {
		return fmt.Errorf("schema name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if parent != "" {
		if _, ok := s.entries[parent]; !ok {
			return fmt.Errorf("unknown parent schema %q", parent)
		}
	}
	s.entries[name] = &entry{name: name, parent: parent, body: body.Clone()}
	return nil
}

// Known reports whether a schema with the given name is registered.
func (s *Service) Known(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[name]
	return ok
}

// Names returns every registered schema name, sorted.
func (s *Service) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load returns a deep copy of a single registered schema body, or nil when
// the name is unknown.
func (s *Service) Load(name string) models.JSONMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return nil
	}
	return e.body.Clone()
}

// Hierarchy returns the inheritance chain for name, root first, ending with
// name itself. An unknown name yields a nil chain.
func (s *Service) Hierarchy(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chain []string
	for cur := name; cur != ""; {
		e, ok := s.entries[cur]
		if !ok {
			return nil
		}
		chain = append(chain, cur)
		cur = e.parent
	}
	// reverse to root-first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// MergePatch applies patch onto target following RFC 7386 semantics: objects
// merge recursively, nil values delete keys, everything else replaces. The
// target is modified in place and returned.
func MergePatch(target, patch models.JSONMap) models.JSONMap {
	if target == nil {
		target = models.JSONMap{}
	}
	for k, v := range patch {
		if v == nil {
			delete(target, k)
			continue
		}
		pm, pok := asMap(v)
		if !pok {
			target[k] = cloneAny(v)
			continue
		}
		tm, tok := asMap(target[k])
		if !tok {
			tm = models.JSONMap{}
		}
		target[k] = map[string]any(MergePatch(tm, pm))
	}
	return target
}

func asMap(v any) (models.JSONMap, bool) {
	switch m := v.(type) {
	case models.JSONMap:
		return m, true
	case map[string]any:
		return models.JSONMap(m), true
	}
	return nil, false
}

func cloneAny(v any) any {
	if m, ok := asMap(v); ok {
		return map[string]any(m.Clone())
	}
	if arr, ok := v.([]any); ok {
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = cloneAny(e)
		}
		return out
	}
	return v
}
