package schema

import (
	"sort"
	"strings"
	"sync"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
)

// PluginType classifies an installed content plugin.
type PluginType string

const (
	PluginTypeExtension PluginType = "extension"
	PluginTypeComponent PluginType = "component"
	PluginTypeTheme     PluginType = "theme"
	PluginTypeMenu      PluginType = "menu"
)

// Fragment is a merge patch a plugin contributes to a base schema.
type Fragment = models.JSONMap

// Plugin describes one installed plugin: its identity plus the schema
// material it contributes.
//
// Extensions carry Fragments, merge patches keyed by the base schema name
// they extend (for example "course" or "contentobject"). Components carry a
// ComponentSchema registered under "<name>-component" where name is the
// TargetAttribute with its leading underscore stripped; they may also carry
// Fragments. Themes and menus typically contribute course-level fragments.
type Plugin struct {
	Name            string
	Type            PluginType
	TargetAttribute string
	Fragments       map[string]Fragment
	ComponentSchema models.JSONMap
}

// SchemaName returns the schema name a component plugin's records resolve
// to, or "" for non-component plugins.
func (p *Plugin) SchemaName() string {
	if p.Type != PluginTypeComponent || p.TargetAttribute == "" {
		return ""
	}
	return strings.TrimPrefix(p.TargetAttribute, "_") + "-component"
}

// Registry exposes the set of installed plugins.
type Registry interface {
	// FindPlugin returns the plugin with the given name, or nil.
	FindPlugin(name string) *Plugin
	// FindPluginsByType returns every plugin of the given type, sorted by
	// name.
	FindPluginsByType(t PluginType) []*Plugin
	// Fragments returns the merge patch a plugin contributes to the named
	// base schema, or nil.
	Fragments(pluginName, schemaName string) models.JSONMap
	// FragmentTargets returns the base schema names a plugin extends,
	// sorted.
	FragmentTargets(pluginName string) []string
	// Names returns every installed plugin name, sorted.
	Names() []string
}

// StaticRegistry is a Registry backed by a fixed plugin set built at startup.
type StaticRegistry struct {
	mu      sync.RWMutex
	plugins map[string]*Plugin
}

var _ Registry = (*StaticRegistry)(nil)

func NewStaticRegistry(plugins ...*Plugin) *StaticRegistry {
	r := &StaticRegistry{plugins: map[string]*Plugin{}}
	for _, p := range plugins {
		r.plugins[p.Name] = p
	}
	return r
}

// Add registers another plugin. Later additions replace earlier ones with
// the same name.
func (r *StaticRegistry) Add(p *Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Name] = p
}

func (r *StaticRegistry) FindPlugin(name string) *Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plugins[name]
}

func (r *StaticRegistry) FindPluginsByType(t PluginType) []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Plugin
	for _, p := range r.plugins {
		if p.Type == t {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *StaticRegistry) Fragments(pluginName, schemaName string) models.JSONMap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[pluginName]
	if !ok || p.Fragments == nil {
		return nil
	}
	return p.Fragments[schemaName]
}

func (r *StaticRegistry) FragmentTargets(pluginName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[pluginName]
	if !ok {
		return nil
	}
	targets := make([]string, 0, len(p.Fragments))
	for name := range p.Fragments {
		targets = append(targets, name)
	}
	sort.Strings(targets)
	return targets
}

func (r *StaticRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
