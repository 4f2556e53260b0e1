package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

var (
	// ErrUnknownSchemaName is returned when a name resolves to no
	// registered schema.
	ErrUnknownSchemaName = errors.New("unknown schema name")
	// ErrNotFound is returned when resolution references a content
	// document that does not exist.
	ErrNotFound = errors.New("content not found")
)

// Partial carries the fields schema-name resolution can work from. A present
// Type wins; the stored document is consulted only when the type is absent,
// or when a component record needs its component name filled in.
type Partial struct {
	ID        *models.ContentID
	Type      models.ContentType
	Component string
}

// Resolver maps content documents to the schema that validates them.
//
// Menus and pages share the contentobject schema. Components resolve through
// the plugin registry to the plugin's contributed schema. Every other type
// maps to the schema of the same name.
type Resolver struct {
	store    store.Store
	registry Registry
	service  *Service
}

func NewResolver(st store.Store, reg Registry, svc *Service) *Resolver {
	return &Resolver{store: st, registry: reg, service: svc}
}

// Resolve returns the schema name for the given partial document.
func (r *Resolver) Resolve(ctx context.Context, p Partial) (string, error) {
	needsLookup := p.Type == "" ||
		(p.Type == models.ContentTypeComponent && p.Component == "")
	if p.ID != nil && needsLookup {
		node, err := r.store.FindOne(ctx, store.ByID(*p.ID))
		if err != nil {
			return "", err
		}
		if node == nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, p.ID)
		}
		p.Type = node.Type
		p.Component = node.Component
	}

	switch p.Type {
	case models.ContentTypeMenu, models.ContentTypePage:
		return "contentobject", nil
	case models.ContentTypeComponent:
		return r.resolveComponent(p.Component)
	case "":
		return "", fmt.Errorf("%w: no type given", ErrUnknownSchemaName)
	}

	name := string(p.Type)
	if !r.service.Known(name) {
		return "", fmt.Errorf("%w: %s", ErrUnknownSchemaName, name)
	}
	return name, nil
}

func (r *Resolver) resolveComponent(component string) (string, error) {
	if component == "" {
		return "", fmt.Errorf("%w: component not set", ErrUnknownSchemaName)
	}
	plugin := r.registry.FindPlugin(component)
	if plugin == nil || plugin.Type != PluginTypeComponent {
		return "", fmt.Errorf("%w: no component plugin %q", ErrUnknownSchemaName, component)
	}
	name := plugin.SchemaName()
	if name == "" || !r.service.Known(name) {
		return "", fmt.Errorf("%w: %s", ErrUnknownSchemaName, name)
	}
	return name, nil
}
