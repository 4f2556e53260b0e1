package schema

import (
	"context"
	"fmt"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

// Composer builds the effective schema for a content document: the base
// schema hierarchy merged root-first, then the fragments contributed by the
// owning course's enabled plugins.
type Composer struct {
	store    store.Store
	registry Registry
	service  *Service
}

func NewComposer(st store.Store, reg Registry, svc *Service) *Composer {
	return &Composer{store: st, registry: reg, service: svc}
}

// Compose returns the full composed schema for schemaName.
//
// With a nil courseID, or when the course has no config document, the result
// is the merged base hierarchy alone. Otherwise the fragments of each plugin
// in the config's enabled-plugin list are merged on top, in list order;
// within one plugin, fragments apply in hierarchy order so a fragment
// extending "content" lands before one extending "article".
func (c *Composer) Compose(ctx context.Context, schemaName string, courseID *models.ContentID) (models.JSONMap, error) {
	chain := c.service.Hierarchy(schemaName)
	if chain == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchemaName, schemaName)
	}

	composed := models.JSONMap{}
	for _, name := range chain {
		composed = MergePatch(composed, c.service.Load(name))
	}

	if courseID == nil {
		return composed, nil
	}

	config, err := c.store.FindOne(ctx, store.Query{
		CourseID: courseID,
		Type:     models.ContentTypeConfig,
	})
	if err != nil {
		return nil, err
	}
	if config == nil {
		return composed, nil
	}

	for _, pluginName := range config.EnabledPlugins {
		if c.registry.FindPlugin(pluginName) == nil {
			continue
		}
		for _, name := range chain {
			if frag := c.registry.Fragments(pluginName, name); frag != nil {
				composed = MergePatch(composed, frag)
			}
		}
	}
	return composed, nil
}
