package content

import (
	"context"
	"sort"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/schema"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

// fragmentTargetTypes maps a base schema name to the content types it
// validates. Used when a newly enabled plugin's defaults are re-applied.
var fragmentTargetTypes = map[string][]models.ContentType{
	"content": {
		models.ContentTypeCourse, models.ContentTypeMenu, models.ContentTypePage,
		models.ContentTypeArticle, models.ContentTypeBlock, models.ContentTypeComponent,
	},
	"course":        {models.ContentTypeCourse},
	"config":        {models.ContentTypeConfig},
	"contentobject": {models.ContentTypeMenu, models.ContentTypePage},
	"article":       {models.ContentTypeArticle},
	"block":         {models.ContentTypeBlock},
	"component":     {models.ContentTypeComponent},
}

// ReconcileEnabledPlugins brings the course config's enabled-plugin list in
// line with the course content:
//
//   - component plugins are enabled exactly for the component names in use
//   - the config's theme and menu are always enabled
//   - extension plugins stay as the author set them
//   - names with no installed plugin are dropped
//
// When the list changes (or force is set), the property defaults of every
// newly enabled plugin are re-applied to the affected documents. Failures
// during default re-application are logged and skipped so plugin
// bookkeeping never blocks the originating mutation.
func (m *Manager) ReconcileEnabledPlugins(ctx context.Context, courseID models.ContentID, force bool) error {
	config, err := m.store.FindOne(ctx, store.Query{
		CourseID: &courseID,
		Type:     models.ContentTypeConfig,
	})
	if err != nil {
		return err
	}
	if config == nil {
		return nil
	}

	inUse, err := m.store.ComponentNames(ctx, courseID)
	if err != nil {
		return err
	}

	want := []string{}
	seen := map[string]struct{}{}
	add := func(name string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		if m.registry.FindPlugin(name) == nil {
			m.log.Warn().Str("plugin", name).Msg("skipping unknown plugin")
			return
		}
		seen[name] = struct{}{}
		want = append(want, name)
	}

	// author-set order is preserved for plugins that survive
	for _, name := range config.EnabledPlugins {
		p := m.registry.FindPlugin(name)
		if p == nil {
			continue
		}
		switch p.Type {
		case schema.PluginTypeComponent:
			if contains(inUse, name) {
				add(name)
			}
		case schema.PluginTypeTheme:
			if name == config.Theme {
				add(name)
			}
		case schema.PluginTypeMenu:
			if name == config.Menu {
				add(name)
			}
		default:
			add(name)
		}
	}
	sort.Strings(inUse)
	for _, name := range inUse {
		add(name)
	}
	add(config.Theme)
	add(config.Menu)

	changed := !sameSet(config.EnabledPlugins, want)
	m.metrics.ReconcileObserved(changed)
	if !changed && !force {
		return nil
	}

	added := diff(want, config.EnabledPlugins)
	if changed {
		config.EnabledPlugins = want
		if err := m.store.Update(ctx, config); err != nil {
			return err
		}
		m.log.Info().
			Stringer("course", courseID).
			Strs("enabledPlugins", want).
			Msg("enabled plugins reconciled")
	}

	for _, name := range added {
		m.applyPluginDefaults(ctx, courseID, name)
	}
	return nil
}

// applyPluginDefaults re-runs default application for every document type a
// plugin's schema fragments touch.
func (m *Manager) applyPluginDefaults(ctx context.Context, courseID models.ContentID, pluginName string) {
	targets := m.registry.FragmentTargets(pluginName)
	if p := m.registry.FindPlugin(pluginName); p != nil {
		if name := p.SchemaName(); name != "" {
			targets = append(targets, name)
		}
	}

	done := map[models.ContentType]struct{}{}
	for _, target := range targets {
		types, ok := fragmentTargetTypes[target]
		if !ok {
			// a component plugin's own schema only affects its components
			types = []models.ContentType{models.ContentTypeComponent}
		}
		for _, ct := range types {
			if _, dup := done[ct]; dup {
				continue
			}
			done[ct] = struct{}{}
			if err := m.applyDefaultsToType(ctx, courseID, ct); err != nil {
				m.log.Warn().Err(err).
					Stringer("course", courseID).
					Str("type", string(ct)).
					Str("plugin", pluginName).
					Msg("failed to apply plugin defaults")
			}
		}
	}
}

func (m *Manager) applyDefaultsToType(ctx context.Context, courseID models.ContentID, ct models.ContentType) error {
	nodes, err := m.store.Find(ctx, store.Query{CourseID: &courseID, Type: ct})
	if err != nil {
		return err
	}
	for _, node := range nodes {
		name, err := m.resolver.Resolve(ctx, schema.Partial{Type: node.Type, Component: node.Component})
		if err != nil {
			m.log.Warn().Err(err).Stringer("id", node.ID).Msg("cannot resolve schema for defaults")
			continue
		}
		composed, err := m.composer.Compose(ctx, name, &courseID)
		if err != nil {
			return err
		}
		props, changed := schema.ApplyDefaults(composed, node.Properties)
		if !changed {
			continue
		}
		node.Properties = props
		if err := m.store.Update(ctx, node); err != nil {
			return err
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

// diff returns the entries of a missing from b, in a's order.
func diff(a, b []string) []string {
	if len(a) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := set[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
