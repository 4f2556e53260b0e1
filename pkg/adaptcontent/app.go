// Package adaptcontent wires the content service together: configuration,
// the store backend, the schema registry with the bundled plugins, the HTTP
// API and the CLI entry point.
package adaptcontent

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/taylortom/adapt-authoring-content/pkg/content"
	"github.com/taylortom/adapt-authoring-content/pkg/lang"
	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/schema"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
	"github.com/taylortom/adapt-authoring-content/pkg/store/memory"
	surrealstore "github.com/taylortom/adapt-authoring-content/pkg/store/surrealdb"
)

const (
	defaultTheme     = "vanilla"
	defaultMenu      = "boxMenu"
	defaultComponent = "text"
)

// App holds every long-lived collaborator of the running service.
type App struct {
	config   *Config
	log      zerolog.Logger
	store    store.Store
	schemas  *schema.Service
	registry *schema.StaticRegistry
	manager  *content.Manager
	composer *schema.Composer
	resolver *schema.Resolver

	prometheus *prometheus.Registry
}

// New builds an App from config. The store backend is chosen here: the
// in-memory store when config.Memory is set, SurrealDB otherwise.
func New(ctx context.Context, config *Config) (*App, error) {
	level, err := zerolog.ParseLevel(config.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.Log.Level, err)
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	var st store.Store
	if config.Memory {
		st = memory.New()
	} else {
		st, err = surrealstore.New(ctx,
			config.SurrealDB.URL,
			config.SurrealDB.Namespace,
			config.SurrealDB.Database,
			config.SurrealDB.Username,
			config.SurrealDB.Password,
		)
		if err != nil {
			return nil, err
		}
	}

	schemas, err := schema.NewService()
	if err != nil {
		return nil, err
	}
	registry := bundledPlugins()
	for _, p := range registry.FindPluginsByType(schema.PluginTypeComponent) {
		if err := schemas.Register(p.SchemaName(), "component", p.ComponentSchema); err != nil {
			return nil, err
		}
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	composer := schema.NewComposer(st, registry, schemas)
	resolver := schema.NewResolver(st, registry, schemas)
	manager := content.NewManager(
		st,
		composer,
		resolver,
		registry,
		lang.NewCatalog(),
		content.ManagerOptions{
			Log:     log,
			Metrics: NewPrometheusMetrics(promRegistry),
			OnDelete: func(_ context.Context, nodes []*models.ContentNode) {
				log.Info().Int("documents", len(nodes)).Msg("content removed")
			},
			DefaultTheme:     defaultTheme,
			DefaultMenu:      defaultMenu,
			DefaultComponent: defaultComponent,
		},
	)

	return &App{
		config:     config,
		log:        log,
		store:      st,
		schemas:    schemas,
		registry:   registry,
		manager:    manager,
		composer:   composer,
		resolver:   resolver,
		prometheus: promRegistry,
	}, nil
}

// bundledPlugins is the plugin set shipped with the service. An installation
// backed by a plugin marketplace would populate the registry dynamically.
func bundledPlugins() *schema.StaticRegistry {
	return schema.NewStaticRegistry(
		&schema.Plugin{
			Name:            "text",
			Type:            schema.PluginTypeComponent,
			TargetAttribute: "_text",
			ComponentSchema: models.JSONMap{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{"type": "string", "default": ""},
				},
			},
		},
		&schema.Plugin{
			Name:            "narrative",
			Type:            schema.PluginTypeComponent,
			TargetAttribute: "_narrative",
			ComponentSchema: models.JSONMap{
				"type": "object",
				"properties": map[string]any{
					"_items": map[string]any{
						"type":    "array",
						"items":   map[string]any{"type": "object"},
						"default": []any{},
					},
				},
			},
		},
		&schema.Plugin{
			Name: "vanilla",
			Type: schema.PluginTypeTheme,
			Fragments: map[string]schema.Fragment{
				"course": {
					"properties": map[string]any{
						"_vanilla": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"_backgroundColor": map[string]any{"type": "string", "default": ""},
							},
							"default": map[string]any{},
						},
					},
				},
			},
		},
		&schema.Plugin{
			Name: "boxMenu",
			Type: schema.PluginTypeMenu,
			Fragments: map[string]schema.Fragment{
				"contentobject": {
					"properties": map[string]any{
						"_boxMenu": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"_graphic": map[string]any{"type": "string", "default": ""},
							},
							"default": map[string]any{},
						},
					},
				},
			},
		},
		&schema.Plugin{
			Name: "spoor",
			Type: schema.PluginTypeExtension,
			Fragments: map[string]schema.Fragment{
				"config": {
					"properties": map[string]any{
						"_spoor": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"_isEnabled": map[string]any{"type": "boolean", "default": true},
							},
							"default": map[string]any{},
						},
					},
				},
			},
		},
	)
}

// Migrate prepares the active store backend.
func (a *App) Migrate(ctx context.Context, cmd *MigrateCommand) error {
	a.log.Info().Msg("running store migration")
	return a.store.Migrate(ctx)
}

func (a *App) Close() error {
	return a.store.Close()
}
