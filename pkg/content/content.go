// Package content implements the authoring operations on the content
// collection: validated inserts and updates, recursive clone and delete,
// sibling sort-order maintenance, enabled-plugin reconciliation and
// scaffolding of new content trees.
package content

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taylortom/adapt-authoring-content/pkg/lang"
	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/schema"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

// allowedChildren encodes the content hierarchy. Config documents attach to
// a course by courseId rather than parentId, so they do not appear here.
var allowedChildren = map[models.ContentType][]models.ContentType{
	models.ContentTypeCourse:  {models.ContentTypeMenu, models.ContentTypePage},
	models.ContentTypeMenu:    {models.ContentTypeMenu, models.ContentTypePage},
	models.ContentTypePage:    {models.ContentTypeArticle},
	models.ContentTypeArticle: {models.ContentTypeBlock},
	models.ContentTypeBlock:   {models.ContentTypeComponent},
}

func childAllowed(parent, child models.ContentType) bool {
	for _, t := range allowedChildren[parent] {
		if t == child {
			return true
		}
	}
	return false
}

// DeleteHook is called once per delete operation with the complete flattened
// list of removed documents.
type DeleteHook func(ctx context.Context, nodes []*models.ContentNode)

// ManagerOptions carries the optional manager collaborators.
type ManagerOptions struct {
	Log      zerolog.Logger
	Metrics  Metrics
	OnDelete DeleteHook

	// DefaultTheme and DefaultMenu are stamped onto scaffolded config
	// documents; DefaultComponent names the component plugin used for
	// scaffolded components.
	DefaultTheme     string
	DefaultMenu      string
	DefaultComponent string
}

// Manager coordinates all content mutations.
type Manager struct {
	store    store.Store
	composer *schema.Composer
	resolver *schema.Resolver
	registry schema.Registry
	lang     lang.Translator

	log      zerolog.Logger
	metrics  Metrics
	onDelete DeleteHook

	defaultTheme     string
	defaultMenu      string
	defaultComponent string
}

func NewManager(st store.Store, composer *schema.Composer, resolver *schema.Resolver, reg schema.Registry, translator lang.Translator, opts ManagerOptions) *Manager {
	m := &Manager{
		store:            st,
		composer:         composer,
		resolver:         resolver,
		registry:         reg,
		lang:             translator,
		log:              opts.Log,
		metrics:          opts.Metrics,
		onDelete:         opts.OnDelete,
		defaultTheme:     opts.DefaultTheme,
		defaultMenu:      opts.DefaultMenu,
		defaultComponent: opts.DefaultComponent,
	}
	if m.metrics == nil {
		m.metrics = NoopMetrics{}
	}
	if m.lang == nil {
		m.lang = lang.NewCatalog()
	}
	return m
}

// Get returns a single document by id.
func (m *Manager) Get(ctx context.Context, id models.ContentID) (*models.ContentNode, error) {
	node, err := m.store.FindOne(ctx, store.ByID(id))
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return node, nil
}

// Find returns every document matching q, in sibling order.
func (m *Manager) Find(ctx context.Context, q store.Query) ([]*models.ContentNode, error) {
	return m.store.Find(ctx, q)
}

// InsertOptions tunes a single insert. The zero value runs the full
// pipeline.
type InsertOptions struct {
	SkipValidation bool
	SkipSortOrder  bool
	SkipReconcile  bool
}

// Insert validates and persists a new document, places it among its
// siblings and reconciles the course's enabled plugins when the insert can
// have changed them.
func (m *Manager) Insert(ctx context.Context, node *models.ContentNode, opts InsertOptions) error {
	if !node.Type.Valid() {
		return fmt.Errorf("%w: invalid content type %q", schema.ErrUnknownSchemaName, node.Type)
	}

	if err := m.checkPlacement(ctx, node); err != nil {
		return err
	}

	if !opts.SkipValidation {
		if err := m.validate(ctx, node); err != nil {
			return err
		}
	}

	if err := m.store.Insert(ctx, node); err != nil {
		return err
	}

	// a course is its own scope root; stamp after the id is known
	if node.Type == models.ContentTypeCourse {
		node.CourseID = node.ID.Ref()
		if err := m.store.Update(ctx, node); err != nil {
			return err
		}
	}

	if !opts.SkipSortOrder && node.ParentID != nil {
		if err := m.reorderSiblings(ctx, *node.ParentID, node, nil); err != nil {
			return err
		}
	}

	if !opts.SkipReconcile &&
		(node.Type == models.ContentTypeComponent || node.Type == models.ContentTypeConfig) {
		if err := m.reconcileForNode(ctx, node, false); err != nil {
			return err
		}
	}

	m.metrics.MutationObserved("insert", node.Type)
	m.log.Debug().
		Stringer("id", node.ID).
		Str("type", string(node.Type)).
		Msg("content inserted")
	return nil
}

// checkPlacement validates the node's position in the tree and stamps its
// course scope.
func (m *Manager) checkPlacement(ctx context.Context, node *models.ContentNode) error {
	switch node.Type {
	case models.ContentTypeCourse:
		node.ParentID = nil
		node.CourseID = nil
		return nil

	case models.ContentTypeConfig:
		node.ParentID = nil
		if node.CourseID == nil {
			return fmt.Errorf("%w: config requires a course", ErrInvalidParent)
		}
		course, err := m.store.FindOne(ctx, store.ByID(*node.CourseID))
		if err != nil {
			return err
		}
		if course == nil || course.Type != models.ContentTypeCourse {
			return fmt.Errorf("%w: config requires a course", ErrInvalidParent)
		}
		existing, err := m.store.FindOne(ctx, store.Query{
			CourseID: node.CourseID,
			Type:     models.ContentTypeConfig,
		})
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: course %s already has a config", ErrInvalidParent, node.CourseID)
		}
		return nil
	}

	if node.ParentID == nil {
		return fmt.Errorf("%w: %s requires a parent", ErrInvalidParent, node.Type)
	}
	parent, err := m.store.FindOne(ctx, store.ByID(*node.ParentID))
	if err != nil {
		return err
	}
	if parent == nil {
		return fmt.Errorf("%w: parent %s does not exist", ErrInvalidParent, node.ParentID)
	}
	if !childAllowed(parent.Type, node.Type) {
		return fmt.Errorf("%w: %s cannot contain %s", ErrInvalidParent, parent.Type, node.Type)
	}
	scope := parent.CourseScope()
	if scope == nil {
		return fmt.Errorf("%w: parent %s has no course", ErrInvalidParent, parent.ID)
	}
	node.CourseID = scope
	return nil
}

// validate resolves the node's schema, fills property defaults in place and
// checks the result.
func (m *Manager) validate(ctx context.Context, node *models.ContentNode) error {
	name, err := m.resolver.Resolve(ctx, schema.Partial{
		Type:      node.Type,
		Component: node.Component,
	})
	if err != nil {
		return err
	}
	composed, err := m.composer.Compose(ctx, name, node.CourseScope())
	if err != nil {
		return err
	}
	node.Properties, _ = schema.ApplyDefaults(composed, node.Properties)
	return schema.Validate(name, composed, node.Properties)
}

// UpdateData lists the updatable fields. Nil pointers leave the stored value
// untouched; Properties is merged into the stored properties with RFC 7386
// semantics.
type UpdateData struct {
	ParentID       *models.ContentID
	SortOrder      *int
	Component      *string
	EnabledPlugins *[]string
	Menu           *string
	Theme          *string
	Properties     models.JSONMap
}

// Update applies data to the first document matching q, re-validates and
// restores the sibling-order and enabled-plugin invariants.
func (m *Manager) Update(ctx context.Context, q store.Query, data UpdateData) (*models.ContentNode, error) {
	node, err := m.store.FindOne(ctx, q)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, ErrNoMatchingDocument
	}

	oldParent := node.ParentID
	parentChanged := false
	if data.ParentID != nil && (oldParent == nil || *data.ParentID != *oldParent) {
		if node.Type.IsRoot() {
			return nil, fmt.Errorf("%w: %s cannot be moved", ErrInvalidParent, node.Type)
		}
		parent, err := m.store.FindOne(ctx, store.ByID(*data.ParentID))
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent %s does not exist", ErrInvalidParent, data.ParentID)
		}
		if !childAllowed(parent.Type, node.Type) {
			return nil, fmt.Errorf("%w: %s cannot contain %s", ErrInvalidParent, parent.Type, node.Type)
		}
		scope := parent.CourseScope()
		if scope == nil || node.CourseID == nil || *scope != *node.CourseID {
			return nil, fmt.Errorf("%w: cannot move between courses", ErrInvalidParent)
		}
		node.ParentID = data.ParentID
		parentChanged = true
	}

	if data.SortOrder != nil {
		node.SortOrder = *data.SortOrder
	}
	if data.Component != nil {
		node.Component = *data.Component
	}
	oldPlugins := node.EnabledPlugins
	if data.EnabledPlugins != nil {
		node.EnabledPlugins = append([]string(nil), (*data.EnabledPlugins)...)
	}
	if data.Menu != nil {
		node.Menu = *data.Menu
	}
	if data.Theme != nil {
		node.Theme = *data.Theme
	}
	if data.Properties != nil {
		node.Properties = schema.MergePatch(node.Properties, data.Properties)
	}

	if err := m.validate(ctx, node); err != nil {
		return nil, err
	}
	if err := m.store.Update(ctx, node); err != nil {
		return nil, err
	}

	if parentChanged && oldParent != nil {
		if err := m.reorderSiblings(ctx, *oldParent, nil, node.ID.Ref()); err != nil {
			return nil, err
		}
	}
	if node.ParentID != nil {
		if err := m.reorderSiblings(ctx, *node.ParentID, node, nil); err != nil {
			return nil, err
		}
	}

	// plugin bookkeeping can change when a config is edited or a
	// component swaps plugin
	force := data.EnabledPlugins != nil || data.Menu != nil || data.Theme != nil
	if force || node.Type == models.ContentTypeConfig || node.Type == models.ContentTypeComponent {
		if err := m.reconcileForNode(ctx, node, force); err != nil {
			return nil, err
		}
	}
	// plugins the author just enabled get their defaults applied even
	// though they were already present when reconciliation ran
	if data.EnabledPlugins != nil {
		if scope := node.CourseScope(); scope != nil {
			for _, name := range diff(node.EnabledPlugins, oldPlugins) {
				m.applyPluginDefaults(ctx, *scope, name)
			}
		}
	}

	m.metrics.MutationObserved("update", node.Type)
	m.log.Debug().
		Stringer("id", node.ID).
		Str("type", string(node.Type)).
		Msg("content updated")
	return node, nil
}

func (m *Manager) reconcileForNode(ctx context.Context, node *models.ContentNode, force bool) error {
	scope := node.CourseScope()
	if scope == nil {
		return nil
	}
	return m.ReconcileEnabledPlugins(ctx, *scope, force)
}
