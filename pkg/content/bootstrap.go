package content

import (
	"context"
	"fmt"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/schema"
)

// scaffoldChain lists the types created below each starting point.
var scaffoldChain = map[models.ContentType][]models.ContentType{
	models.ContentTypeCourse: {
		models.ContentTypePage, models.ContentTypeArticle,
		models.ContentTypeBlock, models.ContentTypeComponent,
	},
	models.ContentTypeMenu: {
		models.ContentTypePage, models.ContentTypeArticle,
		models.ContentTypeBlock, models.ContentTypeComponent,
	},
	models.ContentTypePage: {
		models.ContentTypeArticle, models.ContentTypeBlock,
		models.ContentTypeComponent,
	},
	models.ContentTypeArticle: {models.ContentTypeBlock, models.ContentTypeComponent},
	models.ContentTypeBlock:   {models.ContentTypeComponent},
}

// InsertRecursive scaffolds a minimal editable tree in one call.
//
// With a nil rootID it creates a new course with its config, then one page,
// article, block and component. With a rootID it creates the missing chain
// below that document. Titles are localized for the requested locale. On
// failure every document created so far is removed again, most recent
// first, and the original error is returned.
func (m *Manager) InsertRecursive(ctx context.Context, createdBy models.UserID, rootID *models.ContentID, locale string) ([]*models.ContentNode, error) {
	var created []*models.ContentNode
	rollback := func() {
		for i := len(created) - 1; i >= 0; i-- {
			if err := m.store.Delete(ctx, created[i].ID); err != nil {
				m.log.Warn().Err(err).
					Stringer("id", created[i].ID).
					Msg("rollback failed to remove document")
			}
		}
	}

	parent, err := m.scaffoldRoot(ctx, createdBy, rootID, locale, &created)
	if err != nil {
		rollback()
		return nil, err
	}

	chain, ok := scaffoldChain[parent.Type]
	if !ok {
		rollback()
		return nil, fmt.Errorf("%w: cannot scaffold below %s", ErrInvalidParent, parent.Type)
	}

	for _, ct := range chain {
		node := &models.ContentNode{
			Type:      ct,
			ParentID:  parent.ID.Ref(),
			CreatedBy: createdBy,
			Properties: models.JSONMap{
				"title": m.lang.Translate(locale, "content."+string(ct)+".title"),
			},
		}
		if ct == models.ContentTypeComponent {
			node.Component = m.scaffoldComponentName()
		}
		if err := m.Insert(ctx, node, InsertOptions{}); err != nil {
			rollback()
			return nil, err
		}
		created = append(created, node)
		parent = node
	}
	return created, nil
}

// scaffoldRoot resolves or creates the document the chain grows from.
func (m *Manager) scaffoldRoot(ctx context.Context, createdBy models.UserID, rootID *models.ContentID, locale string, created *[]*models.ContentNode) (*models.ContentNode, error) {
	if rootID != nil {
		return m.Get(ctx, *rootID)
	}

	course := &models.ContentNode{
		Type:      models.ContentTypeCourse,
		CreatedBy: createdBy,
		Properties: models.JSONMap{
			"title": m.lang.Translate(locale, "content.course.title"),
			"body":  m.lang.Translate(locale, "content.course.body"),
		},
	}
	if err := m.Insert(ctx, course, InsertOptions{}); err != nil {
		return nil, err
	}
	*created = append(*created, course)

	config := &models.ContentNode{
		Type:       models.ContentTypeConfig,
		CourseID:   course.ID.Ref(),
		CreatedBy:  createdBy,
		Menu:       m.defaultMenu,
		Theme:      m.defaultTheme,
		Properties: models.JSONMap{},
	}
	if locale != "" {
		config.Properties["_defaultLanguage"] = locale
	}
	if err := m.Insert(ctx, config, InsertOptions{}); err != nil {
		return nil, err
	}
	*created = append(*created, config)
	return course, nil
}

func (m *Manager) scaffoldComponentName() string {
	if m.defaultComponent != "" {
		return m.defaultComponent
	}
	if components := m.registry.FindPluginsByType(schema.PluginTypeComponent); len(components) > 0 {
		return components[0].Name
	}
	return ""
}
