package content

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/schema"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
	"github.com/taylortom/adapt-authoring-content/pkg/store/memory"
)

func TestInsertRecursiveCreatesFullCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := models.NewUserID()

	created, err := env.manager.InsertRecursive(ctx, user, nil, "en")
	require.NoError(t, err)
	// course, config, page, article, block, component
	require.Len(t, created, 6)

	types := make([]models.ContentType, len(created))
	for i, n := range created {
		types[i] = n.Type
		assert.Equal(t, user, n.CreatedBy)
	}
	assert.Equal(t, []models.ContentType{
		models.ContentTypeCourse, models.ContentTypeConfig,
		models.ContentTypePage, models.ContentTypeArticle,
		models.ContentTypeBlock, models.ContentTypeComponent,
	}, types)

	course := created[0]
	assert.Equal(t, "New course", course.Properties["title"])

	comp := created[5]
	assert.Equal(t, "text", comp.Component)
	assert.Equal(t, course.ID, *comp.CourseID)
}

func TestInsertRecursiveLocalizesTitles(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.manager.InsertRecursive(context.Background(), models.NewUserID(), nil, "fr")
	require.NoError(t, err)
	assert.Equal(t, "Nouveau cours", created[0].Properties["title"])
	assert.Equal(t, "Nouvelle page", created[2].Properties["title"])
	assert.Equal(t, "fr", created[1].Properties["_defaultLanguage"])
}

func TestInsertRecursiveBelowExistingPage(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)
	ctx := context.Background()

	created, err := env.manager.InsertRecursive(ctx, models.NewUserID(), nodes["page"].ID.Ref(), "en")
	require.NoError(t, err)
	// article, block, component
	require.Len(t, created, 3)
	assert.Equal(t, nodes["page"].ID, *created[0].ParentID)
	assert.Equal(t, nodes["course"].ID, *created[2].CourseID)
}

func TestInsertRecursiveMissingRoot(t *testing.T) {
	env := newTestEnv(t)

	id := models.NewContentID()
	_, err := env.manager.InsertRecursive(context.Background(), models.NewUserID(), &id, "en")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertRecursiveBelowComponentFails(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)
	comp := insertComponent(t, env, nodes["block"].ID, "text")

	_, err := env.manager.InsertRecursive(context.Background(), models.NewUserID(), comp.ID.Ref(), "en")
	assert.ErrorIs(t, err, ErrInvalidParent)
}

// failingStore wraps the memory store and fails inserts of one content type.
type failingStore struct {
	*memory.Store
	failType models.ContentType
}

func (f *failingStore) Insert(ctx context.Context, node *models.ContentNode) error {
	if node.Type == f.failType {
		return errors.New("storage failure")
	}
	return f.Store.Insert(ctx, node)
}

func TestInsertRecursiveRollsBackOnFailure(t *testing.T) {
	svc, err := schema.NewService()
	require.NoError(t, err)
	reg := testRegistry()
	for _, p := range reg.FindPluginsByType(schema.PluginTypeComponent) {
		require.NoError(t, svc.Register(p.SchemaName(), "component", p.ComponentSchema))
	}

	st := &failingStore{Store: memory.New(), failType: models.ContentTypeBlock}
	m := NewManager(
		st,
		schema.NewComposer(st, reg, svc),
		schema.NewResolver(st, reg, svc),
		reg,
		nil,
		ManagerOptions{DefaultTheme: "vanilla", DefaultMenu: "boxMenu", DefaultComponent: "text"},
	)

	ctx := context.Background()
	_, err = m.InsertRecursive(ctx, models.NewUserID(), nil, "en")
	require.Error(t, err)

	// everything created before the failure is rolled back
	all, err := st.Find(ctx, store.Query{})
	require.NoError(t, err)
	assert.Empty(t, all)
}
