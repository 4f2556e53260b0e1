package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

func TestCloneSingleNodeIntoSameParent(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)
	ctx := context.Background()
	user := models.NewUserID()

	clone, err := env.manager.Clone(ctx, user, nodes["block"].ID, nil, nil)
	require.NoError(t, err)

	assert.NotEqual(t, nodes["block"].ID, clone.ID)
	assert.Equal(t, *nodes["block"].ParentID, *clone.ParentID)
	assert.Equal(t, user, clone.CreatedBy)
	// appended after the original
	assert.Equal(t, 2, clone.SortOrder)
}

func TestCloneMissingSource(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.manager.Clone(context.Background(), models.NewUserID(), models.NewContentID(), nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloneIntoMissingParent(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)

	missing := models.NewContentID()
	_, err := env.manager.Clone(context.Background(), models.NewUserID(), nodes["block"].ID, &missing, nil)
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestCloneAppliesOverridesToRootOnly(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)
	ctx := context.Background()

	_, err := env.manager.Update(ctx, store.ByID(nodes["article"].ID), UpdateData{
		Properties: models.JSONMap{"title": "Original article"},
	})
	require.NoError(t, err)

	clone, err := env.manager.Clone(ctx, models.NewUserID(), nodes["page"].ID, nil, models.JSONMap{
		"title": "Copy of page",
	})
	require.NoError(t, err)
	assert.Equal(t, "Copy of page", clone.Properties["title"])

	children, err := env.manager.Find(ctx, store.Query{ParentID: clone.ID.Ref()})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Original article", children[0].Properties["title"])
}

func TestCloneSubtreePreservesStructureAndOrder(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)
	ctx := context.Background()

	// second block so the cloned article has ordered children
	b2 := &models.ContentNode{Type: models.ContentTypeBlock, ParentID: nodes["article"].ID.Ref()}
	require.NoError(t, env.manager.Insert(ctx, b2, InsertOptions{}))
	insertComponent(t, env, nodes["block"].ID, "text")

	clone, err := env.manager.Clone(ctx, models.NewUserID(), nodes["article"].ID, nil, nil)
	require.NoError(t, err)

	blocks, err := env.manager.Find(ctx, store.Query{ParentID: clone.ID.Ref()})
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, 1, blocks[0].SortOrder)
	assert.Equal(t, 2, blocks[1].SortOrder)

	comps, err := env.manager.Find(ctx, store.Query{ParentID: blocks[0].ID.Ref()})
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, "text", comps[0].Component)
	// cloned subtree stays in the same course
	assert.Equal(t, nodes["course"].ID, *comps[0].CourseID)
}

func TestCloneCourseRepointsConfigAndRestampsScope(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)
	ctx := context.Background()

	insertComponent(t, env, nodes["block"].ID, "text")

	clone, err := env.manager.Clone(ctx, models.NewUserID(), nodes["course"].ID, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, clone.CourseID)
	assert.Equal(t, clone.ID, *clone.CourseID)

	config, err := env.store.FindOne(ctx, store.Query{
		CourseID: clone.ID.Ref(),
		Type:     models.ContentTypeConfig,
	})
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.NotEqual(t, nodes["config"].ID, config.ID)
	assert.Contains(t, config.EnabledPlugins, "text")

	// course, config, page, article, block, component
	docs, err := env.store.Find(ctx, store.Query{CourseID: clone.ID.Ref()})
	require.NoError(t, err)
	assert.Len(t, docs, 6)

	// the source course is untouched
	originalDocs, err := env.store.Find(ctx, store.Query{CourseID: nodes["course"].ID.Ref()})
	require.NoError(t, err)
	assert.Len(t, originalDocs, 6)
}
