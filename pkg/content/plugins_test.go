package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

func insertComponent(t *testing.T, env *testEnv, blockID models.ContentID, plugin string) *models.ContentNode {
	t.Helper()
	comp := &models.ContentNode{
		Type:      models.ContentTypeComponent,
		ParentID:  &blockID,
		Component: plugin,
	}
	require.NoError(t, env.manager.Insert(context.Background(), comp, InsertOptions{}))
	return comp
}

func enabledPlugins(t *testing.T, env *testEnv, courseID models.ContentID) []string {
	t.Helper()
	config, err := env.store.FindOne(context.Background(), store.Query{
		CourseID: &courseID,
		Type:     models.ContentTypeConfig,
	})
	require.NoError(t, err)
	require.NotNil(t, config)
	return config.EnabledPlugins
}

func TestConfigInsertEnablesThemeAndMenu(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)

	plugins := enabledPlugins(t, env, nodes["course"].ID)
	assert.ElementsMatch(t, []string{"vanilla", "boxMenu"}, plugins)
}

func TestComponentInsertEnablesItsPlugin(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)

	insertComponent(t, env, nodes["block"].ID, "text")

	plugins := enabledPlugins(t, env, nodes["course"].ID)
	assert.ElementsMatch(t, []string{"vanilla", "boxMenu", "text"}, plugins)
}

func TestLastComponentDeleteDisablesPlugin(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)
	ctx := context.Background()

	c1 := insertComponent(t, env, nodes["block"].ID, "text")
	c2 := insertComponent(t, env, nodes["block"].ID, "text")

	_, err := env.manager.Delete(ctx, store.ByID(c1.ID))
	require.NoError(t, err)
	assert.Contains(t, enabledPlugins(t, env, nodes["course"].ID), "text")

	_, err = env.manager.Delete(ctx, store.ByID(c2.ID))
	require.NoError(t, err)
	assert.NotContains(t, enabledPlugins(t, env, nodes["course"].ID), "text")
}

func TestReconcileRetainsExtensions(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)
	ctx := context.Background()

	plugins := []string{"vanilla", "boxMenu", "spoor"}
	_, err := env.manager.Update(ctx, store.ByID(nodes["config"].ID), UpdateData{
		EnabledPlugins: &plugins,
	})
	require.NoError(t, err)

	// an unrelated component mutation must not drop the extension
	comp := insertComponent(t, env, nodes["block"].ID, "narrative")
	_, err = env.manager.Delete(ctx, store.ByID(comp.ID))
	require.NoError(t, err)

	assert.Contains(t, enabledPlugins(t, env, nodes["course"].ID), "spoor")
}

func TestReconcileDropsUnknownPlugins(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)

	plugins := []string{"vanilla", "boxMenu", "uninstalled"}
	_, err := env.manager.Update(context.Background(), store.ByID(nodes["config"].ID), UpdateData{
		EnabledPlugins: &plugins,
	})
	require.NoError(t, err)

	assert.NotContains(t, enabledPlugins(t, env, nodes["course"].ID), "uninstalled")
}

func TestEnablingExtensionAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)
	nodes := seedTree(t, env)
	ctx := context.Background()

	plugins := []string{"vanilla", "boxMenu", "spoor"}
	_, err := env.manager.Update(ctx, store.ByID(nodes["config"].ID), UpdateData{
		EnabledPlugins: &plugins,
	})
	require.NoError(t, err)

	course, err := env.manager.Get(ctx, nodes["course"].ID)
	require.NoError(t, err)
	spoor, ok := course.Properties["_spoor"].(map[string]any)
	require.True(t, ok, "spoor defaults applied to course properties")
	assert.Equal(t, true, spoor["_isEnabled"])
}

func TestReconcileWithoutConfigIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := &models.ContentNode{Type: models.ContentTypeCourse, Properties: models.JSONMap{"title": "Bare"}}
	require.NoError(t, env.manager.Insert(ctx, course, InsertOptions{}))

	assert.NoError(t, env.manager.ReconcileEnabledPlugins(ctx, course.ID, false))
}
