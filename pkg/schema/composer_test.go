package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/store/memory"
)

func newTestRegistry() *StaticRegistry {
	return NewStaticRegistry(
		&Plugin{
			Name:            "text",
			Type:            PluginTypeComponent,
			TargetAttribute: "_text",
			ComponentSchema: models.JSONMap{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{"type": "string", "default": ""},
				},
			},
		},
		&Plugin{
			Name: "spoor",
			Type: PluginTypeExtension,
			Fragments: map[string]models.JSONMap{
				"course": {
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
		&Plugin{
			Name: "vanilla",
			Type: PluginTypeTheme,
		},
		&Plugin{
			Name: "boxMenu",
			Type: PluginTypeMenu,
		},
	)
}

func newTestComposer(t *testing.T) (*Composer, *memory.Store, *Service) {
	t.Helper()
	svc, err := NewService()
	require.NoError(t, err)
	reg := newTestRegistry()
	require.NoError(t, svc.Register("text-component", "component", reg.FindPlugin("text").ComponentSchema))
	st := memory.New()
	return NewComposer(st, reg, svc), st, svc
}

func seedCourse(t *testing.T, st *memory.Store, plugins []string) models.ContentID {
	t.Helper()
	ctx := context.Background()
	course := &models.ContentNode{Type: models.ContentTypeCourse}
	require.NoError(t, st.Insert(ctx, course))
	course.CourseID = course.ID.Ref()
	require.NoError(t, st.Update(ctx, course))
	if plugins != nil {
		cfg := &models.ContentNode{
			Type:           models.ContentTypeConfig,
			CourseID:       course.ID.Ref(),
			ParentID:       course.ID.Ref(),
			EnabledPlugins: plugins,
		}
		require.NoError(t, st.Insert(ctx, cfg))
	}
	return course.ID
}

func props(t *testing.T, schema models.JSONMap) map[string]any {
	t.Helper()
	p, ok := schema["properties"].(map[string]any)
	require.True(t, ok, "schema has no properties object")
	return p
}

func TestComposeBaseSchemaWithoutCourse(t *testing.T) {
	c, _, _ := newTestComposer(t)

	composed, err := c.Compose(context.Background(), "course", nil)
	require.NoError(t, err)

	p := props(t, composed)
	// hierarchy merge: content contributes title, course contributes tags
	assert.Contains(t, p, "title")
	assert.Contains(t, p, "tags")
	assert.NotContains(t, p, "_spoor")
}

func TestComposeUnknownSchemaName(t *testing.T) {
	c, _, _ := newTestComposer(t)

	_, err := c.Compose(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownSchemaName)
}

func TestComposeAppliesEnabledPluginFragments(t *testing.T) {
	c, st, _ := newTestComposer(t)
	courseID := seedCourse(t, st, []string{"spoor"})

	composed, err := c.Compose(context.Background(), "course", &courseID)
	require.NoError(t, err)
	assert.Contains(t, props(t, composed), "_spoor")
}

func TestComposeIgnoresDisabledPlugins(t *testing.T) {
	c, st, _ := newTestComposer(t)
	courseID := seedCourse(t, st, []string{"vanilla"})

	composed, err := c.Compose(context.Background(), "course", &courseID)
	require.NoError(t, err)
	assert.NotContains(t, props(t, composed), "_spoor")
}

func TestComposeWithoutConfigFallsBackToBase(t *testing.T) {
	c, st, _ := newTestComposer(t)
	courseID := seedCourse(t, st, nil)

	composed, err := c.Compose(context.Background(), "course", &courseID)
	require.NoError(t, err)
	assert.NotContains(t, props(t, composed), "_spoor")
}

func TestComposeComponentSchemaHierarchy(t *testing.T) {
	c, _, _ := newTestComposer(t)

	composed, err := c.Compose(context.Background(), "text-component", nil)
	require.NoError(t, err)

	p := props(t, composed)
	assert.Contains(t, p, "title")   // from content
	assert.Contains(t, p, "_layout") // from component
	assert.Contains(t, p, "text")    // from text-component
}

func TestMergePatchDeletesOnNil(t *testing.T) {
	target := models.JSONMap{"a": "x", "b": map[string]any{"c": 1}}
	patch := models.JSONMap{"a": nil, "b": map[string]any{"d": 2}}

	merged := MergePatch(target, patch)
	assert.NotContains(t, merged, "a")
	b := merged["b"].(map[string]any)
	assert.Equal(t, 1, b["c"])
	assert.Equal(t, 2, b["d"])
}
