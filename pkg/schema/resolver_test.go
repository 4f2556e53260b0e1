package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/store/memory"
)

func newTestResolver(t *testing.T) (*Resolver, *memory.Store) {
	t.Helper()
	svc, err := NewService()
	require.NoError(t, err)
	reg := newTestRegistry()
	require.NoError(t, svc.Register("text-component", "component", reg.FindPlugin("text").ComponentSchema))
	st := memory.New()
	return NewResolver(st, reg, svc), st
}

func TestResolveMenuAndPageShareContentobject(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	for _, ct := range []models.ContentType{models.ContentTypeMenu, models.ContentTypePage} {
		name, err := r.Resolve(ctx, Partial{Type: ct})
		require.NoError(t, err)
		assert.Equal(t, "contentobject", name)
	}
}

func TestResolvePlainTypes(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	for _, ct := range []models.ContentType{
		models.ContentTypeCourse, models.ContentTypeConfig,
		models.ContentTypeArticle, models.ContentTypeBlock,
	} {
		name, err := r.Resolve(ctx, Partial{Type: ct})
		require.NoError(t, err)
		assert.Equal(t, string(ct), name)
	}
}

func TestResolveComponentUsesTargetAttribute(t *testing.T) {
	r, _ := newTestResolver(t)

	name, err := r.Resolve(context.Background(), Partial{
		Type:      models.ContentTypeComponent,
		Component: "text",
	})
	require.NoError(t, err)
	assert.Equal(t, "text-component", name)
}

func TestResolveUnknownComponent(t *testing.T) {
	r, _ := newTestResolver(t)

	_, err := r.Resolve(context.Background(), Partial{
		Type:      models.ContentTypeComponent,
		Component: "doesnotexist",
	})
	assert.ErrorIs(t, err, ErrUnknownSchemaName)
}

func TestResolveByIDLoadsDocument(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	page := &models.ContentNode{Type: models.ContentTypePage}
	require.NoError(t, st.Insert(ctx, page))

	name, err := r.Resolve(ctx, Partial{ID: page.ID.Ref()})
	require.NoError(t, err)
	assert.Equal(t, "contentobject", name)
}

func TestResolveExplicitTypeWinsOverID(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	page := &models.ContentNode{Type: models.ContentTypePage}
	require.NoError(t, st.Insert(ctx, page))

	name, err := r.Resolve(ctx, Partial{ID: page.ID.Ref(), Type: models.ContentTypeArticle})
	require.NoError(t, err)
	assert.Equal(t, "article", name)
}

func TestResolveComponentTypeWithIDLoadsComponentName(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	comp := &models.ContentNode{Type: models.ContentTypeComponent, Component: "text"}
	require.NoError(t, st.Insert(ctx, comp))

	name, err := r.Resolve(ctx, Partial{ID: comp.ID.Ref(), Type: models.ContentTypeComponent})
	require.NoError(t, err)
	assert.Equal(t, "text-component", name)
}

func TestResolveByIDMissing(t *testing.T) {
	r, _ := newTestResolver(t)

	id := models.NewContentID()
	_, err := r.Resolve(context.Background(), Partial{ID: &id})
	assert.ErrorIs(t, err, ErrNotFound)
}
